package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/internal/service"
)

type UserHandler struct {
	svc *service.UserSvc
}

func NewUserHandler(svc *service.UserSvc) *UserHandler {
	return &UserHandler{svc: svc}
}

func toUserResp(u *domain.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"name":         u.Name,
		"role":         u.Role,
		"apartment_id": u.ApartmentID,
	}
}

// GET /v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	u, err := h.svc.Get(c, subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResp(u))
}

// PUT /v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	var in struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.UpdateProfile(c, subject(c), in.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toUserResp(u))
}

// GET /v1/users/me/notifications
func (h *UserHandler) Preferences(c *gin.Context) {
	prefs, err := h.svc.Preferences(c, subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	type prefResp struct {
		BookingType string `json:"booking_type"`
		Enabled     bool   `json:"enabled"`
		Timing      string `json:"timing"`
	}
	out := make([]prefResp, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, prefResp{
			BookingType: string(p.BookingType),
			Enabled:     p.Enabled,
			Timing:      string(p.Timing),
		})
	}
	c.JSON(http.StatusOK, gin.H{"preferences": out})
}

// PUT /v1/users/me/notifications/:type
func (h *UserHandler) UpdatePreference(c *gin.Context) {
	var in struct {
		Enabled *bool  `json:"enabled" binding:"required"`
		Timing  string `json:"timing" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	t := domain.BookingType(c.Param("type"))
	if !t.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be laundry or bbq"})
		return
	}
	timing := domain.ReminderTiming(in.Timing)
	if !timing.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "timing must be 1_hour, 1_day or 1_week"})
		return
	}
	if err := h.svc.UpdatePreference(c, subject(c), t, *in.Enabled, timing); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
