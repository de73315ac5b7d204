package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ollema/skiftesgatan-sub000/internal/service"
	"github.com/ollema/skiftesgatan-sub000/pkg/ratelimit"
)

type AuthHandler struct {
	svc           *service.AuthSvc
	loginThrottle *ratelimit.Throttler
}

func NewAuthHandler(svc *service.AuthSvc, loginThrottle *ratelimit.Throttler) *AuthHandler {
	return &AuthHandler{svc: svc, loginThrottle: loginThrottle}
}

// POST /v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var in struct {
		Email       string `json:"email" binding:"required,email"`
		Password    string `json:"password" binding:"required,min=8"`
		Name        string `json:"name" binding:"required"`
		ApartmentID string `json:"apartment_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.svc.Register(c, in.Email, in.Password, in.Name, in.ApartmentID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"name":         u.Name,
		"apartment_id": u.ApartmentID,
	})
}

// POST /v1/auth/login
//
// The throttle key is email plus client address and is consumed before the
// password check, so failed guesses pay the escalating timeout whether or not
// the account exists. A successful login resets the ladder.
func (h *AuthHandler) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	key := in.Email + "|" + clientKey(c)
	if !h.loginThrottle.Consume(key) {
		c.AbortWithStatus(http.StatusTooManyRequests)
		return
	}
	u, access, refresh, err := h.svc.Login(c, in.Email, in.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	h.loginThrottle.Reset(key)
	c.JSON(http.StatusOK, gin.H{
		"access_token":  access,
		"refresh_token": refresh,
		"user": gin.H{
			"id":           u.ID,
			"email":        u.Email,
			"name":         u.Name,
			"role":         u.Role,
			"apartment_id": u.ApartmentID,
		},
	})
}
