package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/internal/service"
	"github.com/ollema/skiftesgatan-sub000/internal/slot"
)

type BookingHandler struct {
	svc     *service.BookingSvc
	catalog *slot.Catalog
}

func NewBookingHandler(svc *service.BookingSvc, catalog *slot.Catalog) *BookingHandler {
	return &BookingHandler{svc: svc, catalog: catalog}
}

type bookingResp struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	ApartmentID string `json:"apartment_id"`
	BookingType string `json:"booking_type"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

func toBookingResp(b *domain.Booking) bookingResp {
	return bookingResp{
		ID:          b.ID,
		UserID:      b.UserID,
		ApartmentID: b.ApartmentID,
		BookingType: string(b.BookingType),
		StartTime:   b.StartTime.Format(time.RFC3339),
		EndTime:     b.EndTime.Format(time.RFC3339),
	}
}

func toBookingResps(bs []domain.Booking) []bookingResp {
	out := make([]bookingResp, 0, len(bs))
	for i := range bs {
		out = append(out, toBookingResp(&bs[i]))
	}
	return out
}

// POST /v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var in struct {
		BookingType string `json:"booking_type" binding:"required"`
		StartISO    string `json:"start_iso" binding:"required"` // RFC3339
		EndISO      string `json:"end_iso"   binding:"required"` // RFC3339
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	start, err := time.Parse(time.RFC3339, in.StartISO)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start_iso: invalid RFC3339 timestamp"})
		return
	}
	end, err := time.Parse(time.RFC3339, in.EndISO)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_iso: invalid RFC3339 timestamp"})
		return
	}
	b, err := h.svc.Create(c, subject(c), apartment(c), domain.BookingType(in.BookingType), start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResp(b))
}

// GET /v1/bookings?type=laundry&year=2026&month=3
func (h *BookingHandler) List(c *gin.Context) {
	t := domain.BookingType(c.Query("type"))
	if !t.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be laundry or bbq"})
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "year must be an integer"})
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "month must be 1-12"})
		return
	}
	bs, err := h.svc.MonthBookings(c, t, year, time.Month(month))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResps(bs)})
}

// GET /v1/bookings/mine
func (h *BookingHandler) Mine(c *gin.Context) {
	bs, err := h.svc.UserBookings(c, subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResps(bs)})
}

// GET /v1/bookings/mine/upcoming
func (h *BookingHandler) Upcoming(c *gin.Context) {
	bs, err := h.svc.UserFutureBookings(c, subject(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResps(bs)})
}

// DELETE /v1/bookings/:id (owner or ADMIN)
func (h *BookingHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	b, err := h.svc.Get(c, id)
	if err != nil {
		writeError(c, err)
		return
	}
	if b.UserID != subject(c) && !isAdmin(c) {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	if _, err := h.svc.Cancel(c, id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /v1/availability?type=laundry&date=2026-03-14
func (h *BookingHandler) Availability(c *gin.Context) {
	t := domain.BookingType(c.Query("type"))
	if !t.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be laundry or bbq"})
		return
	}
	day, err := time.ParseInLocation("2006-01-02", c.Query("date"), h.catalog.Location())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	type slotResp struct {
		Label     string `json:"label"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
		Available bool   `json:"available"`
	}
	var out []slotResp
	loc := h.catalog.Location()
	for _, w := range h.catalog.WindowsFor(t) {
		ws := time.Date(day.Year(), day.Month(), day.Day(), w.StartHour, 0, 0, 0, loc)
		we := time.Date(day.Year(), day.Month(), day.Day(), w.EndHour, 0, 0, 0, loc)
		free, err := h.svc.IsTimeSlotAvailable(c, t, ws, we, "")
		if err != nil {
			writeError(c, err)
			return
		}
		out = append(out, slotResp{
			Label:     w.Label,
			StartTime: ws.Format(time.RFC3339),
			EndTime:   we.Format(time.RFC3339),
			Available: free,
		})
	}
	c.JSON(http.StatusOK, gin.H{"slots": out})
}
