package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/internal/service"
)

type ApartmentStore interface {
	Create(ctx context.Context, a *domain.Apartment) error
	ByID(ctx context.Context, id string) (*domain.Apartment, error)
	List(ctx context.Context) ([]domain.Apartment, error)
}

type ApartmentHandler struct {
	store    ApartmentStore
	bookings *service.BookingSvc
}

func NewApartmentHandler(store ApartmentStore, bookings *service.BookingSvc) *ApartmentHandler {
	return &ApartmentHandler{store: store, bookings: bookings}
}

// POST /v1/apartments (ADMIN)
func (h *ApartmentHandler) Create(c *gin.Context) {
	var in struct {
		Number string `json:"number" binding:"required"`
		Floor  int    `json:"floor"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	a := &domain.Apartment{Number: in.Number, Floor: in.Floor}
	if err := h.store.Create(c, a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "apartment number already exists"})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": a.ID, "number": a.Number, "floor": a.Floor})
}

// GET /v1/apartments
func (h *ApartmentHandler) List(c *gin.Context) {
	as, err := h.store.List(c)
	if err != nil {
		writeError(c, err)
		return
	}
	type apartmentResp struct {
		ID     string `json:"id"`
		Number string `json:"number"`
		Floor  int    `json:"floor"`
	}
	out := make([]apartmentResp, 0, len(as))
	for _, a := range as {
		out = append(out, apartmentResp{ID: a.ID, Number: a.Number, Floor: a.Floor})
	}
	c.JSON(http.StatusOK, gin.H{"apartments": out})
}

// GET /v1/apartments/:id/bookings?from=RFC3339&to=RFC3339 (ADMIN)
func (h *ApartmentHandler) Bookings(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.store.ByID(c, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(c, service.ErrNotFound)
			return
		}
		writeError(c, err)
		return
	}
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from: invalid RFC3339 timestamp"})
		return
	}
	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "to: invalid RFC3339 timestamp"})
		return
	}
	bs, err := h.bookings.ApartmentBookings(c, id, from, to)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": toBookingResps(bs)})
}
