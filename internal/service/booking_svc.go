package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/internal/events"
	"github.com/ollema/skiftesgatan-sub000/internal/repository"
	"github.com/ollema/skiftesgatan-sub000/internal/slot"
)

type BookingStore interface {
	Create(ctx context.Context, b *domain.Booking) error
	ByID(ctx context.Context, id string) (*domain.Booking, error)
	DeleteByID(ctx context.Context, id string) (bool, error)
	FirstOverlapping(ctx context.Context, t domain.BookingType, start, end time.Time, excludeUserID string) (*domain.Booking, error)
	FutureByUserAndType(ctx context.Context, userID string, t domain.BookingType, after time.Time) ([]domain.Booking, error)
	ListByTypeBetween(ctx context.Context, t domain.BookingType, from, to time.Time) ([]domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	ListFutureByUser(ctx context.Context, userID string, after time.Time) ([]domain.Booking, error)
	ListByApartmentBetween(ctx context.Context, apartmentID string, from, to time.Time) ([]domain.Booking, error)
}

type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BookingSvc arbitrates exclusive facility slots. One future booking per
// facility type per user: creating a new one displaces the old one.
type BookingSvc struct {
	store   BookingStore
	catalog *slot.Catalog
	pub     Publisher
	log     *zap.SugaredLogger
	now     func() time.Time
}

func NewBookingSvc(store BookingStore, catalog *slot.Catalog, pub Publisher, log *zap.SugaredLogger) *BookingSvc {
	return &BookingSvc{store: store, catalog: catalog, pub: pub, log: log, now: time.Now}
}

// Create reserves the slot for the user. Check order is part of the API
// contract: future-only wins over catalog validity, then conflicts with
// other users — only then is the user's own prior booking of the same type
// displaced and the new row inserted.
func (s *BookingSvc) Create(ctx context.Context, userID, apartmentID string, t domain.BookingType, start, end time.Time) (*domain.Booking, error) {
	now := s.now()
	if !start.After(now) {
		return nil, ErrPastBooking
	}
	if !t.Valid() || !start.Before(end) || !s.catalog.Matches(t, start, end) {
		return nil, ErrInvalidSlot
	}

	other, err := s.store.FirstOverlapping(ctx, t, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("conflict check: %w", err)
	}
	if other != nil {
		return nil, ErrSlotConflict
	}

	// Smart rebooking: displaced unconditionally, not opt-in.
	displaced, err := s.store.FutureByUserAndType(ctx, userID, t, now)
	if err != nil {
		return nil, fmt.Errorf("load prior bookings: %w", err)
	}
	for i := range displaced {
		if _, err := s.store.DeleteByID(ctx, displaced[i].ID); err != nil {
			return nil, fmt.Errorf("displace booking %s: %w", displaced[i].ID, err)
		}
	}

	b := &domain.Booking{
		UserID:      userID,
		ApartmentID: apartmentID,
		BookingType: t,
		StartTime:   start,
		EndTime:     end,
		CreatedAt:   now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			// Lost the race after the optimistic check passed; the storage
			// constraint is authoritative.
			return nil, ErrSlotConflict
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}

	for i := range displaced {
		s.publishCancelled(ctx, displaced[i].ID)
	}
	if err := s.pub.PublishJSON(ctx, events.RKBookingCreated, events.BookingCreated{
		BookingID:   b.ID,
		UserID:      b.UserID,
		BookingType: string(b.BookingType),
		Start:       b.StartTime.Unix(),
		End:         b.EndTime.Unix(),
	}); err != nil {
		s.log.Errorw("publish booking.created", "booking", b.ID, "err", err)
	}
	return b, nil
}

// Cancel hard-deletes. No ownership or temporal restriction here; callers
// authorize at the boundary. An unknown id is not an error, just false.
func (s *BookingSvc) Cancel(ctx context.Context, id string) (bool, error) {
	removed, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete booking: %w", err)
	}
	if removed {
		s.publishCancelled(ctx, id)
	}
	return removed, nil
}

func (s *BookingSvc) Get(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := s.store.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load booking: %w", err)
	}
	return b, nil
}

// IsTimeSlotAvailable reports whether no same-type booking overlaps
// [start, end); excludeUserID, when non-empty, ignores that user's own
// bookings.
func (s *BookingSvc) IsTimeSlotAvailable(ctx context.Context, t domain.BookingType, start, end time.Time, excludeUserID string) (bool, error) {
	other, err := s.store.FirstOverlapping(ctx, t, start, end, excludeUserID)
	if err != nil {
		return false, fmt.Errorf("conflict check: %w", err)
	}
	return other == nil, nil
}

// MonthBookings lists a facility's bookings with start in
// [monthStart, nextMonthStart), anchored in the building's timezone.
func (s *BookingSvc) MonthBookings(ctx context.Context, t domain.BookingType, year int, month time.Month) ([]domain.Booking, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.catalog.Location())
	to := from.AddDate(0, 1, 0)
	return s.store.ListByTypeBetween(ctx, t, from, to)
}

func (s *BookingSvc) UserBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *BookingSvc) UserFutureBookings(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.store.ListFutureByUser(ctx, userID, s.now())
}

func (s *BookingSvc) ApartmentBookings(ctx context.Context, apartmentID string, from, to time.Time) ([]domain.Booking, error) {
	return s.store.ListByApartmentBetween(ctx, apartmentID, from, to)
}

func (s *BookingSvc) publishCancelled(ctx context.Context, bookingID string) {
	if err := s.pub.PublishJSON(ctx, events.RKBookingCancelled, events.BookingCancelled{BookingID: bookingID}); err != nil {
		s.log.Errorw("publish booking.cancelled", "booking", bookingID, "err", err)
	}
}
