package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
)

var ErrDuplicateSlot = errors.New("slot_taken")

type BookingRepo struct{ db *gorm.DB }

func NewBookingRepo(db *gorm.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.Booking{})
}

// Create inserts b in a transaction that first locks any same-type booking
// overlapping [start, end). The unique index on (booking_type, start_time)
// backstops the check-then-act race across server instances; either path
// surfaces as ErrDuplicateSlot.
func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Booking
		err := tx.Model(&domain.Booking{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("booking_type = ?", b.BookingType).
			Where("start_time < ? AND end_time > ?", b.EndTime, b.StartTime).
			Take(&existing).Error
		if err == nil {
			return ErrDuplicateSlot
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if b.ID == "" {
			b.ID = uuid.NewString()
		}
		return tx.Create(b).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateSlot
	}
	return err
}

func (r *BookingRepo) ByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteByID hard-deletes and reports whether a row was actually removed.
func (r *BookingRepo) DeleteByID(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&domain.Booking{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

// FirstOverlapping returns one same-type booking overlapping [start, end),
// or nil when the slot is free. excludeUserID, when non-empty, ignores that
// user's own bookings.
func (r *BookingRepo) FirstOverlapping(ctx context.Context, t domain.BookingType, start, end time.Time, excludeUserID string) (*domain.Booking, error) {
	qb := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("booking_type = ?", t).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeUserID != "" {
		qb = qb.Where("user_id <> ?", excludeUserID)
	}
	var b domain.Booking
	if err := qb.Take(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) FutureByUserAndType(ctx context.Context, userID string, t domain.BookingType, after time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND booking_type = ? AND start_time > ?", userID, t, after).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepo) ListByTypeBetween(ctx context.Context, t domain.BookingType, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("booking_type = ? AND start_time >= ? AND start_time < ?", t, from, to).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepo) ListFutureByUser(ctx context.Context, userID string, after time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND start_time > ?", userID, after).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}

func (r *BookingRepo) ListByApartmentBetween(ctx context.Context, apartmentID string, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("apartment_id = ? AND start_time >= ? AND start_time < ?", apartmentID, from, to).
		Order("start_time ASC").
		Find(&out).Error
	return out, err
}
