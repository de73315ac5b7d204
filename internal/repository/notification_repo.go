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

type NotificationRepo struct{ db *gorm.DB }

func NewNotificationRepo(db *gorm.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (r *NotificationRepo) Migrate() error {
	return r.db.AutoMigrate(&domain.EmailNotification{}, &domain.NotificationPreference{})
}

func (r *NotificationRepo) Create(ctx context.Context, n *domain.EmailNotification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepo) PendingByUser(ctx context.Context, userID string) ([]domain.EmailNotification, error) {
	var out []domain.EmailNotification
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.NotificationPending).
		Order("scheduled_at ASC").
		Find(&out).Error
	return out, err
}

func (r *NotificationRepo) PendingByBooking(ctx context.Context, bookingID string) ([]domain.EmailNotification, error) {
	var out []domain.EmailNotification
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND status = ?", bookingID, domain.NotificationPending).
		Find(&out).Error
	return out, err
}

func (r *NotificationRepo) UpdateScheduledAt(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.EmailNotification{}).
		Where("id = ?", id).
		Update("scheduled_at", at).Error
}

// MarkCancelled flips the row to cancelled; the row itself stays as an audit
// trail.
func (r *NotificationRepo) MarkCancelled(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&domain.EmailNotification{}).
		Where("id = ?", id).
		Update("status", domain.NotificationCancelled).Error
}

// PreferenceFor falls back to the default setting when the user has never
// saved one for this facility type.
func (r *NotificationRepo) PreferenceFor(ctx context.Context, userID string, t domain.BookingType) (domain.NotificationPreference, error) {
	var p domain.NotificationPreference
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND booking_type = ?", userID, t).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.DefaultPreference(userID, t), nil
	}
	if err != nil {
		return domain.NotificationPreference{}, err
	}
	return p, nil
}

func (r *NotificationRepo) UpsertPreference(ctx context.Context, p *domain.NotificationPreference) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(p).Error
}
