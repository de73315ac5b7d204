package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
	"github.com/ollema/skiftesgatan-sub000/internal/events"
)

type PreferenceStore interface {
	PreferenceFor(ctx context.Context, userID string, t domain.BookingType) (domain.NotificationPreference, error)
	UpsertPreference(ctx context.Context, p *domain.NotificationPreference) error
}

type UserSvc struct {
	users UserStore
	prefs PreferenceStore
	pub   Publisher
	log   *zap.SugaredLogger
}

func NewUserSvc(users UserStore, prefs PreferenceStore, pub Publisher, log *zap.SugaredLogger) *UserSvc {
	return &UserSvc{users: users, prefs: prefs, pub: pub, log: log}
}

func (s *UserSvc) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *UserSvc) UpdateProfile(ctx context.Context, id, name string) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Name = name
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// Preferences returns the user's reminder setting per facility type,
// defaults included for types never saved.
func (s *UserSvc) Preferences(ctx context.Context, userID string) ([]domain.NotificationPreference, error) {
	var out []domain.NotificationPreference
	for _, t := range []domain.BookingType{domain.BookingLaundry, domain.BookingBBQ} {
		p, err := s.prefs.PreferenceFor(ctx, userID, t)
		if err != nil {
			return nil, fmt.Errorf("load preference: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

// UpdatePreference saves the setting and nudges the notification worker to
// reconcile the user's scheduled reminders.
func (s *UserSvc) UpdatePreference(ctx context.Context, userID string, t domain.BookingType, enabled bool, timing domain.ReminderTiming) error {
	if !t.Valid() || !timing.Valid() {
		return ErrInvalidPreference
	}
	p := domain.NotificationPreference{UserID: userID, BookingType: t, Enabled: enabled, Timing: timing}
	if err := s.prefs.UpsertPreference(ctx, &p); err != nil {
		return fmt.Errorf("save preference: %w", err)
	}
	if err := s.pub.PublishJSON(ctx, events.RKPrefsUpdated, events.PreferencesUpdated{UserID: userID}); err != nil {
		s.log.Errorw("publish preferences_updated", "user", userID, "err", err)
	}
	return nil
}
