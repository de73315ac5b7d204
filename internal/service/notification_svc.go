package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/ollema/skiftesgatan-sub000/internal/domain"
)

type BookingReader interface {
	ByID(ctx context.Context, id string) (*domain.Booking, error)
	ListFutureByUser(ctx context.Context, userID string, after time.Time) ([]domain.Booking, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n *domain.EmailNotification) error
	PendingByUser(ctx context.Context, userID string) ([]domain.EmailNotification, error)
	PendingByBooking(ctx context.Context, bookingID string) ([]domain.EmailNotification, error)
	UpdateScheduledAt(ctx context.Context, id string, at time.Time) error
	MarkCancelled(ctx context.Context, id string) error
	PreferenceFor(ctx context.Context, userID string, t domain.BookingType) (domain.NotificationPreference, error)
}

// Mailer is the external mail-scheduling capability. ScheduleSend returns the
// provider's id for the queued send.
type Mailer interface {
	ScheduleSend(ctx context.Context, recipient, subject, body string, at time.Time, idemKey string) (string, error)
	CancelSend(ctx context.Context, externalID string) error
	RescheduleSend(ctx context.Context, externalID string, at time.Time) error
}

// NotificationSvc keeps scheduled booking reminders consistent with bookings
// and with user preferences. Every scheduled send has a local audit row;
// rows are marked cancelled, never deleted.
type NotificationSvc struct {
	bookings BookingReader
	users    UserStore
	store    NotificationStore
	mailer   Mailer
	log      *zap.SugaredLogger
	loc      *time.Location
	now      func() time.Time
}

func NewNotificationSvc(bookings BookingReader, users UserStore, store NotificationStore, mailer Mailer, loc *time.Location, log *zap.SugaredLogger) *NotificationSvc {
	return &NotificationSvc{
		bookings: bookings,
		users:    users,
		store:    store,
		mailer:   mailer,
		log:      log,
		loc:      loc,
		now:      time.Now,
	}
}

// ScheduleBookingNotification queues a reminder email for the booking
// according to the owner's preference. Disabled preferences and reminder
// times already in the past are skipped silently. A mailer failure leaves a
// failed audit row behind and is returned to the caller.
func (s *NotificationSvc) ScheduleBookingNotification(ctx context.Context, bookingID string) error {
	b, err := s.bookings.ByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Booking already gone, e.g. displaced before the event landed.
			return nil
		}
		return fmt.Errorf("load booking: %w", err)
	}
	u, err := s.users.ByID(ctx, b.UserID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	pref, err := s.store.PreferenceFor(ctx, b.UserID, b.BookingType)
	if err != nil {
		return fmt.Errorf("load preference: %w", err)
	}
	if !pref.Enabled {
		return nil
	}
	at := b.StartTime.Add(-pref.Timing.Offset())
	if !at.After(s.now()) {
		return nil
	}

	n := &domain.EmailNotification{
		BookingID:      b.ID,
		UserID:         b.UserID,
		ScheduledAt:    at,
		Status:         domain.NotificationPending,
		IdempotencyKey: uuid.NewString(),
	}
	subject, body := s.reminderEmail(b)
	extID, err := s.mailer.ScheduleSend(ctx, u.Email, subject, body, at, n.IdempotencyKey)
	if err != nil {
		n.Status = domain.NotificationFailed
		n.Error = err.Error()
		if cerr := s.store.Create(ctx, n); cerr != nil {
			s.log.Errorw("persist failed notification", "booking", b.ID, "err", cerr)
		}
		return fmt.Errorf("schedule send: %w", err)
	}
	n.ExternalID = extID
	if err := s.store.Create(ctx, n); err != nil {
		return fmt.Errorf("persist notification: %w", err)
	}
	return nil
}

// RecalculateUserNotifications reconciles all of a user's pending reminders
// with current bookings and preferences. Best effort per row: one broken
// reminder never aborts the batch.
func (s *NotificationSvc) RecalculateUserNotifications(ctx context.Context, userID string) error {
	pending, err := s.store.PendingByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("load pending notifications: %w", err)
	}

	covered := make(map[string]bool, len(pending))
	for i := range pending {
		n := &pending[i]

		b, err := s.bookings.ByID(ctx, n.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.cancelRow(ctx, n)
				continue
			}
			s.log.Errorw("load booking for reminder", "notification", n.ID, "err", err)
			continue
		}
		pref, err := s.store.PreferenceFor(ctx, userID, b.BookingType)
		if err != nil {
			s.log.Errorw("load preference", "notification", n.ID, "err", err)
			continue
		}
		at := b.StartTime.Add(-pref.Timing.Offset())
		if !pref.Enabled || !at.After(s.now()) {
			s.cancelRow(ctx, n)
			continue
		}
		covered[b.ID] = true
		if at.Equal(n.ScheduledAt) {
			continue
		}
		if err := s.mailer.RescheduleSend(ctx, n.ExternalID, at); err != nil {
			// The provider lost or refused the send; start over with a
			// fresh one rather than leaving a reminder at the wrong time.
			s.log.Warnw("reschedule send", "notification", n.ID, "err", err)
			s.cancelRow(ctx, n)
			covered[b.ID] = false
			if serr := s.ScheduleBookingNotification(ctx, b.ID); serr != nil {
				s.log.Errorw("re-schedule reminder", "booking", b.ID, "err", serr)
			} else {
				covered[b.ID] = true
			}
			continue
		}
		if err := s.store.UpdateScheduledAt(ctx, n.ID, at); err != nil {
			s.log.Errorw("update scheduled_at", "notification", n.ID, "err", err)
		}
	}

	// Gap fill: future bookings with no pending reminder, e.g. after the
	// user re-enables reminders for a facility type.
	future, err := s.bookings.ListFutureByUser(ctx, userID, s.now())
	if err != nil {
		return fmt.Errorf("load future bookings: %w", err)
	}
	for i := range future {
		if covered[future[i].ID] {
			continue
		}
		if err := s.ScheduleBookingNotification(ctx, future[i].ID); err != nil {
			s.log.Errorw("schedule missing reminder", "booking", future[i].ID, "err", err)
		}
	}
	return nil
}

// CancelBookingNotifications cancels every pending reminder for the booking.
func (s *NotificationSvc) CancelBookingNotifications(ctx context.Context, bookingID string) error {
	pending, err := s.store.PendingByBooking(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("load pending notifications: %w", err)
	}
	for i := range pending {
		s.cancelRow(ctx, &pending[i])
	}
	return nil
}

// cancelRow revokes the queued send best effort and marks the audit row
// cancelled either way. A send that slips through at the provider is
// preferable to a pending row that never resolves.
func (s *NotificationSvc) cancelRow(ctx context.Context, n *domain.EmailNotification) {
	if n.ExternalID != "" {
		if err := s.mailer.CancelSend(ctx, n.ExternalID); err != nil {
			s.log.Warnw("cancel send", "notification", n.ID, "external_id", n.ExternalID, "err", err)
		}
	}
	if err := s.store.MarkCancelled(ctx, n.ID); err != nil {
		s.log.Errorw("mark notification cancelled", "notification", n.ID, "err", err)
	}
}

func (s *NotificationSvc) reminderEmail(b *domain.Booking) (subject, body string) {
	facility := "the laundry room"
	if b.BookingType == domain.BookingBBQ {
		facility = "the BBQ area"
	}
	when := humanTimeRange(b.StartTime, b.EndTime, s.loc)
	subject = fmt.Sprintf("Reminder: your booking of %s", facility)
	body = fmt.Sprintf("Hi!\n\nThis is a reminder that you have booked %s %s.\n\nIf you no longer need the slot, please cancel it in the portal so a neighbour can use it.\n\n/Skiftesgatan", facility, when)
	return subject, body
}

// humanTimeRange renders "Monday 2 March 07:00-11:00" in the building's
// timezone.
func humanTimeRange(start, end time.Time, loc *time.Location) string {
	ls, le := start.In(loc), end.In(loc)
	return fmt.Sprintf("%s %s-%s", ls.Format("Monday 2 January"), ls.Format("15:04"), le.Format("15:04"))
}
