// Package worker consumes portal events and drives the notification service.
package worker

import (
	"context"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/ollema/skiftesgatan-sub000/internal/events"
	"github.com/ollema/skiftesgatan-sub000/internal/service"
)

type Deliverer interface {
	Deliveries(ctx context.Context) (<-chan amqp.Delivery, error)
}

type Worker struct {
	consumer Deliverer
	svc      *service.NotificationSvc
	log      *zap.SugaredLogger
}

func New(consumer Deliverer, svc *service.NotificationSvc, log *zap.SugaredLogger) *Worker {
	return &Worker{consumer: consumer, svc: svc, log: log}
}

// Run consumes deliveries until the context is cancelled or the delivery
// channel closes, e.g. on a broker restart. Callers reconnect and call Run
// again.
func (w *Worker) Run(ctx context.Context) error {
	deliveries, err := w.consumer.Deliveries(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

// handle acks or dead-letters one delivery. Only booking.created failures are
// dead-lettered: a lost reminder is worth parking for replay, while cancel
// and recalculate are self-healing on the next reconciliation.
func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	switch d.RoutingKey {
	case events.RKBookingCreated:
		ev, err := events.Decode[events.BookingCreated](d.Body)
		if err != nil {
			w.log.Errorw("decode booking.created", "err", err)
			_ = d.Nack(false, false)
			return
		}
		if err := w.svc.ScheduleBookingNotification(ctx, ev.BookingID); err != nil {
			w.log.Errorw("schedule reminder", "booking", ev.BookingID, "err", err)
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)

	case events.RKBookingCancelled:
		ev, err := events.Decode[events.BookingCancelled](d.Body)
		if err != nil {
			w.log.Errorw("decode booking.cancelled", "err", err)
			_ = d.Ack(false)
			return
		}
		if err := w.svc.CancelBookingNotifications(ctx, ev.BookingID); err != nil {
			w.log.Errorw("cancel reminders", "booking", ev.BookingID, "err", err)
		}
		_ = d.Ack(false)

	case events.RKPrefsUpdated:
		ev, err := events.Decode[events.PreferencesUpdated](d.Body)
		if err != nil {
			w.log.Errorw("decode preferences_updated", "err", err)
			_ = d.Ack(false)
			return
		}
		if err := w.svc.RecalculateUserNotifications(ctx, ev.UserID); err != nil {
			w.log.Errorw("recalculate reminders", "user", ev.UserID, "err", err)
		}
		_ = d.Ack(false)

	default:
		w.log.Warnw("unexpected routing key", "key", d.RoutingKey)
		_ = d.Ack(false)
	}
}
