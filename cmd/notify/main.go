package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ollema/skiftesgatan-sub000/internal/mailer"
	"github.com/ollema/skiftesgatan-sub000/internal/repository"
	"github.com/ollema/skiftesgatan-sub000/internal/service"
	"github.com/ollema/skiftesgatan-sub000/internal/worker"
	"github.com/ollema/skiftesgatan-sub000/pkg/config"
	"github.com/ollema/skiftesgatan-sub000/pkg/db"
	"github.com/ollema/skiftesgatan-sub000/pkg/mq"
	"github.com/ollema/skiftesgatan-sub000/pkg/obs"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
}

func parseCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func main() {
	_ = godotenv.Load()
	cfg := must(config.Load())

	logger := must(zap.NewProduction())
	if cfg.Env == "dev" {
		logger = must(zap.NewDevelopment())
	}
	defer logger.Sync()
	slog := logger.Sugar()

	shutdownTracer := obs.InitTracer("notify")
	defer func() { _ = shutdownTracer(context.Background()) }()

	loc := must(time.LoadLocation(cfg.TimeZone))

	gdb := db.Open(cfg.PGPortalDSN)
	userRepo := repository.NewUserRepo(gdb)
	bookingRepo := repository.NewBookingRepo(gdb)
	notificationRepo := repository.NewNotificationRepo(gdb)
	must(0, notificationRepo.Migrate())

	mail := mailer.New(cfg.MailAPIBaseURL, cfg.MailAPIKey, cfg.MailFrom, cfg.MailAPITimeout)
	svc := service.NewNotificationSvc(bookingRepo, userRepo, notificationRepo, mail, loc, slog)

	consCfg := mq.ConsumerConfig{
		URL:      cfg.RabbitURL,
		Exchange: cfg.PortalExchange,
		Queue:    cfg.NotifyQueue,
		Bindings: parseCSV(cfg.NotifyBindings),
		Prefetch: 16,
		DLX:      cfg.NotifyDLX,
		DLQ:      cfg.NotifyDLQ,
		Name:     "notify",
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	slog.Infow("notify worker starting",
		"queue", consCfg.Queue, "exchange", consCfg.Exchange, "bindings", consCfg.Bindings)

	// Reconnect loop; a closed delivery channel means the broker went away.
	for ctx.Err() == nil {
		cons, err := mq.NewConsumer(consCfg)
		if err != nil {
			slog.Warnw("rabbitmq connect", "err", err)
			select {
			case <-ctx.Done():
			case <-time.After(2 * time.Second):
			}
			continue
		}
		w := worker.New(cons, svc, slog)
		if err := w.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Errorw("worker run", "err", err)
		}
		_ = cons.Close()
	}
	slog.Infow("notify worker stopped")
}
