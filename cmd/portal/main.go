package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ollema/skiftesgatan-sub000/internal/repository"
	"github.com/ollema/skiftesgatan-sub000/internal/service"
	"github.com/ollema/skiftesgatan-sub000/internal/slot"
	transport "github.com/ollema/skiftesgatan-sub000/internal/transport/http"
	"github.com/ollema/skiftesgatan-sub000/pkg/config"
	"github.com/ollema/skiftesgatan-sub000/pkg/db"
	"github.com/ollema/skiftesgatan-sub000/pkg/mq"
	"github.com/ollema/skiftesgatan-sub000/pkg/obs"
	"github.com/ollema/skiftesgatan-sub000/pkg/ratelimit"
)

func must[T any](v T, err error) T {
	if err != nil {
		log.Fatal(err)
	}
	return v
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

	shutdownTracer := obs.InitTracer("portal")
	defer func() { _ = shutdownTracer(context.Background()) }()

	loc := must(time.LoadLocation(cfg.TimeZone))
	catalog := slot.NewCatalog(loc)

	// DB
	gdb := db.Open(cfg.PGPortalDSN)
	userRepo := repository.NewUserRepo(gdb)
	apartmentRepo := repository.NewApartmentRepo(gdb)
	bookingRepo := repository.NewBookingRepo(gdb)
	notificationRepo := repository.NewNotificationRepo(gdb)
	must(0, userRepo.Migrate())
	must(0, apartmentRepo.Migrate())
	must(0, bookingRepo.Migrate())
	must(0, notificationRepo.Migrate())

	pub := must(mq.NewPublisher(cfg.RabbitURL, cfg.PortalExchange))
	defer pub.Close()

	authSvc := service.NewAuthSvc(userRepo,
		time.Duration(cfg.JWTExpireMin)*time.Minute,
		time.Duration(cfg.RefreshExpireHr)*time.Hour)
	bookingSvc := service.NewBookingSvc(bookingRepo, catalog, pub, slog)
	userSvc := service.NewUserSvc(userRepo, notificationRepo, pub, slog)

	limits := transport.Limits{
		Register: ratelimit.NewExpiringTokenBucket(5, 30*time.Minute),
		Login: ratelimit.NewThrottler([]time.Duration{
			time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second,
			16 * time.Second, 30 * time.Second, 60 * time.Second,
		}),
		CreateBooking: ratelimit.NewRefillingTokenBucket(10, 30*time.Second),
	}

	router := transport.NewRouter(
		transport.NewAuthHandler(authSvc, limits.Login),
		transport.NewBookingHandler(bookingSvc, catalog),
		transport.NewUserHandler(userSvc),
		transport.NewApartmentHandler(apartmentRepo, bookingSvc),
		limits,
	)

	srv := &http.Server{Addr: cfg.PortalHTTPAddr, Handler: router}
	go func() {
		slog.Infow("portal listening", "addr", cfg.PortalHTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Fatalw("serve", "err", err)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Errorw("shutdown", "err", err)
	}
	slog.Infow("portal stopped")
}
