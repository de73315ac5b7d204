// Package http wires the portal's REST surface.
package http

import (
	"github.com/gin-gonic/gin"

	"github.com/ollema/skiftesgatan-sub000/pkg/ratelimit"
)

// Limits carries the per-endpoint rate limiters, owned by main so their state
// lives for the process.
type Limits struct {
	// Register admits a handful of signups per address, then goes quiet
	// until the window expires.
	Register *ratelimit.ExpiringTokenBucket
	// Login escalates per email and address on repeated attempts.
	Login *ratelimit.Throttler
	// CreateBooking smooths bursts per authenticated user.
	CreateBooking *ratelimit.RefillingTokenBucket
}

func NewRouter(
	auth *AuthHandler,
	bookings *BookingHandler,
	users *UserHandler,
	apartments *ApartmentHandler,
	limits Limits,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	v1 := r.Group("/v1")

	ag := v1.Group("/auth")
	{
		ag.POST("/register", RateLimit(limits.Register, 1), auth.Register)
		ag.POST("/login", auth.Login) // throttled inside, key includes email
	}

	bg := v1.Group("/bookings", JWTAuth())
	{
		bg.POST("", RateLimit(limits.CreateBooking, 1), bookings.Create)
		bg.GET("", bookings.List)
		bg.GET("/mine", bookings.Mine)
		bg.GET("/mine/upcoming", bookings.Upcoming)
		bg.DELETE("/:id", bookings.Delete)
	}

	v1.GET("/availability", JWTAuth(), bookings.Availability)

	ug := v1.Group("/users", JWTAuth())
	{
		ug.GET("/me", users.Me)
		ug.PUT("/me", users.UpdateMe)
		ug.GET("/me/notifications", users.Preferences)
		ug.PUT("/me/notifications/:type", users.UpdatePreference)
	}

	apg := v1.Group("/apartments", JWTAuth())
	{
		apg.GET("", apartments.List)
		apg.POST("", RequireRole("ADMIN"), apartments.Create)
		apg.GET("/:id/bookings", RequireRole("ADMIN"), apartments.Bookings)
	}

	return r
}
