package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ollema/skiftesgatan-sub000/pkg/ratelimit"
)

func newTestEngine(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/x", mw, func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimitRejectsWhenDry(t *testing.T) {
	bucket := ratelimit.NewExpiringTokenBucket(2, time.Hour)
	r := newTestEngine(RateLimit(bucket, 1))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestRateLimitKeysPerClient(t *testing.T) {
	bucket := ratelimit.NewExpiringTokenBucket(1, time.Hour)
	r := newTestEngine(RateLimit(bucket, 1))

	first := httptest.NewRecorder()
	reqA := httptest.NewRequest(http.MethodPost, "/x", nil)
	reqA.Header.Set("X-Forwarded-For", "198.51.100.7")
	r.ServeHTTP(first, reqA)
	assert.Equal(t, http.StatusOK, first.Code)

	// A different forwarded address gets its own bucket.
	second := httptest.NewRecorder()
	reqB := httptest.NewRequest(http.MethodPost, "/x", nil)
	reqB.Header.Set("X-Forwarded-For", "198.51.100.8")
	r.ServeHTTP(second, reqB)
	assert.Equal(t, http.StatusOK, second.Code)

	again := httptest.NewRecorder()
	reqA2 := httptest.NewRequest(http.MethodPost, "/x", nil)
	reqA2.Header.Set("X-Forwarded-For", "198.51.100.7")
	r.ServeHTTP(again, reqA2)
	assert.Equal(t, http.StatusTooManyRequests, again.Code)
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/y", JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/y", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/y", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
