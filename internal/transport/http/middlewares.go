package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	a "github.com/ollema/skiftesgatan-sub000/pkg/auth"
	"github.com/ollema/skiftesgatan-sub000/pkg/ratelimit"
)

func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if !strings.HasPrefix(h, "Bearer ") {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		tok := strings.TrimPrefix(h, "Bearer ")
		claims, err := a.ParseValidate(tok)
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set("sub", claims.Sub)
		c.Set("role", claims.Role)
		c.Set("email", claims.Email)
		c.Set("apt", claims.Apartment)
		c.Next()
	}
}

func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := map[string]struct{}{}
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		v, _ := c.Get("role")
		role, _ := v.(string)
		if _, ok := allowed[role]; !ok {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}
		c.Next()
	}
}

// clientKey prefers the authenticated user id so limits follow the account,
// not the NAT the building shares.
func clientKey(c *gin.Context) string {
	if v, ok := c.Get("sub"); ok {
		if sub, _ := v.(string); sub != "" {
			return sub
		}
	}
	if xf := c.GetHeader("X-Forwarded-For"); xf != "" {
		return strings.TrimSpace(strings.Split(xf, ",")[0])
	}
	return c.ClientIP()
}

type consumer interface {
	Consume(key string, cost int) bool
}

// RateLimit rejects with a bare 429 when the client's bucket is dry.
func RateLimit(bucket consumer, cost int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !bucket.Consume(clientKey(c), cost) {
			c.AbortWithStatus(http.StatusTooManyRequests)
			return
		}
		c.Next()
	}
}

func subject(c *gin.Context) string {
	v, _ := c.Get("sub")
	s, _ := v.(string)
	return s
}

func apartment(c *gin.Context) string {
	v, _ := c.Get("apt")
	s, _ := v.(string)
	return s
}

func isAdmin(c *gin.Context) bool {
	v, _ := c.Get("role")
	role, _ := v.(string)
	return role == "ADMIN"
}

var _ consumer = (*ratelimit.RefillingTokenBucket)(nil)
var _ consumer = (*ratelimit.ExpiringTokenBucket)(nil)
