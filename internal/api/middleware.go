package api

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/RishiKendai/overlap/internal/metrics"
	"github.com/RishiKendai/overlap/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const apiKeyContextKey = "api_key"

// JWTAuthMiddleware validates HMAC signed bearer tokens. issuer is checked
// when set.
func JWTAuthMiddleware(secret, issuer string) gin.HandlerFunc {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "Authorization header required")
			return
		}

		// Extract token from "Bearer <token>"
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" || strings.Contains(tokenString, " ") {
			abortUnauthorized(c, "Invalid authorization header format")
			return
		}

		claims := jwt.MapClaims{}
		token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		// Rate limits are keyed by the api_key claim, else the subject, else the token.
		key := tokenString
		if apiKey, ok := claims["api_key"].(string); ok && apiKey != "" {
			key = apiKey
		} else if sub, err := claims.GetSubject(); err == nil && sub != "" {
			key = sub
		}
		c.Set(apiKeyContextKey, key)

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{
		Error: msg,
		Code:  "UNAUTHORIZED",
	})
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting per API key
type RateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	rps       float64
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		rps:       rps,
		burst:     max(1, burst),
		idleTTL:   time.Hour,
		lastSweep: time.Now(),
	}
}

// GetLimiter gets or creates a limiter for an API key. Limiters idle for
// longer than an hour are dropped on the way.
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	if now.Sub(rl.lastSweep) > rl.idleTTL {
		for k, e := range rl.limiters {
			if now.Sub(e.lastSeen) > rl.idleTTL {
				delete(rl.limiters, k)
			}
		}
		rl.lastSweep = now
	}

	entry, ok := rl.limiters[key]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(rl.rps), rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(apiKeyContextKey)
		if key == "" {
			key = c.ClientIP() // Fallback to IP if no API key
		}

		if !limiter.GetLimiter(key).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: "Rate limit exceeded",
				Code:  "RATE_LIMIT_EXCEEDED",
			})
			return
		}

		c.Next()
	}
}

// MetricsMiddleware records request counts and latencies per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}

// RequestLogMiddleware logs one line per request.
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("took", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("HTTP request")
	}
}

// ErrorHandlerMiddleware handles errors and returns standard format
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Error().Err(err).Msg("Request error")

			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error: err.Error(),
				Code:  "INTERNAL_ERROR",
			})
		}
	}
}
