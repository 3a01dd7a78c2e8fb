package middleware

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"

	"github.com/phrazzld/cardhub-api/internal/api/shared"
	"github.com/phrazzld/cardhub-api/internal/platform/logger"
	"github.com/phrazzld/cardhub-api/internal/platform/redis"
)

// Limiter decides whether the caller identified by key may proceed.
// redis.FixedWindowLimiter satisfies it.
type Limiter interface {
	Allow(ctx context.Context, key string) (redis.Decision, error)
}

// RateLimit rejects callers that exceed the limiter's budget with 429 and a
// Retry-After header. Callers are keyed by remote IP; chi's RealIP
// middleware should run first when the service sits behind a proxy.
// When the limiter backend is unreachable requests are let through.
func RateLimit(limiter Limiter, observer Observer) func(http.Handler) http.Handler {
	observer = observerOrNop(observer)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d, err := limiter.Allow(r.Context(), "ip:"+clientIP(r))
			if err != nil {
				level := slog.LevelError
				if errors.Is(err, redis.ErrLimiterUnavailable) {
					level = slog.LevelWarn
				}
				logger.FromContext(r.Context()).Log(r.Context(), level, "rate limiter failed open",
					slog.String("error", err.Error()))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			if !d.Allowed {
				observer.ObserveRateLimited()
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(d.RetryAfter.Seconds()))))
				shared.RespondWithError(w, r, http.StatusTooManyRequests,
					"Too many requests, please try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
