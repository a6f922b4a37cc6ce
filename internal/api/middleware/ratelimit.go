package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/snapvocab/snapvocab-api/internal/api/shared"
)

// Limiter decides whether a request for key may proceed.
type Limiter interface {
	Allow(key string) (bool, time.Duration)
}

// RateLimit throttles requests per authenticated learner, falling back to the
// remote address for anonymous requests. Rejected requests get 429 with a
// Retry-After header in whole seconds.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if learnerID, ok := shared.GetLearnerID(r.Context()); ok {
				key = learnerID.String()
			}

			allowed, retryAfter := limiter.Allow(key)
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				shared.RespondWithError(w, r, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
