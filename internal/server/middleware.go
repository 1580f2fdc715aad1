package server

import (
	"context"
	"fmt"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/desertthunder/podshelf/internal/shared"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// RequestID returns the id [RequestLogger] stored on the request context, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusRecorder captures the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (rw *statusRecorder) WriteHeader(code int) {
	if !rw.written {
		rw.status = code
		rw.written = true
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}

// RequestLogger assigns every request a uuid, echoes it in [RequestIDHeader] and logs the outcome.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := shared.GenerateID()
			w.Header().Set(RequestIDHeader, id)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))

			kv := []any{
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", time.Since(start),
			}
			if rec.status >= http.StatusInternalServerError {
				logger.Error("request failed", kv...)
				return
			}
			logger.Info("request", kv...)
		})
	}
}

// Recover converts a panicking handler into a 500 and an error log line.
func Recover(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("handler panic", "path", r.URL.Path, "request_id", RequestID(r.Context()), "panic", v)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter hands out one token bucket per client key.
//
// Buckets idle for longer than the expiry are evicted by the cache janitor.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter allows perSecond requests per key with the given burst.
func NewRateLimiter(perSecond float64, burst int, expiry time.Duration) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	if expiry <= 0 {
		expiry = 10 * time.Minute
	}
	return &RateLimiter{
		limiters: cache.New(expiry, 2*expiry),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

// Allow reports whether key may make a request now, consuming a token if so.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	var limiter *rate.Limiter
	if v, ok := l.limiters.Get(key); ok {
		limiter = v.(*rate.Limiter)
	} else {
		limiter = rate.NewLimiter(l.limit, l.burst)
	}
	l.limiters.SetDefault(key, limiter)

	return limiter.Allow()
}

// retryAfter is the wait in whole seconds for one token to refill.
func (l *RateLimiter) retryAfter() int {
	if l.limit <= 0 || l.limit == rate.Inf {
		return 1
	}
	return int(math.Ceil(1 / float64(l.limit)))
}

// ClientKey identifies the caller by the first X-Forwarded-For address, falling back to the remote host.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit rejects requests over the limiter's budget with 429 Too Many Requests.
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(ClientKey(r)) {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", limiter.retryAfter()))
				http.Error(w, "Too many requests, try again later", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORS allows read-only cross-origin requests from origins, or from anywhere when none are given.
func CORS(origins ...string) Middleware {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	})
	return c.Handler
}
