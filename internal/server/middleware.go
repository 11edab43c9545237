package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kavirubc/ticketrag/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type ctxKey int

const requestIDKey ctxKey = 0

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// requestID adds a request id to the context and response header
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

// statusWriter captures the status code for logging
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// accessLog logs one line per request and records HTTP metrics. Routes are
// labelled by their mux template to keep cardinality bounded.
func accessLog(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			took := time.Since(start)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil && tpl != "" {
					route = tpl
				}
			}
			metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(route).Observe(took.Seconds())

			logger.Info("request",
				zap.String("request_id", requestIDFrom(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("took", took))
		})
	}
}

// recoverPanics turns a handler panic into a 500
func recoverPanics(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("handler panic",
						zap.String("request_id", requestIDFrom(r.Context())),
						zap.Any("panic", rec),
						zap.Stack("stack"))
					respondError(w, r, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

const maxTrackedClients = 4096

// rateLimiter holds a token bucket per client IP. The least recently seen
// clients are evicted once maxTrackedClients is reached.
type rateLimiter struct {
	mu        sync.Mutex
	perMinute int
	burst     int
	proxies   []netip.Prefix
	clients   *lru.Cache[string, *rate.Limiter]
}

func newRateLimiter(perMinute, burst int, proxies []netip.Prefix) *rateLimiter {
	if burst <= 0 {
		burst = perMinute
	}
	clients, _ := lru.New[string, *rate.Limiter](maxTrackedClients)
	return &rateLimiter{perMinute: perMinute, burst: burst, proxies: proxies, clients: clients}
}

func (l *rateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.clients.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(rate.Limit(float64(l.perMinute)/60.0), l.burst)
	l.clients.Add(ip, lim)
	return lim
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.perMinute <= 0 || r.URL.Path == "/api/health" || r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		lim := l.limiter(clientIP(r, l.proxies))
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.perMinute))
		if !lim.Allow() {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("Retry-After", "60")
			respondError(w, r, http.StatusTooManyRequests, ErrCodeRateLimitExceeded,
				fmt.Sprintf("rate limit exceeded: %d requests per minute", l.perMinute))
			return
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(int(lim.Tokens())))
		next.ServeHTTP(w, r)
	})
}

// clientIP returns the address rate limits apply to. Forwarding headers are
// read only when the peer is a trusted proxy; X-Forwarded-For is walked from
// the right, skipping trusted hops.
func clientIP(r *http.Request, proxies []netip.Prefix) string {
	peer := r.RemoteAddr
	if host, _, err := net.SplitHostPort(peer); err == nil {
		peer = host
	}
	if !trusted(peer, proxies) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop != "" && !trusted(hop, proxies) {
				return hop
			}
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func trusted(ip string, proxies []netip.Prefix) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range proxies {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// parseTrustedProxies accepts bare IPs and CIDRs
func parseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", e, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
