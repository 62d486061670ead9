package main

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

const clientLimiterExpiry = 5 * time.Minute

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (a *app) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

func (a *app) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		a.log.InfoContext(r.Context(), "Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

type appHandler func(w http.ResponseWriter, r *http.Request) error

// page serves browser routes: unauthorized errors send the client to /auth, the rest render as text.
func (a *app) page(h appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		appErr := asAppError(err)
		if appErr.Type == typeUnauthorized {
			a.log.InfoContext(r.Context(), "Session unusable, redirecting to auth", "path", r.URL.Path, "error", appErr)
			a.clearSession(w, r)
			http.Redirect(w, r, "/auth", authRedirectStatus(r))
			return
		}

		a.logError(r, appErr)
		http.Error(w, appErr.Message, appErr.HTTPStatus())
	})
}

// authRedirectStatus keeps GET navigations temporary and turns form posts into a GET of /auth.
func authRedirectStatus(r *http.Request) int {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return http.StatusTemporaryRedirect
	}
	return http.StatusSeeOther
}

type errorResponse struct {
	Error    string    `json:"error"`
	Type     errorType `json:"type"`
	Redirect string    `json:"redirect,omitempty"`
}

// api serves JSON routes; the home page script follows the redirect hint on 401.
func (a *app) api(h appHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := h(w, r)
		if err == nil {
			return
		}

		appErr := asAppError(err)
		resp := errorResponse{Error: appErr.Message, Type: appErr.Type}
		if appErr.Type == typeUnauthorized {
			resp.Redirect = "/auth"
		} else {
			a.logError(r, appErr)
		}

		writeJSON(w, appErr.HTTPStatus(), resp)
	})
}

func (a *app) logError(r *http.Request, err *appError) {
	if err.HTTPStatus() >= http.StatusInternalServerError {
		a.log.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "type", err.Type, "error", err)
		return
	}
	a.log.WarnContext(r.Context(), "Request rejected", "path", r.URL.Path, "type", err.Type, "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type clientLimiter struct {
	mu          sync.Mutex
	rate        rate.Limit
	burst       int
	clock       clockwork.Clock
	clients     map[string]*limiterEntry
	lastCleanup time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(perSecond float64, burst int, clock clockwork.Clock) *clientLimiter {
	return &clientLimiter{
		rate:        rate.Limit(perSecond),
		burst:       burst,
		clock:       clock,
		clients:     make(map[string]*limiterEntry),
		lastCleanup: clock.Now(),
	}
}

func (l *clientLimiter) allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if now.Sub(l.lastCleanup) > clientLimiterExpiry {
		l.cleanupStale(now)
	}

	entry, ok := l.clients[client]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.clients[client] = entry
	}
	entry.lastSeen = now

	return entry.limiter.AllowN(now, 1)
}

// cleanupStale drops clients idle for longer than clientLimiterExpiry. Callers hold l.mu.
func (l *clientLimiter) cleanupStale(now time.Time) {
	for key, entry := range l.clients {
		if now.Sub(entry.lastSeen) > clientLimiterExpiry {
			delete(l.clients, key)
		}
	}
	l.lastCleanup = now
}

func rateLimited(l *clientLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the address reported by the edge proxy; behind it every
// request shares the proxy's RemoteAddr.
func clientIP(r *http.Request) string {
	if ip := strings.TrimSpace(r.Header.Get("Fly-Client-IP")); ip != "" {
		return ip
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
