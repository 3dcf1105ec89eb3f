package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/xwteam/mascot/internal/card"
	"github.com/xwteam/mascot/internal/live2d"
)

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Catalog    *live2d.Catalog
	AllowAdult bool
	// DefaultIndex is the fixed pick used by id-query routes, or nil.
	DefaultIndex *int
	// Rand drives random picks; nil uses live2d.DefaultRand.
	Rand  live2d.Rand
	Cards *card.Builder
	// AllowedDomains gate /api/sign by referer.
	AllowedDomains []string
	// Now is the clock for timestamps and cache busters; nil uses time.Now.
	Now func() time.Time
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d Deps) rng() live2d.Rand {
	if d.Rand != nil {
		return d.Rand
	}
	return live2d.DefaultRand
}

// NewHandler returns the HTTP handler serving the avatar-config routes, the
// visitor card and a health check.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/health", handleHealth)

	for _, rt := range avatarRoutes {
		r.Get(rt.pattern, handleAvatar(deps, rt))
	}
	r.Get("/api/sign", handleSign(deps))

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// requestLogger tags each request with an ID and logs its outcome.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", id)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		slog.Info("request",
			"request_id", id,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
