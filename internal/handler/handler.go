// Package handler serves the grandmaster directory over HTTP: server-rendered
// pages, a JSON API and a websocket feed of the profile clock.
package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omarshaarawi/gmwiki/internal/config"
	"github.com/omarshaarawi/gmwiki/internal/repository/memory"
	"github.com/omarshaarawi/gmwiki/internal/view"
)

//go:embed templates/*.html
var templateFS embed.FS

const suggestionLimit = 3

type Handler struct {
	dir      view.Directory
	ticker   view.Ticker
	sessions *memory.Repository
	validate *validator.Validate
	pages    *template.Template
	cfg      config.HTTP
}

func NewHandler(dir view.Directory, ticker view.Ticker, sessions *memory.Repository, cfg config.HTTP) (*Handler, error) {
	pages, err := template.New("").Funcs(template.FuncMap{
		"sortLink": sortLink,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Handler{
		dir:      dir,
		ticker:   ticker,
		sessions: sessions,
		validate: validator.New(),
		pages:    pages,
		cfg:      cfg,
	}, nil
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", h.ListPage)
	r.Route("/profile/{username}", func(r chi.Router) {
		r.Get("/", h.ProfilePage)
		r.Get("/clock", h.ProfileClock)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: h.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			MaxAge:         300,
		}))
		r.Use(httprate.LimitByIP(h.cfg.APIRateLimit, time.Minute))

		r.Get("/players", h.ListPlayers)
		r.Get("/players/{username}", h.GetPlayer)
	})

	return r
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
