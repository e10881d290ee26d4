package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vedya-health/vedya-platform/internal/appointments"
	"github.com/vedya-health/vedya-platform/internal/dialogue"
	httpmiddleware "github.com/vedya-health/vedya-platform/internal/http/middleware"
	"github.com/vedya-health/vedya-platform/internal/messaging"
	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	MessagingHandler    *messaging.Handler
	DialogueHandler     *dialogue.Handler
	AppointmentsHandler *appointments.Handler
	MetricsHandler      http.Handler
}

// New creates a new Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.MessagingHandler != nil {
		r.Route("/webhooks/twilio", func(r chi.Router) {
			r.Post("/whatsapp", cfg.MessagingHandler.WhatsAppWebhook)
		})
	}

	if cfg.DialogueHandler != nil {
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/message", cfg.DialogueHandler.Message)
		})
	}

	if cfg.AppointmentsHandler != nil {
		r.Route("/appointments", func(r chi.Router) {
			r.Get("/", cfg.AppointmentsHandler.List)
			r.Get("/{id}", cfg.AppointmentsHandler.Get)
		})
	}

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	return r
}
