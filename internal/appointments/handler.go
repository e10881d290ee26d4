package appointments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// Handler exposes the read surface consumed by the notification subsystem.
type Handler struct {
	store  Store
	logger *logging.Logger
}

func NewHandler(store Store, logger *logging.Logger) *Handler {
	if store == nil {
		panic("appointments: store cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// List handles GET /appointments. An optional patientNumber query parameter
// filters by patient.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	var (
		appts []Appointment
		err   error
	)
	if patientNumber := r.URL.Query().Get("patientNumber"); patientNumber != "" {
		appts, err = h.store.ListByPatientNumber(r.Context(), patientNumber)
	} else {
		appts, err = h.store.List(r.Context())
	}
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "Failed to list appointments", http.StatusInternalServerError)
		return
	}
	if appts == nil {
		appts = []Appointment{}
	}
	h.writeJSON(w, http.StatusOK, appts)
}

// Get handles GET /appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	appt, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, "Appointment not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load appointment", "appointment_id", id, "error", err)
		http.Error(w, "Failed to load appointment", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, appt)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
