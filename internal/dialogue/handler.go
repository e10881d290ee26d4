package dialogue

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// Handler wires HTTP requests to the dialogue dispatcher.
type Handler struct {
	dispatcher Dispatcher
	logger     *logging.Logger
}

// NewHandler creates a dialogue handler.
func NewHandler(dispatcher Dispatcher, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// MessageRequest is one inbound turn from a non-WhatsApp client.
type MessageRequest struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// MessageResponse carries the bot's reply.
type MessageResponse struct {
	Reply string `json:"reply"`
}

// Message handles POST /conversations/message.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode message request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	reply, err := h.dispatcher.HandleMessage(r.Context(), req.SessionID, req.Text)
	if err != nil {
		h.logger.Error("failed to process message", "error", err)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, MessageResponse{Reply: reply})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
