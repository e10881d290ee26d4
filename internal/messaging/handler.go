package messaging

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vedya-health/vedya-platform/pkg/logging"
)

var twilioTracer = otel.Tracer("vedya.internal.messaging.twilio")

type turnDispatcher interface {
	HandleMessage(ctx context.Context, sessionID, text string) (string, error)
}

// Handler handles Twilio WhatsApp webhook requests and replies with TwiML.
type Handler struct {
	dispatcher turnDispatcher
	logger     *logging.Logger
}

// NewHandler creates a messaging handler.
func NewHandler(dispatcher turnDispatcher, logger *logging.Logger) *Handler {
	if dispatcher == nil {
		panic("messaging: dispatcher cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// WhatsAppWebhook handles POST /webhooks/twilio/whatsapp requests.
func (h *Handler) WhatsAppWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, span := twilioTracer.Start(r.Context(), "messaging.twilio.whatsapp")
	defer span.End()

	webhook, err := ParseTwilioWebhook(r)
	if err != nil {
		h.logger.Error("failed to parse twilio webhook", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	from := NormalizePhone(webhook.From)
	span.SetAttributes(
		attribute.String("vedya.twilio.message_sid", webhook.MessageSid),
		attribute.String("vedya.twilio.from", from),
	)

	if from == "" || webhook.Body == "" {
		err := errors.New("missing required twilio fields")
		h.logger.Error("invalid twilio payload", "error", err)
		http.Error(w, "Bad Request", http.StatusBadRequest)
		span.RecordError(err)
		return
	}

	reply, err := h.dispatcher.HandleMessage(ctx, from, webhook.Body)
	if err != nil {
		h.logger.Error("failed to process whatsapp turn", "from", from, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		span.RecordError(err)
		return
	}

	h.writeTwiML(w, reply)
}

func (h *Handler) writeTwiML(w http.ResponseWriter, message string) {
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(message)); err != nil {
		h.logger.Error("failed to encode twiml reply", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Response><Message>` + escaped.String() + `</Message></Response>`))
}
