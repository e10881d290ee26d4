package messaging

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	reply     string
	err       error
	sessionID string
	text      string
}

func (f *fakeDispatcher) HandleMessage(_ context.Context, sessionID, text string) (string, error) {
	f.sessionID = sessionID
	f.text = text
	return f.reply, f.err
}

func postWebhook(t *testing.T, h *Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/twilio/whatsapp",
		strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.WhatsAppWebhook(rec, req)
	return rec
}

func TestWhatsAppWebhookRepliesWithTwiML(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: "Here are our Orthopedics specialists"}
	h := NewHandler(dispatcher, nil)

	rec := postWebhook(t, h, url.Values{
		"MessageSid": {"SM123"},
		"From":       {"whatsapp:+919900112233"},
		"To":         {"whatsapp:+14155238886"},
		"Body":       {"I have knee pain"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<Response><Message>Here are our Orthopedics specialists</Message></Response>")

	assert.Equal(t, "919900112233", dispatcher.sessionID)
	assert.Equal(t, "I have knee pain", dispatcher.text)
}

func TestWhatsAppWebhookEscapesReply(t *testing.T) {
	dispatcher := &fakeDispatcher{reply: `Tom & Jerry <3`}
	h := NewHandler(dispatcher, nil)

	rec := postWebhook(t, h, url.Values{
		"From": {"whatsapp:+919900112233"},
		"Body": {"hi"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tom &amp; Jerry &lt;3")
}

func TestWhatsAppWebhookRejectsMissingFields(t *testing.T) {
	h := NewHandler(&fakeDispatcher{}, nil)

	rec := postWebhook(t, h, url.Values{
		"From": {"whatsapp:+919900112233"},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWhatsAppWebhookDispatcherError(t *testing.T) {
	h := NewHandler(&fakeDispatcher{err: errors.New("queue closed")}, nil)

	rec := postWebhook(t, h, url.Values{
		"From": {"whatsapp:+919900112233"},
		"Body": {"hello"},
	})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"whatsapp:+919900112233", "919900112233"},
		{"+1 (415) 523-8886", "14155238886"},
		{"919900112233", "919900112233"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizePhone(tt.in); got != tt.want {
			t.Errorf("NormalizePhone(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
