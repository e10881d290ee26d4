package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/vedya-health/vedya-platform/pkg/logging"
)

// WhatsAppSender delivers a reminder body to a phone number.
type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body string) error
}

// TwilioWhatsAppSender sends WhatsApp messages through Twilio's REST API.
type TwilioWhatsAppSender struct {
	client *twilio.RestClient
	from   string
	logger *logging.Logger
}

// NewTwilioWhatsAppSender creates a Twilio-backed sender. from must be in the
// "whatsapp:+14155238886" format.
func NewTwilioWhatsAppSender(accountSID, authToken, from string, logger *logging.Logger) (*TwilioWhatsAppSender, error) {
	if accountSID == "" || authToken == "" || from == "" {
		return nil, fmt.Errorf("notify: missing twilio credentials")
	}
	if logger == nil {
		logger = logging.Default()
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioWhatsAppSender{
		client: client,
		from:   from,
		logger: logger,
	}, nil
}

func (s *TwilioWhatsAppSender) SendWhatsApp(_ context.Context, to, body string) error {
	if !strings.HasPrefix(to, "whatsapp:") {
		if !strings.HasPrefix(to, "+") {
			to = "+" + to
		}
		to = "whatsapp:" + to
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(to)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("notify: failed to send whatsapp message: %w", err)
	}

	sid := ""
	if resp.Sid != nil {
		sid = *resp.Sid
	}
	s.logger.Info("whatsapp reminder sent", "to", to, "message_sid", sid)
	return nil
}
