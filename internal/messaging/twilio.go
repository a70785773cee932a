package messaging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrEmptyRecipient = errors.New("recipient phone number is empty")

// MessageCreator is the part of the Twilio REST API used to send messages.
type MessageCreator interface {
	CreateMessage(params *openapi.CreateMessageParams) (*openapi.ApiV2010Message, error)
}

// TwilioSender sends SMS messages through the Twilio REST API.
type TwilioSender struct {
	api MessageCreator
	log *slog.Logger
}

// NewTwilioSender creates a sender authenticated with the given account SID and auth token.
func NewTwilioSender(log *slog.Logger, accountSID, authToken string) *TwilioSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return NewSenderWithAPI(log, client.Api)
}

// NewSenderWithAPI creates a sender on top of an existing message API.
func NewSenderWithAPI(log *slog.Logger, api MessageCreator) *TwilioSender {
	return &TwilioSender{api: api, log: log}
}

// Send dispatches body to the given number and returns the message SID.
func (s *TwilioSender) Send(ctx context.Context, to, from, body string) (string, error) {
	if to == "" {
		return "", ErrEmptyRecipient
	}
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("message to %s not sent: %w", to, err)
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(from)
	params.SetBody(body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send message to %s: %w", to, err)
	}

	var sid string
	if resp != nil && resp.Sid != nil {
		sid = *resp.Sid
	}
	s.log.DebugContext(ctx, "Message accepted by provider", "to", to, "sid", sid)

	return sid, nil
}
