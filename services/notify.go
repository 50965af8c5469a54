package services

import (
	"fmt"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// SmsNotifier pings the site owner by SMS when a new download request
// lands, so approvals don't sit unnoticed for days. Strictly best-effort:
// the caller logs failures and moves on.
//
// Requires environment variables:
//   - TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN
//   - TWILIO_FROM_NUMBER: sending number
//   - ADMIN_PHONE_NUMBER: where to send the ping
type SmsNotifier struct {
	client *twilio.RestClient
	from   string
	to     string
}

func NewSmsNotifier() (*SmsNotifier, error) {
	sid := os.Getenv("TWILIO_ACCOUNT_SID")
	token := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_FROM_NUMBER")
	to := os.Getenv("ADMIN_PHONE_NUMBER")

	if sid == "" || token == "" || from == "" || to == "" {
		return nil, fmt.Errorf("twilio configuration incomplete")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: sid,
		Password: token,
	})

	return &SmsNotifier{client: client, from: from, to: to}, nil
}

// NewRequest sends the ping for a freshly created download request.
func (n *SmsNotifier) NewRequest(requesterName, projectTitle string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(n.to)
	params.SetFrom(n.from)
	params.SetBody(fmt.Sprintf("New download request for '%s' from %s", projectTitle, requesterName))

	_, err := n.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("send sms notification: %w", err)
	}
	return nil
}
