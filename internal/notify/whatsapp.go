package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// WhatsAppTransport delivers digests through the Twilio WhatsApp messaging
// API. Subject is ignored; WhatsApp messages carry the body only.
type WhatsAppTransport struct {
	accountSID string
	authToken  string
	from       string

	// BaseURL is overridable in tests.
	BaseURL    string
	HTTPClient *http.Client
}

func NewWhatsAppTransport(accountSID, authToken, from string) *WhatsAppTransport {
	return &WhatsAppTransport{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		BaseURL:    "https://api.twilio.com",
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

func (t *WhatsAppTransport) Name() string { return "whatsapp" }

func (t *WhatsAppTransport) Send(ctx context.Context, address, _, body string) error {
	if t.accountSID == "" || t.authToken == "" {
		return fmt.Errorf("twilio credentials are not configured")
	}

	form := url.Values{}
	form.Set("From", whatsAppAddress(t.from))
	form.Set("To", whatsAppAddress(address))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.BaseURL, t.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building twilio request: %w", err)
	}
	req.SetBasicAuth(t.accountSID, t.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending whatsapp message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("twilio returned %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}
	return nil
}

func whatsAppAddress(number string) string {
	if strings.HasPrefix(number, "whatsapp:") {
		return number
	}
	return "whatsapp:" + number
}
