package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TwilioSender delivers SMS through Twilio's Messages REST endpoint.
type TwilioSender struct {
	sid    string
	token  string
	from   string
	client *http.Client
}

func NewTwilioSender(sid, token, from string) *TwilioSender {
	return &TwilioSender{
		sid:    sid,
		token:  token,
		from:   from,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Send posts one message.  Subject is ignored; SMS has no subject line.
func (s *TwilioSender) Send(ctx context.Context, destination, _ string, body string) error {
	form := url.Values{}
	form.Set("To", destination)
	form.Set("From", s.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.sid)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.sid, s.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}
