package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// EmailSender sends transactional HTML email through the ZeptoMail
// HTTP API.
type EmailSender struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	from       string
}

// NewEmailSender builds a sender. apiURL is the full ZeptoMail endpoint,
// e.g. https://api.zeptomail.com/v1.1/email.
func NewEmailSender(apiURL, apiKey, from string) *EmailSender {
	return &EmailSender{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		apiURL:     apiURL,
		apiKey:     apiKey,
		from:       from,
	}
}

type emailAddress struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

type emailRequest struct {
	From     emailAddress `json:"from"`
	To       []struct {
		EmailAddress emailAddress `json:"email_address"`
	} `json:"to"`
	Subject  string `json:"subject"`
	HtmlBody string `json:"htmlbody"`
}

// Send delivers one HTML email.
func (s *EmailSender) Send(ctx context.Context, to, toName, subject, htmlBody string) error {
	if s.apiURL == "" || s.apiKey == "" || s.from == "" {
		return fmt.Errorf("email sender not configured")
	}
	payload := emailRequest{
		From:     emailAddress{Address: s.from},
		Subject:  subject,
		HtmlBody: htmlBody,
	}
	payload.To = append(payload.To, struct {
		EmailAddress emailAddress `json:"email_address"`
	}{EmailAddress: emailAddress{Address: to, Name: toName}})

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Authorization", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("email api status %d", resp.StatusCode)
	}
	return nil
}
