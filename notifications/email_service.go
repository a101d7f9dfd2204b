package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const brevoURL = "https://api.brevo.com/v3/smtp/email"

type BrevoService struct {
	apiKey      string
	senderEmail string
	senderName  string
	url         string
	client      *http.Client
}

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

// NewEmailService returns nil when any setting is missing; a nil service skips sends.
func NewEmailService(apiKey, senderEmail, senderName, url string) *BrevoService {
	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Warn("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		return nil
	}
	if url == "" {
		url = brevoURL
	}
	log.WithField("sender", senderEmail).Info("✅ Email service initialized successfully.")
	return &BrevoService{
		apiKey:      apiKey,
		senderEmail: senderEmail,
		senderName:  senderName,
		url:         url,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *BrevoService) Send(ctx context.Context, toName, toEmail, subject, htmlContent string) error {
	if s == nil {
		log.Debug("Email client not initialized, skipping email send.")
		return nil
	}
	at := strings.Index(toEmail, "@")
	if toEmail == "" || at < 1 {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}
	if toName == "" {
		toName = toEmail[:at]
	}

	body, err := json.Marshal(brevoPayload{
		Sender:      map[string]string{"name": s.senderName, "email": s.senderEmail},
		To:          []map[string]string{{"email": toEmail, "name": toName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.apiKey)
	req.Header.Set("content-type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("failed to send email via Brevo: status %d: %s", resp.StatusCode, string(respBody))
	}
	log.WithField("to", toEmail).Info("✅ Email sent")
	return nil
}
