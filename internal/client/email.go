// Client for the Resend email API.
//
// Environment:
//   - RESEND_API_KEY: API key; when empty, sends are skipped with an error
//   - EMAIL_FROM: sender address (default onboarding@resend.dev)
//   - APP_NAME: display name used in the From header and templates
//   - FRONTEND_URL: base URL for links embedded in emails

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ftechnology/backend/internal/config"
)

const resendEndpoint = "https://api.resend.com/emails"

type EmailClient struct {
	apiKey      string
	fromEmail   string
	appName     string
	frontendURL string
	httpClient  *http.Client
}

type emailPayload struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type emailResponse struct {
	ID      string `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}

func NewEmailClient(cfg config.EmailConfig) *EmailClient {
	return &EmailClient{
		apiKey:      cfg.APIKey,
		fromEmail:   cfg.FromEmail,
		appName:     cfg.AppName,
		frontendURL: cfg.FrontendURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *EmailClient) IsConfigured() bool {
	return c.apiKey != ""
}

func (c *EmailClient) SendPasswordResetEmail(ctx context.Context, email, secret, displayName string) error {
	resetLink := fmt.Sprintf("%s/reset-password?token=%s", c.frontendURL, url.QueryEscape(secret))
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>We received a request to reset your %s password. The link below is valid for one hour and can be used once.</p><p><a href="%s">Reset your password</a></p><p>If you did not request this, you can ignore this email.</p>`,
		displayName, c.appName, resetLink,
	)
	return c.send(ctx, emailPayload{
		From:    fmt.Sprintf("%s <%s>", c.appName, c.fromEmail),
		To:      email,
		Subject: "Reset your password",
		HTML:    html,
	})
}

func (c *EmailClient) SendWelcomeEmail(ctx context.Context, email, displayName string) error {
	html := fmt.Sprintf(
		`<p>Hi %s,</p><p>Welcome to %s! Your account is ready.</p><p><a href="%s">Go to your dashboard</a></p>`,
		displayName, c.appName, c.frontendURL,
	)
	return c.send(ctx, emailPayload{
		From:    fmt.Sprintf("%s <%s>", c.appName, c.fromEmail),
		To:      email,
		Subject: fmt.Sprintf("Welcome to %s!", c.appName),
		HTML:    html,
	})
}

func (c *EmailClient) send(ctx context.Context, msg emailPayload) error {
	if !c.IsConfigured() {
		return fmt.Errorf("email API key not configured")
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resendEndpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr emailResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return fmt.Errorf("email API error: %s", apiErr.Message)
		}
		return fmt.Errorf("email API error: status %d", resp.StatusCode)
	}

	return nil
}
