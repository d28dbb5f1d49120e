package email

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

type Client struct {
	serverToken string
	fromEmail   string
	httpClient  *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func NewClient(serverToken, fromEmail string, opts ...Option) *Client {
	c := &Client{
		serverToken: serverToken,
		fromEmail:   fromEmail,
		httpClient:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured returns true if the server token is set. Invite delivery is
// skipped (the share URL is still returned to the inviter) when it is not.
func (c *Client) Configured() bool {
	return c.serverToken != ""
}

type postmarkEmail struct {
	From     string `json:"From"`
	To       string `json:"To"`
	Subject  string `json:"Subject"`
	HtmlBody string `json:"HtmlBody"`
	TextBody string `json:"TextBody"`
}

// SendInvite emails an invite link for joining a family.
func (c *Client) SendInvite(toEmail, inviteURL, familyName string) error {
	if !c.Configured() {
		return fmt.Errorf("email client not configured: missing server token")
	}

	subject := fmt.Sprintf("You've been invited to %s on Hearth", familyName)
	textBody := fmt.Sprintf("You've been invited to join %s.\n\nFollow the link below to accept:\n\n%s\n\nThis invitation expires in 7 days.", familyName, inviteURL)
	htmlBody := fmt.Sprintf(
		`<p>You've been invited to join <strong>%s</strong>.</p><p><a href="%s">Accept your invitation</a></p><p>This invitation expires in 7 days.</p>`,
		familyName, inviteURL,
	)

	payload := postmarkEmail{
		From:     c.fromEmail,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlBody,
		TextBody: textBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal email: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.postmarkapp.com/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Postmark-Server-Token", c.serverToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("postmark API error: status %d", resp.StatusCode)
	}

	return nil
}
