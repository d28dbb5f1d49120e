package email

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestConfigured(t *testing.T) {
	if NewClient("", "from@example.com").Configured() {
		t.Error("client without token should not be configured")
	}
	if !NewClient("token", "from@example.com").Configured() {
		t.Error("client with token should be configured")
	}
}

func TestSendInviteUnconfigured(t *testing.T) {
	c := NewClient("", "from@example.com")
	if err := c.SendInvite("to@example.com", "http://example.com/auth?invite=abc", "Family"); err == nil {
		t.Error("expected error when not configured")
	}
}

func TestSendInvite(t *testing.T) {
	var captured postmarkEmail
	var gotToken string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Postmark-Server-Token")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	proxy := &http.Client{
		Transport: rewriteTransport{target: server.URL},
	}
	c := NewClient("test-token", "hearth@example.com", WithHTTPClient(proxy))

	err := c.SendInvite("to@example.com", "http://example.com/auth?invite=abc123", "The Smiths")
	if err != nil {
		t.Fatalf("SendInvite: %v", err)
	}

	if gotToken != "test-token" {
		t.Errorf("server token = %q, want test-token", gotToken)
	}
	if captured.To != "to@example.com" {
		t.Errorf("To = %q, want to@example.com", captured.To)
	}
	if captured.From != "hearth@example.com" {
		t.Errorf("From = %q", captured.From)
	}
	if !strings.Contains(captured.TextBody, "http://example.com/auth?invite=abc123") {
		t.Error("text body should contain the invite link")
	}
	if !strings.Contains(captured.Subject, "The Smiths") {
		t.Error("subject should contain the family name")
	}
}

func TestSendInviteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	proxy := &http.Client{
		Transport: rewriteTransport{target: server.URL},
	}
	c := NewClient("test-token", "hearth@example.com", WithHTTPClient(proxy))

	if err := c.SendInvite("to@example.com", "http://example.com", "Family"); err == nil {
		t.Error("expected error on API failure")
	}
}

// rewriteTransport redirects all requests to the test server.
type rewriteTransport struct {
	target string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u, err := url.Parse(rt.target)
	if err != nil {
		return nil, err
	}
	req.URL.Scheme = u.Scheme
	req.URL.Host = u.Host
	return http.DefaultTransport.RoundTrip(req)
}
