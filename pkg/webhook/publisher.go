// Package webhook delivers committed ledger events to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ArowuTest/jackpot-ledger/internal/models"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Ledger-Signature"

// Publisher posts event batches as JSON.
type Publisher struct {
	URL        string
	Secret     string
	httpClient *http.Client
}

// NewPublisher creates a new Publisher
func NewPublisher(url, secret string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Publisher{
		URL:        url,
		Secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type payload struct {
	Events []*models.Event `json:"events"`
}

// Notify sends events in one request. An empty batch is not sent.
func (p *Publisher) Notify(ctx context.Context, events []*models.Event) error {
	if len(events) == 0 {
		return nil
	}

	jsonBody, err := json.Marshal(payload{Events: events})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(p.Secret, jsonBody))
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Sign returns the signature a receiver should expect for body.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
