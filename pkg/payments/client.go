package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Client is an HTTP payment provider client. With MockAPI set it settles
// transfers against an in-memory vault instead of calling the provider.
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool
	client  *http.Client

	mu      sync.Mutex
	vault   uint64
	settled map[string]*TransferReceipt
}

// NewClient creates a new payment client. mockBalance seeds the vault used
// in mock mode.
func NewClient(baseURL, apiKey string, mockAPI bool, mockBalance uint64) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		MockAPI: mockAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
		vault:   mockBalance,
		settled: make(map[string]*TransferReceipt),
	}
}

// Balance returns the funds available to pay out
func (c *Client) Balance(ctx context.Context) (uint64, error) {
	if c.MockAPI {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.vault, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/vault/balance", nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	var response struct {
		Balance uint64 `json:"balance"`
	}
	if err := c.do(req, &response); err != nil {
		return 0, err
	}
	return response.Balance, nil
}

// Transfer sends req.Amount to req.Destination
func (c *Client) Transfer(ctx context.Context, req TransferRequest) (*TransferReceipt, error) {
	if req.Amount == 0 || req.Destination == "" {
		return nil, fmt.Errorf("%w: amount and destination are required", ErrTransferRejected)
	}
	if c.MockAPI {
		return c.mockTransfer(req)
	}

	jsonBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/transfers", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.IdempotencyKey)

	var receipt TransferReceipt
	if err := c.do(httpReq, &receipt); err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 500:
		return fmt.Errorf("provider error %d: %s", resp.StatusCode, string(body))
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: status %d: %s", ErrTransferRejected, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// mockTransfer settles against the in-memory vault. A repeated idempotency
// key returns the first receipt without moving funds again.
func (c *Client) mockTransfer(req TransferRequest) (*TransferReceipt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if req.IdempotencyKey != "" {
		if receipt, ok := c.settled[req.IdempotencyKey]; ok {
			return receipt, nil
		}
	}
	if c.vault < req.Amount {
		return nil, fmt.Errorf("%w: vault holds %d, need %d", ErrTransferRejected, c.vault, req.Amount)
	}

	c.vault -= req.Amount
	receipt := &TransferReceipt{
		Reference:   "MOCK-" + uuid.NewString(),
		Destination: req.Destination,
		Amount:      req.Amount,
		SettledAt:   time.Now().UTC(),
	}
	if req.IdempotencyKey != "" {
		c.settled[req.IdempotencyKey] = receipt
	}
	return receipt, nil
}
