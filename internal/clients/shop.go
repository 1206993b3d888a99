// Package clients contains HTTP clients for the internal services this
// service collaborates with. All calls authenticate with the X-API-Key
// service header.
package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// ShopClient talks to the shop service for premium entitlements and the
// coin ledger
type ShopClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewShopClient creates a new shop client
func NewShopClient(baseURL, apiKey string) *ShopClient {
	return &ShopClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// HasPremium reports whether the user holds an active premium subscription
func (c *ShopClient) HasPremium(ctx context.Context, userID string) (bool, error) {
	url := fmt.Sprintf("%s/premium/%s", c.baseURL, userID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build premium request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to query premium status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("premium status request failed with status %d", resp.StatusCode)
	}

	var body struct {
		Premium bool `json:"premium"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("failed to decode premium response: %w", err)
	}

	return body.Premium, nil
}

// SpendCoins debits the user's coin balance. Returns false without an
// error when the balance is insufficient; the ledger performs no
// partial debit.
func (c *ShopClient) SpendCoins(ctx context.Context, userID string, amount int, description string) (bool, error) {
	url := fmt.Sprintf("%s/coins/%s/spend", c.baseURL, userID)

	payload, err := json.Marshal(map[string]any{
		"amount":      amount,
		"description": description,
	})
	if err != nil {
		return false, fmt.Errorf("failed to marshal spend request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return false, fmt.Errorf("failed to build spend request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to spend coins: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusPreconditionFailed:
		// Insufficient balance
		return false, nil
	default:
		return false, fmt.Errorf("spend coins request failed with status %d", resp.StatusCode)
	}
}
