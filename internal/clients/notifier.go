package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// NotifierClient sends transactional emails through the task service
type NotifierClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewNotifierClient creates a new notifier client
func NewNotifierClient(baseURL, apiKey string) *NotifierClient {
	return &NotifierClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendPurchaseConfirmation queues a purchase confirmation email for the
// user. The task service resolves the user's email address; callers
// treat failures as best-effort.
func (c *NotifierClient) SendPurchaseConfirmation(ctx context.Context, userID, courseTitle string) error {
	url := fmt.Sprintf("%s/tasks/email", c.baseURL)

	payload, err := json.Marshal(map[string]any{
		"user_id":  userID,
		"template": "bought_course",
		"params": map[string]string{
			"title": courseTitle,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email task: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email task request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to queue email task: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("email task request failed with status %d", resp.StatusCode)
	}

	return nil
}
