package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skillacademy/course-service/internal/models"
)

// ChallengesClient talks to the challenges service for solved subtasks.
// Calls forward the end user's own bearer token.
type ChallengesClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewChallengesClient creates a new challenges client
func NewChallengesClient(baseURL string) *ChallengesClient {
	return &ChallengesClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SolvedSubtasks returns the subtasks the calling user has solved
func (c *ChallengesClient) SolvedSubtasks(ctx context.Context, authToken string) ([]models.Subtask, error) {
	url := fmt.Sprintf("%s/subtasks?solved=true", c.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build subtasks request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subtasks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("subtasks request failed with status %d", resp.StatusCode)
	}

	var subtasks []models.Subtask
	if err := json.NewDecoder(resp.Body).Decode(&subtasks); err != nil {
		return nil, fmt.Errorf("failed to decode subtasks response: %w", err)
	}

	return subtasks, nil
}
