package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIClient implements ThreadAPI against the OpenAI Assistants v2 API
type OpenAIClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

var _ ThreadAPI = &OpenAIClient{}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type threadResponse struct {
	ID string `json:"id"`
}

type runResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type messageListResponse struct {
	Data []ThreadMessage `json:"data"`
}

type apiError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) CreateThread(ctx context.Context) (string, error) {
	var res threadResponse
	if err := c.do(ctx, "POST", "/threads", nil, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (c *OpenAIClient) DeleteThread(ctx context.Context, threadID string) error {
	return c.do(ctx, "DELETE", "/threads/"+threadID, nil, nil)
}

func (c *OpenAIClient) CreateMessage(ctx context.Context, threadID, role, content string) error {
	payload := map[string]string{
		"role":    role,
		"content": content,
	}
	return c.do(ctx, "POST", "/threads/"+threadID+"/messages", payload, nil)
}

func (c *OpenAIClient) CreateRun(ctx context.Context, threadID, assistantID string) (string, error) {
	payload := map[string]string{
		"assistant_id": assistantID,
	}
	var res runResponse
	if err := c.do(ctx, "POST", "/threads/"+threadID+"/runs", payload, &res); err != nil {
		return "", err
	}
	return res.ID, nil
}

func (c *OpenAIClient) GetRunStatus(ctx context.Context, threadID, runID string) (string, error) {
	var res runResponse
	if err := c.do(ctx, "GET", "/threads/"+threadID+"/runs/"+runID, nil, &res); err != nil {
		return "", err
	}
	return res.Status, nil
}

func (c *OpenAIClient) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	var res messageListResponse
	if err := c.do(ctx, "GET", "/threads/"+threadID+"/messages", nil, &res); err != nil {
		return nil, err
	}
	return res.Data, nil
}

func (c *OpenAIClient) do(ctx context.Context, method, path string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("OpenAI-Beta", "assistants=v2")

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("assistants request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != nil {
			return fmt.Errorf("assistants api error (status %d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("assistants api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	if out != nil {
		if err := json.Unmarshal(bodyBytes, out); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
