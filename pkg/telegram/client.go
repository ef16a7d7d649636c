package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"aroma-assistant-be/pkg/utils"
)

// DefaultMessageLimit keeps chunks under Telegram's 4096-character cap
const DefaultMessageLimit = 4000

// Client is a thin Telegram Bot API adapter. It owns all presentation
// concerns of the transport: message-length chunking and file retrieval.
type Client struct {
	Token        string
	BaseURL      string
	MessageLimit int
	HTTPClient   *http.Client
}

func NewClient(token string, messageLimit int) *Client {
	if messageLimit <= 0 {
		messageLimit = DefaultMessageLimit
	}
	return &Client{
		Token:        token,
		BaseURL:      "https://api.telegram.org",
		MessageLimit: messageLimit,
		HTTPClient:   &http.Client{Timeout: 60 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

type apiResponse struct {
	Ok          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

type fileResult struct {
	FilePath string `json:"file_path"`
}

// Send delivers text to a chat, slicing it into fixed-size chunks when it
// exceeds the message limit. Chunk boundaries are plain slices, not
// sentence-aware.
func (c *Client) Send(ctx context.Context, chatID string, text string) error {
	for _, chunk := range utils.SplitText(text, c.MessageLimit, 0) {
		if err := c.sendChunk(ctx, chatID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) sendChunk(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	if !apiResp.Ok {
		return fmt.Errorf("telegram api error: %s", apiResp.Description)
	}
	return nil
}

// DownloadFile resolves a file id to its content (used for voice payloads)
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, error) {
	url := fmt.Sprintf("%s/bot%s/getFile?file_id=%s", c.BaseURL, c.Token, fileID)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram getFile failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !apiResp.Ok {
		return nil, fmt.Errorf("telegram api error: %s", apiResp.Description)
	}

	var file fileResult
	if err := json.Unmarshal(apiResp.Result, &file); err != nil {
		return nil, fmt.Errorf("unmarshal file result: %w", err)
	}

	downloadURL := fmt.Sprintf("%s/file/bot%s/%s", c.BaseURL, c.Token, file.FilePath)
	fileReq, err := http.NewRequestWithContext(ctx, "GET", downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	fileResp, err := c.HTTPClient.Do(fileReq)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer fileResp.Body.Close()

	if fileResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", fileResp.StatusCode)
	}
	return io.ReadAll(fileResp.Body)
}
