package assistant

import "context"

// ContentBlock is one typed block of an assistant reply. Text blocks expose
// their value; anything else is stringified by the manager.
type ContentBlock struct {
	Type string `json:"type"`
	Text *struct {
		Value string `json:"value"`
	} `json:"text,omitempty"`
}

// ThreadMessage is a message within a remote thread
type ThreadMessage struct {
	ID        string                 `json:"id"`
	Role      string                 `json:"role"`
	CreatedAt int64                  `json:"created_at"`
	Metadata  map[string]interface{} `json:"metadata"`
	Content   []ContentBlock         `json:"content"`
}

// ThreadAPI is the remote conversation service the manager drives. Split out
// as an interface so tests can run against a fake backend.
type ThreadAPI interface {
	CreateThread(ctx context.Context) (string, error)
	DeleteThread(ctx context.Context, threadID string) error
	CreateMessage(ctx context.Context, threadID, role, content string) error
	CreateRun(ctx context.Context, threadID, assistantID string) (string, error)
	GetRunStatus(ctx context.Context, threadID, runID string) (string, error)
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)
}
