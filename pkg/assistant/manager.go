package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	runStatusCompleted = "completed"
	runStatusQueued    = "queued"
	runStatusRunning   = "in_progress"
)

// Config tunes the thread lifecycle and run polling
type Config struct {
	AssistantID  string
	IdleLimit    time.Duration // thread considered stale after this much silence
	PollInterval time.Duration // initial run-status poll interval
	MaxWait      time.Duration // hard bound on one run's total wait
}

func DefaultConfig(assistantID string) Config {
	return Config{
		AssistantID:  assistantID,
		IdleLimit:    1200 * time.Second,
		PollInterval: time.Second,
		MaxWait:      120 * time.Second,
	}
}

type threadBinding struct {
	threadID     string
	lastActivity time.Time
}

// Manager keeps at most one live remote thread per user, recreating it after
// the idle limit. All thread operations refresh the user's last activity.
type Manager struct {
	api    ThreadAPI
	config Config

	mu       sync.Mutex
	bindings map[string]threadBinding

	now func() time.Time
}

func NewManager(api ThreadAPI, config Config) *Manager {
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.MaxWait <= 0 {
		config.MaxWait = 120 * time.Second
	}
	return &Manager{
		api:      api,
		config:   config,
		bindings: make(map[string]threadBinding),
		now:      time.Now,
	}
}

// EnsureThread returns the user's live thread id, replacing a stale one.
// Deleting the stale remote thread is best-effort; failures are ignored.
func (m *Manager) EnsureThread(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ensureThreadLocked(ctx, userID)
}

func (m *Manager) ensureThreadLocked(ctx context.Context, userID string) (string, error) {
	now := m.now()

	binding, exists := m.bindings[userID]
	if exists && now.Sub(binding.lastActivity) <= m.config.IdleLimit {
		m.bindings[userID] = threadBinding{threadID: binding.threadID, lastActivity: now}
		return binding.threadID, nil
	}

	if exists {
		// Stale thread: drop the remote side without caring whether it works
		_ = m.api.DeleteThread(ctx, binding.threadID)
	}

	threadID, err := m.api.CreateThread(ctx)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	m.bindings[userID] = threadBinding{threadID: threadID, lastActivity: now}
	return threadID, nil
}

// AddUserMessage appends a user-role message to the user's thread
func (m *Manager) AddUserMessage(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	threadID, err := m.ensureThreadLocked(ctx, userID)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.mu.Unlock()

	if err := m.api.CreateMessage(ctx, threadID, "user", text); err != nil {
		return fmt.Errorf("append message: %w", err)
	}

	m.touch(userID, threadID)
	return nil
}

// Run starts a run on the user's thread, waits for completion bounded by
// MaxWait, and returns the newest non-pinned assistant reply ("" if none).
func (m *Manager) Run(ctx context.Context, userID string) (string, error) {
	m.mu.Lock()
	threadID, err := m.ensureThreadLocked(ctx, userID)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	m.mu.Unlock()

	runID, err := m.api.CreateRun(ctx, threadID, m.config.AssistantID)
	if err != nil {
		return "", fmt.Errorf("start run: %w", err)
	}

	if err := m.waitForRun(ctx, threadID, runID); err != nil {
		return "", err
	}

	messages, err := m.api.ListMessages(ctx, threadID)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	m.touch(userID, threadID)
	return latestAssistantReply(messages), nil
}

// Ask composes AddUserMessage and Run
func (m *Manager) Ask(ctx context.Context, userID, text string) (string, error) {
	if err := m.AddUserMessage(ctx, userID, text); err != nil {
		return "", err
	}
	return m.Run(ctx, userID)
}

// waitForRun polls the run status with exponential backoff. The overall wait
// is bounded by MaxWait so one slow run cannot stall a turn forever.
func (m *Manager) waitForRun(ctx context.Context, threadID, runID string) error {
	deadline := m.now().Add(m.config.MaxWait)
	interval := m.config.PollInterval

	for {
		status, err := m.api.GetRunStatus(ctx, threadID, runID)
		if err != nil {
			return fmt.Errorf("poll run: %w", err)
		}

		switch status {
		case runStatusCompleted:
			return nil
		case runStatusQueued, runStatusRunning:
			// keep waiting
		default:
			return fmt.Errorf("run %s ended with status %q", runID, status)
		}

		if m.now().After(deadline) {
			return fmt.Errorf("run %s timed out after %s", runID, m.config.MaxWait)
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		interval *= 2
		if interval > 8*time.Second {
			interval = 8 * time.Second
		}
	}
}

func (m *Manager) touch(userID, threadID string) {
	m.mu.Lock()
	m.bindings[userID] = threadBinding{threadID: threadID, lastActivity: m.now()}
	m.mu.Unlock()
}

// latestAssistantReply picks the newest assistant message not flagged as
// pinned in its metadata and flattens its content blocks.
func latestAssistantReply(messages []ThreadMessage) string {
	sorted := make([]ThreadMessage, len(messages))
	copy(sorted, messages)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt > sorted[j].CreatedAt
	})

	for _, msg := range sorted {
		if msg.Role != "assistant" {
			continue
		}
		if pinned, ok := msg.Metadata["pinned"].(bool); ok && pinned {
			continue
		}
		return flattenContent(msg.Content)
	}
	return ""
}

// flattenContent newline-joins text blocks, stringifies anything else, turns
// literal \n escapes into real newlines and trims the result.
func flattenContent(blocks []ContentBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, block := range blocks {
		if block.Text != nil {
			parts = append(parts, block.Text.Value)
		} else {
			parts = append(parts, fmt.Sprintf("%v", block))
		}
	}
	joined := strings.Join(parts, "\n")
	joined = strings.ReplaceAll(joined, `\n`, "\n")
	return strings.TrimSpace(joined)
}
