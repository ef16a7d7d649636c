package responder

import (
	"context"

	"aroma-assistant-be/pkg/assistant"
)

// AssistantResponder forwards free-form questions verbatim to the user's
// persistent remote thread and returns the assistant's reply as-is.
type AssistantResponder struct {
	manager *assistant.Manager
}

var _ OpenDomainResponder = &AssistantResponder{}

func NewAssistantResponder(manager *assistant.Manager) *AssistantResponder {
	return &AssistantResponder{manager: manager}
}

func (a *AssistantResponder) Respond(ctx context.Context, userID string, question string) (string, error) {
	return a.manager.Ask(ctx, userID, question)
}
