package responder

import (
	"context"
	"errors"
)

// ErrIndexUnavailable is returned when a strategy needs the knowledge index
// and none is loaded. The dialogue layer turns it into a fixed user message.
var ErrIndexUnavailable = errors.New("knowledge index unavailable")

// OpenDomainResponder answers free-form questions outside any guided flow.
// Which implementation serves a deployment is a bootstrap decision, never a
// per-message one.
type OpenDomainResponder interface {
	Respond(ctx context.Context, userID string, question string) (string, error)
}
