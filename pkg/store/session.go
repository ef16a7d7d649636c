package store

// Document represents a retrievable chunk of the knowledge corpus
type Document struct {
	ID      string                 `json:"id"`
	Content string                 `json:"content"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

// Mode is the user's current dialogue mode. Exactly one mode is active per
// user at any time; a missing session means ModeNone.
type Mode int

const (
	ModeNone Mode = iota
	ModeAwaitingItemName
	ModeAwaitingNextItemOrStop
	ModeAwaitingQuantity
)

func (m Mode) String() string {
	switch m {
	case ModeAwaitingItemName:
		return "AWAITING_ITEM_NAME"
	case ModeAwaitingNextItemOrStop:
		return "AWAITING_NEXT_ITEM_OR_STOP"
	case ModeAwaitingQuantity:
		return "AWAITING_QUANTITY"
	default:
		return "NONE"
	}
}

// Mixture accumulates the blend a user is composing: line items in insertion
// order, the running cost, and the item awaiting a quantity.
type Mixture struct {
	RunningTotal float64  `json:"running_total"`
	Lines        []string `json:"lines"`
	PendingItem  string   `json:"pending_item"`
}

// Session is the per-user in-memory dialogue state
type Session struct {
	UserID  string   `json:"user_id"`
	Mode    Mode     `json:"mode"`
	Mixture *Mixture `json:"mixture,omitempty"`
}
