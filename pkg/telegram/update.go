package telegram

import "strconv"

// Update is the subset of the Bot API update object the assistant consumes
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from"`
	Text      string `json:"text"`
	Voice     *Voice `json:"voice"`
}

type User struct {
	ID int64 `json:"id"`
}

type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration"`
}

// UserID returns the sender id as a string, empty when the update carries no
// usable message.
func (u *Update) UserID() string {
	if u.Message == nil || u.Message.From == nil {
		return ""
	}
	return strconv.FormatInt(u.Message.From.ID, 10)
}
