package dto

// InboundUpdate is the normalized transport event entering the dialogue
// engine. AttachmentKind "voice" means AttachmentRef points at an audio
// payload that must be transcribed before routing.
type InboundUpdate struct {
	UserID         string `json:"user_id" validate:"required"`
	Text           string `json:"text"`
	AttachmentKind string `json:"attachment_kind,omitempty"`
	AttachmentRef  string `json:"attachment_ref,omitempty"`
}

const AttachmentKindVoice = "voice"

type AcceptedResponse struct {
	Accepted bool `json:"accepted"`
}
