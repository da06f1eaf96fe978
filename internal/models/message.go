package models

import "time"

// Message is the canonical, durable record of a direct message.
// Text always holds the sender's original wording.
type Message struct {
	ID           string    `json:"_id"` // ULID
	SenderID     string    `json:"senderId"`
	ReceiverID   string    `json:"receiverId"`
	Text         string    `json:"text"`
	Image        string    `json:"image,omitempty"`
	VoiceMessage string    `json:"voiceMessage,omitempty"`
	IsVoice      bool      `json:"isVoice"`
	Language     string    `json:"language"` // language Text was authored in
	CreatedAt    time.Time `json:"createdAt"`
}

// HasContent reports whether at least one of text, image or voice clip is set.
func (m Message) HasContent() bool {
	return m.Text != "" || m.Image != "" || m.VoiceMessage != ""
}

// DeliveryCopy returns a copy of the message carrying text in place of the
// original. The receiver is left untouched.
func (m Message) DeliveryCopy(text string) Message {
	m.Text = text
	return m
}
