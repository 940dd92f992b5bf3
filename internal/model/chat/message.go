package chat

import (
	"fmt"
	"time"
)

// AssistantAuthor is the reserved author name used for assistant replies.
const AssistantAuthor = "Ana"

// Message is one immutable row of the shared chat log.
type Message struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
}

// Key identifies a message for de-duplication. Rows without an id fall back
// to a composite of creation time, author and body.
func (m Message) Key() string {
	if m.ID != "" {
		return m.ID
	}
	return fmt.Sprintf("%s-%s-%s", m.CreatedAt.UTC().Format(time.RFC3339Nano), m.Author, m.Body)
}

// FromAssistant reports whether the message was written by the assistant.
func (m Message) FromAssistant() bool {
	return m.Author == AssistantAuthor
}
