package assistant

import "strings"

// Request is the wire shape accepted by the assistant endpoint. It carries
// either a legacy bare prompt or a memory turn; Invocation decides which.
type Request struct {
	Prompt     string   `json:"prompt"`
	ChatID     string   `json:"chat_id"`
	UserPrompt string   `json:"user_prompt"`
	History    string   `json:"history"`
	Docs       []string `json:"docs"`
}

// Response is returned on success in both modes.
type Response struct {
	Text string `json:"text"`
}

// Invocation is either a LegacyRequest or a TurnRequest.
type Invocation interface {
	isInvocation()
}

// LegacyRequest sends Prompt to the model as-is, without memory.
type LegacyRequest struct {
	Prompt string
}

// TurnRequest is a memory-backed assistant turn for one room.
type TurnRequest struct {
	RoomID     string
	UserPrompt string
	History    string
	Docs       []string
}

func (LegacyRequest) isInvocation() {}
func (TurnRequest) isInvocation()   {}

// Invocation trims the request fields and picks the mode. A non-empty prompt
// without a chat id is a legacy call; everything else is a memory turn,
// validated later by Service.Turn.
func (r Request) Invocation() Invocation {
	prompt := strings.TrimSpace(r.Prompt)
	chatID := strings.TrimSpace(r.ChatID)
	if prompt != "" && chatID == "" {
		return LegacyRequest{Prompt: prompt}
	}

	docs := make([]string, 0, len(r.Docs))
	for _, d := range r.Docs {
		if d = strings.TrimSpace(d); d != "" {
			docs = append(docs, d)
		}
	}

	return TurnRequest{
		RoomID:     chatID,
		UserPrompt: strings.TrimSpace(r.UserPrompt),
		History:    strings.TrimSpace(r.History),
		Docs:       docs,
	}
}
