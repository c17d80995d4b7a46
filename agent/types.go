package agent

import (
	"github.com/cloudwego/eino/schema"

	"github.com/tbxark/tripagent/types"
)

type Metadata struct {
	Model              string `json:"model,omitempty"`
	NeedsClarification bool   `json:"needs_clarification"`
	ClarifyField       string `json:"clarify_field,omitempty"`
	UserTurns          int    `json:"user_turns"`
	LastState          State  `json:"last_state"`
}

// ConversationState is everything a session carries between turns.
type ConversationState struct {
	Messages []*schema.Message  `json:"messages"`
	Request  types.TravelRequest `json:"request"`
	Metadata Metadata            `json:"metadata"`
	Done     bool                `json:"done"`
}

func NewConversationState(model string) *ConversationState {
	return &ConversationState{Metadata: Metadata{Model: model}}
}

// UserTurns returns the content of every user message, oldest first.
func (s *ConversationState) UserTurns() []string {
	out := make([]string, 0, len(s.Messages))
	for _, m := range s.Messages {
		if m != nil && m.Role == schema.User {
			out = append(out, m.Content)
		}
	}
	return out
}

// Append adds messages, skipping nil ones and exact repeats of the last message.
func (s *ConversationState) Append(msgs ...*schema.Message) {
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		if n := len(s.Messages); n > 0 {
			last := s.Messages[n-1]
			if last != nil && last.Role == msg.Role && last.Content == msg.Content {
				continue
			}
		}
		s.Messages = append(s.Messages, msg)
	}
}

type Kind string

const (
	KindQuestion  Kind = "question"
	KindItinerary Kind = "itinerary"
	KindDecline   Kind = "decline"
	KindCancelled Kind = "cancelled"
)

type Response struct {
	Kind    Kind                `json:"kind"`
	Message string              `json:"message"`
	Field   string              `json:"field,omitempty"`
	Forced  bool                `json:"forced,omitempty"`
	Request types.TravelRequest `json:"request"`
	Trace   []State             `json:"trace,omitempty"`
}

// Final reports whether the session ends with this response.
func (r *Response) Final() bool {
	return r.Kind == KindItinerary || r.Kind == KindCancelled
}
