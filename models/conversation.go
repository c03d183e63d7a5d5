package models

import (
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single conversation turn.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is one mock interview. Messages are kept in the order they were spoken.
type Session struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	Role         string     `json:"role"`
	Level        string     `json:"level"`
	Messages     []Message  `json:"messages"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	IsActive     bool       `json:"is_active"`
	VoiceEnabled bool       `json:"voice_enabled"`
}

// Clone returns a deep copy so stores never share the message slice with callers.
func (s Session) Clone() Session {
	out := s
	out.Messages = append([]Message(nil), s.Messages...)
	if s.EndTime != nil {
		end := *s.EndTime
		out.EndTime = &end
	}
	return out
}

// MessagesByRole returns the turns spoken by role, in order.
func (s Session) MessagesByRole(role string) []Message {
	var out []Message
	for _, m := range s.Messages {
		if m.Role == role {
			out = append(out, m)
		}
	}
	return out
}

// Speech carries text-to-speech hints for the browser.
type Speech struct {
	Text   string  `json:"text"`
	Lang   string  `json:"lang"`
	Rate   float64 `json:"rate"`
	Pitch  float64 `json:"pitch"`
	Volume float64 `json:"volume"`
}
