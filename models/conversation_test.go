package models

import (
	"testing"
	"time"
)

func TestSessionCloneDoesNotShareMessages(t *testing.T) {
	end := time.Now()
	s := Session{ID: "s1", Messages: []Message{{ID: "1", Role: RoleAssistant, Content: "hi"}}, EndTime: &end}

	c := s.Clone()
	c.Messages[0].Content = "changed"
	c.Messages = append(c.Messages, Message{ID: "2"})
	*c.EndTime = end.Add(time.Hour)

	if s.Messages[0].Content != "hi" {
		t.Errorf("original message mutated: %q", s.Messages[0].Content)
	}
	if len(s.Messages) != 1 {
		t.Errorf("original length = %d", len(s.Messages))
	}
	if !s.EndTime.Equal(end) {
		t.Errorf("original end time mutated")
	}
}

func TestMessagesByRole(t *testing.T) {
	s := Session{Messages: []Message{
		{Role: RoleAssistant, Content: "q1"},
		{Role: RoleUser, Content: "a1"},
		{Role: RoleAssistant, Content: "q2"},
	}}
	if got := len(s.MessagesByRole(RoleAssistant)); got != 2 {
		t.Errorf("assistant turns = %d", got)
	}
	if got := s.MessagesByRole(RoleUser); len(got) != 1 || got[0].Content != "a1" {
		t.Errorf("user turns = %+v", got)
	}
}

func TestClampRating(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 3: 3, 5: 5, 9: 5} {
		if got := ClampRating(in); got != want {
			t.Errorf("ClampRating(%d) = %d, want %d", in, got, want)
		}
	}
}
