package services

import (
	"strings"
)

// RecognitionResult is one entry of a speech recognition result list.
type RecognitionResult struct {
	Transcript string `json:"transcript"`
	IsFinal    bool   `json:"is_final"`
}

// TranscriptBuffer mirrors a continuous recognition session.
// Each event carries the complete result list; entries before resultIndex are unchanged.
// A list shorter than the buffer means recognition restarted, so the finished text is kept.
type TranscriptBuffer struct {
	committed string
	segments  []RecognitionResult
}

// Apply merges a recognition event into the buffer and returns the current text.
func (b *TranscriptBuffer) Apply(resultIndex int, results []RecognitionResult) string {
	if len(results) < len(b.segments) {
		b.committed += finalText(b.segments)
		b.segments = nil
	}
	if resultIndex < 0 {
		resultIndex = 0
	}
	if resultIndex > len(b.segments) {
		resultIndex = len(b.segments)
	}
	if resultIndex > len(results) {
		resultIndex = len(results)
	}
	b.segments = append(b.segments[:resultIndex], results[resultIndex:]...)
	return b.Text()
}

// Text joins final segments followed by interim ones, in result order.
func (b *TranscriptBuffer) Text() string {
	var interim strings.Builder
	for _, s := range b.segments {
		if !s.IsFinal {
			interim.WriteString(s.Transcript)
		}
	}
	return b.committed + finalText(b.segments) + interim.String()
}

func (b *TranscriptBuffer) Reset() {
	b.committed = ""
	b.segments = nil
}

func finalText(segments []RecognitionResult) string {
	var final strings.Builder
	for _, s := range segments {
		if s.IsFinal {
			final.WriteString(s.Transcript)
		}
	}
	return final.String()
}
