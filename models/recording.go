package models

import "time"

type Recording struct {
	SessionID   string    `json:"session_id"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	StoredAt    time.Time `json:"stored_at"`
}
