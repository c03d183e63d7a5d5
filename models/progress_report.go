package models

import (
	"time"

	"github.com/lib/pq"
)

// ProgressReport is the periodic coaching digest written by the batch job.
type ProgressReport struct {
	ID             int64          `json:"id"`
	UserID         string         `json:"user_id"`
	WindowStart    time.Time      `json:"window_start"`
	WindowEnd      time.Time      `json:"window_end"`
	SessionCount   int            `json:"session_count"`
	AverageRating  float64        `json:"average_rating"`
	WeakCategories pq.StringArray `json:"weak_categories"`
	Report         string         `json:"report"`
	CreatedAt      time.Time      `json:"created_at"`
}
