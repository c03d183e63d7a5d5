package models

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Feedback categories.
const (
	CategoryCommunication      = "Communication"
	CategoryTechnicalKnowledge = "Technical Knowledge"
	CategoryProblemSolving     = "Problem Solving"
	CategoryProfessionalism    = "Professionalism"
	CategoryExperience         = "Experience"
)

var Categories = []string{
	CategoryCommunication,
	CategoryTechnicalKnowledge,
	CategoryProblemSolving,
	CategoryProfessionalism,
	CategoryExperience,
}

type QuestionFeedback struct {
	Question       string `json:"question"`
	UserAnswer     string `json:"userAnswer"`
	ExpectedAnswer string `json:"expectedAnswer"`
	Rating         int    `json:"rating"`
	Feedback       string `json:"feedback"`
	Category       string `json:"category"`
}

// ClampRating forces a rating into the 1-5 scale.
func ClampRating(r int) int {
	if r < MinRating {
		return MinRating
	}
	if r > MaxRating {
		return MaxRating
	}
	return r
}

// InterviewSummary is the document persisted once an interview ends.
type InterviewSummary struct {
	SessionID        string             `json:"session_id"`
	UserID           string             `json:"user_id"`
	Role             string             `json:"role"`
	Level            string             `json:"level"`
	StartTime        time.Time          `json:"start_time"`
	EndTime          time.Time          `json:"end_time"`
	MessageCount     int                `json:"message_count"`
	OverallFeedback  string             `json:"overall_feedback"`
	DetailedFeedback []QuestionFeedback `json:"detailed_feedback"`
	AverageRating    float64            `json:"average_rating"`
	StrongAnswers    int                `json:"strong_answers"`
	NeedsImprovement int                `json:"needs_improvement"`
	AIGenerated      bool               `json:"ai_generated"`
	CreatedAt        time.Time          `json:"created_at"`
}

// DashboardStats aggregates a user's persisted summaries.
type DashboardStats struct {
	TotalInterviews int        `json:"total_interviews"`
	AverageRating   float64    `json:"average_rating"`
	AnswersReviewed int        `json:"answers_reviewed"`
	StrongestArea   string     `json:"strongest_area,omitempty"`
	WeakestArea     string     `json:"weakest_area,omitempty"`
	LastInterviewAt *time.Time `json:"last_interview_at,omitempty"`
}
