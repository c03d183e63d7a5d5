package services

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"mockinterview/models"
)

const (
	apologyResponse = "I apologize, but I'm having trouble processing your response right now. Could you please try again?"

	DemoOverallFeedback   = "Thank you for completing the mock interview! This is a demo version with sample feedback. To get AI-powered feedback, configure an LLM API key."
	FailedOverallFeedback = "Thank you for completing the mock interview! We encountered an issue generating feedback, but your practice session has been recorded."
	defaultExpectedAnswer = "A comprehensive answer demonstrating knowledge and experience"
	defaultFeedbackText   = "Good response with room for improvement"
	defaultQuestionText   = "Interview question"
)

var fallbackExpectedAnswers = []string{
	"I was motivated by a desire to help others and make a positive impact on people's lives through healthcare.",
	"I handled the situation by remaining calm, following protocols, and communicating effectively with the team.",
	"I stay updated through continuing education, professional journals, and attending conferences.",
	"I managed the situation by listening to concerns, finding common ground, and focusing on patient care.",
	"My long-term goals include advancing my skills, taking on leadership roles, and contributing to healthcare innovation.",
}

func fallbackQuestions(role string) []string {
	return []string{
		"That's a great start! Can you tell me about a challenging situation you've faced in your previous healthcare experience and how you handled it?",
		"Excellent. How do you stay updated with the latest developments and best practices in your field?",
		"Good. Can you describe a time when you had to work with a difficult colleague or patient? How did you manage the situation?",
		"Thank you for sharing that. What are your long-term career goals in healthcare?",
		"That's very insightful. How do you handle stress and maintain work-life balance in a demanding healthcare environment?",
		"Great answer. Can you walk me through your approach to patient care and how you ensure quality outcomes?",
		fmt.Sprintf("Excellent. What do you think are the most important qualities for a successful %s?", RoleLabel(role)),
		"Thank you for your responses. Do you have any questions for me about the position or the organization?",
	}
}

// FallbackResponse picks the scripted follow-up for the answerCount-th candidate answer.
// The last question repeats once the list runs out.
func FallbackResponse(answerCount int, role string) string {
	questions := fallbackQuestions(role)
	idx := answerCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx > len(questions)-1 {
		idx = len(questions) - 1
	}
	return questions[idx]
}

// RatingSource draws a fallback rating. It must return a value in [3, 5].
type RatingSource func() int

func randomRating() int {
	return rand.IntN(3) + 3
}

// FallbackDetailedFeedback builds sample per-answer feedback when the LLM is unavailable.
func FallbackDetailedFeedback(session models.Session, rating RatingSource) []models.QuestionFeedback {
	if rating == nil {
		rating = randomRating
	}
	answers := session.MessagesByRole(models.RoleUser)
	questions := session.MessagesByRole(models.RoleAssistant)

	out := make([]models.QuestionFeedback, 0, len(answers))
	for i, answer := range answers {
		question := fmt.Sprintf("Question %d", i+1)
		if i < len(questions) {
			question = questions[i].Content
		}
		expected := defaultExpectedAnswer
		if i < len(fallbackExpectedAnswers) {
			expected = fallbackExpectedAnswers[i]
		}
		category := models.Categories[i%len(models.Categories)]
		out = append(out, models.QuestionFeedback{
			Question:       question,
			UserAnswer:     answer.Content,
			ExpectedAnswer: expected,
			Rating:         models.ClampRating(rating()),
			Feedback:       fmt.Sprintf("Good response showing %s. Consider providing more specific examples.", strings.ToLower(category)),
			Category:       category,
		})
	}
	return out
}
