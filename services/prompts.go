package services

import (
	"fmt"
	"strings"

	"mockinterview/models"
)

// InitialGreeting is the interviewer's opening turn.
func InitialGreeting(role, level string) string {
	position := fmt.Sprintf("%s %s", LevelLabel(level), RoleLabel(role))
	return fmt.Sprintf(`Hello! I'm your mock interview interviewer for a %s position. I'll be asking you questions to assess your knowledge, experience, and fit for the role.

Let's begin with some questions about your background and experience. Please answer as you would in a real interview setting.

What motivated you to pursue a career in healthcare, specifically as a %s?`, position, position)
}

func speakerName(role string) string {
	if role == models.RoleUser {
		return "Candidate"
	}
	return "Interviewer"
}

func writeTranscript(b *strings.Builder, messages []models.Message) {
	for _, m := range messages {
		fmt.Fprintf(b, "%s: %s\n", speakerName(m.Role), m.Content)
	}
}

// BuildInterviewPrompt renders the next-turn prompt from the whole transcript.
func BuildInterviewPrompt(session models.Session) string {
	role := RoleLabel(session.Role)
	level := LevelLabel(session.Level)

	var b strings.Builder
	fmt.Fprintf(&b, `You are a friendly, professional healthcare interviewer conducting a realistic mock interview for a %s %s position. Your goal is to simulate a real human interviewer, not just a chatbot.

- Greet the user and introduce yourself at the start.
- Ask open-ended, relevant interview questions appropriate for the position and experience level.
- After each user answer, respond naturally: acknowledge, encourage, or ask for clarification or follow-up details as a human would.
- Maintain a conversational, context-aware flow. Reference previous answers when appropriate.
- Use a warm, professional, and supportive tone.
- Do not just ask questions; react to the user's answers as a real interviewer would.
- Occasionally provide encouragement or brief feedback, but do not summarize the whole interview until the end.
- Keep responses concise (2-4 sentences) and avoid sounding robotic.

Current interview context:
- Position: %s
- Experience Level: %s
- Number of exchanges: %d

Conversation so far:
`, level, role, role, level, len(session.Messages))

	writeTranscript(&b, session.Messages)

	b.WriteString("\nContinue the interview as a real human interviewer. If the candidate just answered, respond naturally and ask a relevant follow-up or next question. If the candidate asked a question, answer it professionally. Only end the interview if the candidate says they are finished or asks to end.\n\nInterviewer:")
	return b.String()
}

// BuildQuestionFeedbackPrompt asks for a JSON evaluation of one answer.
func BuildQuestionFeedbackPrompt(role, level, question, answer string, questionNumber int) string {
	return fmt.Sprintf(`You are an expert healthcare recruiter evaluating a specific interview question response for a %s %s position.

Question %d: %s

Candidate's Answer: %s

Please provide detailed feedback in the following JSON format:
{
  "question": "The interview question",
  "userAnswer": "The candidate's response",
  "expectedAnswer": "What an ideal answer should include",
  "rating": 4,
  "feedback": "Specific feedback on the response",
  "category": "%s"
}

Rating scale: 1-5 (1=Poor, 2=Below Average, 3=Average, 4=Good, 5=Excellent)

Focus on:
- How well the answer addresses the question
- Specific examples and details provided
- Professional communication skills
- Technical knowledge demonstrated
- Areas for improvement

Provide the response as valid JSON only:`,
		LevelLabel(level), RoleLabel(role), questionNumber, question, answer, strings.Join(models.Categories, "|"))
}

// BuildOverallFeedbackPrompt asks for a free-text review of the whole interview.
func BuildOverallFeedbackPrompt(session models.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are an expert healthcare recruiter providing feedback on a mock interview for a %s %s position.

Based on the following interview conversation, provide constructive feedback including:
1. Strengths demonstrated
2. Areas for improvement
3. Overall assessment
4. Specific recommendations

Keep the feedback professional, constructive, and actionable.

Interview conversation:
`, LevelLabel(session.Level), RoleLabel(session.Role))
	writeTranscript(&b, session.Messages)
	b.WriteString("\nPlease provide your feedback:")
	return b.String()
}
