package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"mockinterview/config"
	"mockinterview/models"
	"mockinterview/services"
)

var (
	role  = flag.String("role", "nurse", "Healthcare role: nurse, doctor, pharmacist, therapist, technician")
	level = flag.String("level", "entry", "Experience level: entry, mid, senior")
	user  = flag.String("user", "local", "User id recorded on the session")
)

func main() {
	flag.Parse()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	llm, err := services.NewLLMClient(cfg)
	if err != nil && !errors.Is(err, services.ErrLLMNotConfigured) {
		fmt.Fprintf(os.Stderr, "failed to create LLM client: %v\n", err)
		os.Exit(1)
	}

	interviewer := color.New(color.FgCyan, color.Bold).SprintFunc()
	candidate := color.New(color.FgGreen, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	svc := services.NewInterviewService(services.InterviewDeps{LLM: llm})
	if svc.AIEnabled() {
		fmt.Println(dim("AI powered: " + llm.Name()))
	} else {
		fmt.Println(warn("Demo mode (using predefined questions)"))
	}

	start, err := svc.StartInterview(ctx, *user, *role, *level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	sessionID := start.Session.ID
	fmt.Printf("%s %s\n\n", interviewer("Interviewer:"), start.Message.Content)
	fmt.Println(dim("Type your answer and press Enter. Type /end to finish and get feedback."))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(candidate("You: "))
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/end" {
			break
		}

		turn, err := svc.SendMessage(ctx, *user, sessionID, input)
		if err != nil {
			fmt.Println(warn(err.Error()))
			continue
		}
		fmt.Printf("\n%s %s\n\n", interviewer("Interviewer:"), turn.Message.Content)
	}

	fmt.Println(dim("\nGenerating feedback..."))
	summary, err := svc.EndInterview(context.WithoutCancel(ctx), *user, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	printSummary(summary)
}

func printSummary(s models.InterviewSummary) {
	bold := color.New(color.Bold).SprintFunc()
	star := color.New(color.FgYellow).SprintFunc()

	for i, fb := range s.DetailedFeedback {
		fmt.Printf("\n%s %s\n", bold(fmt.Sprintf("Question %d [%s]", i+1, fb.Category)), star(strings.Repeat("*", fb.Rating)+fmt.Sprintf(" %d/5", fb.Rating)))
		fmt.Printf("  Q: %s\n  A: %s\n  Expected: %s\n  Feedback: %s\n", fb.Question, fb.UserAnswer, fb.ExpectedAnswer, fb.Feedback)
	}
	fmt.Printf("\n%s %.1f  %s %d  %s %d\n", bold("Average rating:"), s.AverageRating,
		bold("Strong answers:"), s.StrongAnswers, bold("Needs improvement:"), s.NeedsImprovement)
	fmt.Printf("\n%s\n%s\n", bold("Overall feedback"), s.OverallFeedback)
}
