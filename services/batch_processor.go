package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"mockinterview/models"
)

// weakCategoryThreshold is the mean rating under which a category is reported as weak.
const weakCategoryThreshold = 3.5

var ErrProgressReportNotFound = errors.New("progress report not found")

type summarySource interface {
	ListSummariesSince(ctx context.Context, since time.Time) ([]models.InterviewSummary, error)
}

// BatchProcessor writes per-user progress reports from recent interview summaries.
type BatchProcessor struct {
	postgresDB *sql.DB
	summaries  summarySource
	llm        LLMClient
	now        func() time.Time
}

// OpenPostgres connects and pings, defaulting sslmode to disable.
func OpenPostgres(ctx context.Context, postgresURI string) (*sql.DB, error) {
	connStr := postgresURI
	if !strings.Contains(postgresURI, "sslmode=") {
		if strings.Contains(postgresURI, "://") {
			if strings.Contains(postgresURI, "?") {
				connStr += "&sslmode=disable"
			} else {
				connStr += "?sslmode=disable"
			}
		} else {
			connStr += " sslmode=disable"
		}
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	return db, nil
}

func NewBatchProcessor(db *sql.DB, summaries summarySource, llm LLMClient) *BatchProcessor {
	return &BatchProcessor{postgresDB: db, summaries: summaries, llm: llm, now: time.Now}
}

// EnsureSchema creates the progress_reports table.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS progress_reports (
            id BIGSERIAL PRIMARY KEY,
            user_id TEXT NOT NULL UNIQUE,
            window_start TIMESTAMPTZ NOT NULL,
            window_end TIMESTAMPTZ NOT NULL,
            session_count INTEGER NOT NULL,
            average_rating DOUBLE PRECISION NOT NULL,
            weak_categories TEXT[] NOT NULL DEFAULT '{}',
            report TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`)
	if err != nil {
		return fmt.Errorf("create progress_reports: %w", err)
	}
	return nil
}

// ProcessProgressReports refreshes the report of every user active in the window.
func (bp *BatchProcessor) ProcessProgressReports(ctx context.Context, window time.Duration) error {
	end := bp.now()
	start := end.Add(-window)

	summaries, err := bp.summaries.ListSummariesSince(ctx, start)
	if err != nil {
		return fmt.Errorf("failed to list recent summaries: %w", err)
	}

	for userID, userSummaries := range groupByUser(summaries) {
		report := BuildProgressReport(userID, userSummaries, start, end)
		report.Report = bp.writeReport(ctx, report, userSummaries)

		if err := bp.saveReport(ctx, report); err != nil {
			log.Printf("Error saving progress report for user %s: %v", userID, err)
			continue
		}
		log.Printf("Successfully processed %d interviews for user %s", report.SessionCount, userID)
	}
	return nil
}

func groupByUser(summaries []models.InterviewSummary) map[string][]models.InterviewSummary {
	out := map[string][]models.InterviewSummary{}
	for _, s := range summaries {
		out[s.UserID] = append(out[s.UserID], s)
	}
	return out
}

// BuildProgressReport fills the numeric part of a report.
func BuildProgressReport(userID string, summaries []models.InterviewSummary, start, end time.Time) models.ProgressReport {
	report := models.ProgressReport{
		UserID:         userID,
		WindowStart:    start,
		WindowEnd:      end,
		SessionCount:   len(summaries),
		WeakCategories: pq.StringArray{},
	}

	total, count := 0, 0
	sums := map[string]int{}
	counts := map[string]int{}
	for _, s := range summaries {
		for _, fb := range s.DetailedFeedback {
			total += fb.Rating
			count++
			sums[fb.Category] += fb.Rating
			counts[fb.Category]++
		}
	}
	if count > 0 {
		report.AverageRating = roundOneDecimal(float64(total) / float64(count))
	}
	for c, n := range counts {
		if float64(sums[c])/float64(n) < weakCategoryThreshold {
			report.WeakCategories = append(report.WeakCategories, c)
		}
	}
	sort.Strings(report.WeakCategories)
	return report
}

func (bp *BatchProcessor) writeReport(ctx context.Context, report models.ProgressReport, summaries []models.InterviewSummary) string {
	fallback := fallbackProgressReport(report)
	if bp.llm == nil {
		return fallback
	}
	text, err := bp.llm.Generate(ctx, BuildProgressReportPrompt(report, summaries), OverallFeedbackConfig)
	if err != nil {
		log.Printf("Error writing progress report for user %s: %v", report.UserID, err)
		return fallback
	}
	return strings.TrimSpace(text)
}

// BuildProgressReportPrompt asks for a short coaching note across recent interviews.
func BuildProgressReportPrompt(report models.ProgressReport, summaries []models.InterviewSummary) string {
	var b strings.Builder
	b.WriteString("You are a healthcare interview coach. Write a short progress note (3-5 sentences) for a candidate based on their recent mock interviews.\n\n")
	fmt.Fprintf(&b, "Interviews: %d\nAverage rating: %.1f/5\n", report.SessionCount, report.AverageRating)
	if len(report.WeakCategories) > 0 {
		fmt.Fprintf(&b, "Weak areas: %s\n", strings.Join(report.WeakCategories, ", "))
	}
	b.WriteString("\nInterviews:\n")
	for _, s := range summaries {
		fmt.Fprintf(&b, "- %s %s, average %.1f\n", LevelLabel(s.Level), RoleLabel(s.Role), s.AverageRating)
	}
	b.WriteString("\nProgress note:")
	return b.String()
}

func fallbackProgressReport(report models.ProgressReport) string {
	text := fmt.Sprintf("You completed %d mock interview(s) with an average rating of %.1f/5.", report.SessionCount, report.AverageRating)
	if len(report.WeakCategories) > 0 {
		text += fmt.Sprintf(" Focus your next practice on: %s.", strings.Join(report.WeakCategories, ", "))
	} else {
		text += " Keep practicing to maintain your progress."
	}
	return text
}

func (bp *BatchProcessor) saveReport(ctx context.Context, r models.ProgressReport) error {
	query := `
        INSERT INTO progress_reports
        (user_id, window_start, window_end, session_count, average_rating, weak_categories, report)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (user_id)
        DO UPDATE SET
            window_start = EXCLUDED.window_start,
            window_end = EXCLUDED.window_end,
            session_count = EXCLUDED.session_count,
            average_rating = EXCLUDED.average_rating,
            weak_categories = EXCLUDED.weak_categories,
            report = EXCLUDED.report,
            created_at = NOW()
    `
	_, err := bp.postgresDB.ExecContext(ctx, query,
		r.UserID, r.WindowStart, r.WindowEnd, r.SessionCount, r.AverageRating, r.WeakCategories, r.Report)
	if err != nil {
		return fmt.Errorf("failed to save to postgres: %w", err)
	}
	return nil
}

// ProgressService reads the reports written by the batch job.
type ProgressService struct {
	db *sql.DB
}

func NewProgressService(db *sql.DB) *ProgressService {
	return &ProgressService{db: db}
}

func (p *ProgressService) LatestReport(ctx context.Context, userID string) (models.ProgressReport, error) {
	var r models.ProgressReport
	err := p.db.QueryRowContext(ctx, `
        SELECT id, user_id, window_start, window_end, session_count, average_rating, weak_categories, report, created_at
        FROM progress_reports
        WHERE user_id = $1
    `, userID).Scan(
		&r.ID,
		&r.UserID,
		&r.WindowStart,
		&r.WindowEnd,
		&r.SessionCount,
		&r.AverageRating,
		&r.WeakCategories,
		&r.Report,
		&r.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProgressReport{}, ErrProgressReportNotFound
	}
	if err != nil {
		return models.ProgressReport{}, fmt.Errorf("query progress report: %w", err)
	}
	return r, nil
}
