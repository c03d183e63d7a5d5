package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"mockinterview/models"
)

// dynamoAPI is the subset of *dynamodb.Client the store uses.
type dynamoAPI interface {
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// DynamoDBService persists interview summaries and the turn log.
type DynamoDBService struct {
	db             dynamoAPI
	summariesTable string
	turnsTable     string
}

func NewDynamoDBService(db dynamoAPI, summariesTable, turnsTable string) *DynamoDBService {
	return &DynamoDBService{db: db, summariesTable: summariesTable, turnsTable: turnsTable}
}

// GetDynamoDBClient builds a client. A non-empty endpoint targets DynamoDB Local with dummy credentials.
func GetDynamoDBClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if endpoint != "" {
		customResolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{URL: endpoint}, nil
		})
		opts = append(opts,
			config.WithEndpointResolverWithOptions(customResolver),
			config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
				Value: aws.Credentials{
					AccessKeyID: "dummy", SecretAccessKey: "dummy", SessionToken: "dummy",
				},
			}),
		)
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

// EnsureTables creates both tables, ignoring tables that already exist.
func (s *DynamoDBService) EnsureTables(ctx context.Context) error {
	if err := s.createTable(ctx, s.summariesTable, "UserID", types.ScalarAttributeTypeS, "CreatedAt", types.ScalarAttributeTypeS); err != nil {
		return err
	}
	return s.createTable(ctx, s.turnsTable, "SessionID", types.ScalarAttributeTypeS, "Seq", types.ScalarAttributeTypeN)
}

func (s *DynamoDBService) createTable(ctx context.Context, name, hashKey string, hashType types.ScalarAttributeType, rangeKey string, rangeType types.ScalarAttributeType) error {
	_, err := s.db.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(name),
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(hashKey), AttributeType: hashType},
			{AttributeName: aws.String(rangeKey), AttributeType: rangeType},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String(rangeKey), KeyType: types.KeyTypeRange},
		},
		BillingMode: types.BillingModePayPerRequest,
	})
	var inUse *types.ResourceInUseException
	if errors.As(err, &inUse) {
		log.Printf("Table %s already exists", name)
		return nil
	}
	if err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	log.Printf("Created table %s", name)
	return nil
}

// SaveSummary writes the finished interview document.
func (s *DynamoDBService) SaveSummary(ctx context.Context, summary models.InterviewSummary) error {
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.summariesTable),
		Item:      summaryToItem(summary),
	})
	if err != nil {
		return fmt.Errorf("save summary %s: %w", summary.SessionID, err)
	}
	log.Printf("Saved summary for session %s (user %s)", summary.SessionID, summary.UserID)
	return nil
}

// ListSummaries returns a user's summaries, newest first.
func (s *DynamoDBService) ListSummaries(ctx context.Context, userID string) ([]models.InterviewSummary, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.summariesTable),
		KeyConditionExpression: aws.String("UserID = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	}

	var summaries []models.InterviewSummary
	for {
		result, err := s.db.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query summaries: %w", err)
		}
		for _, item := range result.Items {
			summaries = append(summaries, itemToSummary(item))
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return summaries, nil
}

// GetSummary finds one summary by session id within the user's partition.
func (s *DynamoDBService) GetSummary(ctx context.Context, userID, sessionID string) (models.InterviewSummary, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.summariesTable),
		KeyConditionExpression: aws.String("UserID = :uid"),
		FilterExpression:       aws.String("SessionID = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":sid": &types.AttributeValueMemberS{Value: sessionID},
		},
	}

	for {
		result, err := s.db.Query(ctx, input)
		if err != nil {
			return models.InterviewSummary{}, fmt.Errorf("query summary %s: %w", sessionID, err)
		}
		if len(result.Items) > 0 {
			return itemToSummary(result.Items[0]), nil
		}
		if len(result.LastEvaluatedKey) == 0 {
			return models.InterviewSummary{}, ErrSummaryNotFound
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
}

// ListSummariesSince scans summaries of every user created at or after since.
func (s *DynamoDBService) ListSummariesSince(ctx context.Context, since time.Time) ([]models.InterviewSummary, error) {
	input := &dynamodb.ScanInput{
		TableName:        aws.String(s.summariesTable),
		FilterExpression: aws.String("#ts >= :ts"),
		ExpressionAttributeNames: map[string]string{
			"#ts": "CreatedAt",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ts": &types.AttributeValueMemberS{Value: formatTime(since)},
		},
	}

	var summaries []models.InterviewSummary
	for {
		result, err := s.db.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan DynamoDB: %w", err)
		}
		for _, item := range result.Items {
			summaries = append(summaries, itemToSummary(item))
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return summaries, nil
}

// AppendTurn records one turn; seq is the turn's position in the session.
func (s *DynamoDBService) AppendTurn(ctx context.Context, sessionID string, seq int, msg models.Message) error {
	_, err := s.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.turnsTable),
		Item: map[string]types.AttributeValue{
			"SessionID": &types.AttributeValueMemberS{Value: sessionID},
			"Seq":       &types.AttributeValueMemberN{Value: strconv.Itoa(seq)},
			"ID":        &types.AttributeValueMemberS{Value: msg.ID},
			"Role":      &types.AttributeValueMemberS{Value: msg.Role},
			"Content":   &types.AttributeValueMemberS{Value: msg.Content},
			"Timestamp": &types.AttributeValueMemberS{Value: formatTime(msg.Timestamp)},
		},
	})
	if err != nil {
		return fmt.Errorf("append turn %d to %s: %w", seq, sessionID, err)
	}
	return nil
}

// ListTurns returns the logged turns of a session in order.
func (s *DynamoDBService) ListTurns(ctx context.Context, sessionID string) ([]models.Message, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.turnsTable),
		KeyConditionExpression: aws.String("SessionID = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sessionID},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var turns []models.Message
	for {
		result, err := s.db.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query turns: %w", err)
		}
		for _, item := range result.Items {
			turns = append(turns, models.Message{
				ID:        attrString(item, "ID"),
				Role:      attrString(item, "Role"),
				Content:   attrString(item, "Content"),
				Timestamp: parseTime(attrString(item, "Timestamp")),
			})
		}
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}
	return turns, nil
}

// DashboardStats aggregates the user's summaries.
func (s *DynamoDBService) DashboardStats(ctx context.Context, userID string) (models.DashboardStats, error) {
	summaries, err := s.ListSummaries(ctx, userID)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return BuildDashboardStats(summaries), nil
}

// BuildDashboardStats averages ratings across summaries and ranks categories by mean rating.
func BuildDashboardStats(summaries []models.InterviewSummary) models.DashboardStats {
	stats := models.DashboardStats{TotalInterviews: len(summaries)}

	total := 0
	categorySum := map[string]int{}
	categoryCount := map[string]int{}
	for i := range summaries {
		sm := summaries[i]
		if stats.LastInterviewAt == nil || sm.CreatedAt.After(*stats.LastInterviewAt) {
			created := sm.CreatedAt
			stats.LastInterviewAt = &created
		}
		for _, fb := range sm.DetailedFeedback {
			total += fb.Rating
			stats.AnswersReviewed++
			categorySum[fb.Category] += fb.Rating
			categoryCount[fb.Category]++
		}
	}
	if stats.AnswersReviewed == 0 {
		return stats
	}
	stats.AverageRating = roundOneDecimal(float64(total) / float64(stats.AnswersReviewed))

	categories := make([]string, 0, len(categoryCount))
	for c := range categoryCount {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	mean := func(c string) float64 { return float64(categorySum[c]) / float64(categoryCount[c]) }

	stats.StrongestArea, stats.WeakestArea = categories[0], categories[0]
	for _, c := range categories[1:] {
		if mean(c) > mean(stats.StrongestArea) {
			stats.StrongestArea = c
		}
		if mean(c) < mean(stats.WeakestArea) {
			stats.WeakestArea = c
		}
	}
	return stats
}

func summaryToItem(s models.InterviewSummary) map[string]types.AttributeValue {
	feedback := make([]types.AttributeValue, 0, len(s.DetailedFeedback))
	for _, fb := range s.DetailedFeedback {
		feedback = append(feedback, &types.AttributeValueMemberM{Value: map[string]types.AttributeValue{
			"Question":       &types.AttributeValueMemberS{Value: fb.Question},
			"UserAnswer":     &types.AttributeValueMemberS{Value: fb.UserAnswer},
			"ExpectedAnswer": &types.AttributeValueMemberS{Value: fb.ExpectedAnswer},
			"Rating":         &types.AttributeValueMemberN{Value: strconv.Itoa(fb.Rating)},
			"Feedback":       &types.AttributeValueMemberS{Value: fb.Feedback},
			"Category":       &types.AttributeValueMemberS{Value: fb.Category},
		}})
	}

	return map[string]types.AttributeValue{
		"UserID":           &types.AttributeValueMemberS{Value: s.UserID},
		"CreatedAt":        &types.AttributeValueMemberS{Value: formatTime(s.CreatedAt)},
		"SessionID":        &types.AttributeValueMemberS{Value: s.SessionID},
		"Role":             &types.AttributeValueMemberS{Value: s.Role},
		"Level":            &types.AttributeValueMemberS{Value: s.Level},
		"StartTime":        &types.AttributeValueMemberS{Value: formatTime(s.StartTime)},
		"EndTime":          &types.AttributeValueMemberS{Value: formatTime(s.EndTime)},
		"MessageCount":     &types.AttributeValueMemberN{Value: strconv.Itoa(s.MessageCount)},
		"OverallFeedback":  &types.AttributeValueMemberS{Value: s.OverallFeedback},
		"DetailedFeedback": &types.AttributeValueMemberL{Value: feedback},
		"AverageRating":    &types.AttributeValueMemberN{Value: strconv.FormatFloat(s.AverageRating, 'f', 1, 64)},
		"StrongAnswers":    &types.AttributeValueMemberN{Value: strconv.Itoa(s.StrongAnswers)},
		"NeedsImprovement": &types.AttributeValueMemberN{Value: strconv.Itoa(s.NeedsImprovement)},
		"AIGenerated":      &types.AttributeValueMemberBOOL{Value: s.AIGenerated},
	}
}

func itemToSummary(item map[string]types.AttributeValue) models.InterviewSummary {
	s := models.InterviewSummary{
		UserID:           attrString(item, "UserID"),
		CreatedAt:        parseTime(attrString(item, "CreatedAt")),
		SessionID:        attrString(item, "SessionID"),
		Role:             attrString(item, "Role"),
		Level:            attrString(item, "Level"),
		StartTime:        parseTime(attrString(item, "StartTime")),
		EndTime:          parseTime(attrString(item, "EndTime")),
		MessageCount:     attrInt(item, "MessageCount"),
		OverallFeedback:  attrString(item, "OverallFeedback"),
		AverageRating:    attrFloat(item, "AverageRating"),
		StrongAnswers:    attrInt(item, "StrongAnswers"),
		NeedsImprovement: attrInt(item, "NeedsImprovement"),
	}
	if b, ok := item["AIGenerated"].(*types.AttributeValueMemberBOOL); ok {
		s.AIGenerated = b.Value
	}
	if l, ok := item["DetailedFeedback"].(*types.AttributeValueMemberL); ok {
		for _, v := range l.Value {
			m, ok := v.(*types.AttributeValueMemberM)
			if !ok {
				continue
			}
			s.DetailedFeedback = append(s.DetailedFeedback, models.QuestionFeedback{
				Question:       attrString(m.Value, "Question"),
				UserAnswer:     attrString(m.Value, "UserAnswer"),
				ExpectedAnswer: attrString(m.Value, "ExpectedAnswer"),
				Rating:         attrInt(m.Value, "Rating"),
				Feedback:       attrString(m.Value, "Feedback"),
				Category:       attrString(m.Value, "Category"),
			})
		}
	}
	return s
}

func attrString(item map[string]types.AttributeValue, key string) string {
	if v, ok := item[key].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func attrInt(item map[string]types.AttributeValue, key string) int {
	if v, ok := item[key].(*types.AttributeValueMemberN); ok {
		i, _ := strconv.Atoi(v.Value)
		return i
	}
	return 0
}

func attrFloat(item map[string]types.AttributeValue, key string) float64 {
	if v, ok := item[key].(*types.AttributeValueMemberN); ok {
		f, _ := strconv.ParseFloat(v.Value, 64)
		return f
	}
	return 0
}
