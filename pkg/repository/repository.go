package repository

import (
	"context"

	"github.com/patternscope/patternscope/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
// Lookups return (nil, nil) when no row matches.

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	SetOnboarding(ctx context.Context, userID int64, data *models.Onboarding) error
	ResetWeeklyCount(ctx context.Context, userID, resetAt int64) error
}

type SubmissionRepo interface {
	// CreateSubmission inserts the submission and bumps the owner's
	// submission counters in a single transaction.
	CreateSubmission(ctx context.Context, s *models.Submission) (int64, error)
	GetSubmissionForUser(ctx context.Context, id, userID int64) (*models.Submission, error)
	ListSubmissionsByUser(ctx context.Context, userID int64) ([]models.Submission, error)
	ListAllSubmissions(ctx context.Context) ([]models.Submission, error)
}

type AnalysisRepo interface {
	// AttachAnalysis inserts the analysis and marks the submission completed
	// in a single transaction. Returns ErrNotFound if the submission does not
	// exist and ErrDuplicate if it already has an analysis.
	AttachAnalysis(ctx context.Context, a *models.Analysis) (int64, error)
	GetAnalysisBySubmission(ctx context.Context, submissionID int64) (*models.Analysis, error)
	GetAnalysisForUser(ctx context.Context, analysisID, userID int64) (*models.Analysis, error)
}

type ContentRepo interface {
	CreateIdea(ctx context.Context, idea *models.ContentIdea) (int64, error)
	GetIdea(ctx context.Context, id int64) (*models.ContentIdea, error)
	GetIdeaForUser(ctx context.Context, id, userID int64) (*models.ContentIdea, error)
	ListIdeasByUser(ctx context.Context, userID int64) ([]models.ContentIdea, error)
	ListAllIdeas(ctx context.Context) ([]models.ContentIdea, error)
}

type TweetRepo interface {
	// CreateTweet inserts the tweet and marks the parent idea completed in a
	// single transaction.
	CreateTweet(ctx context.Context, t *models.Tweet) (int64, error)
	GetTweet(ctx context.Context, id int64) (*models.Tweet, error)
	// GetTweetForOwner resolves a tweet only when the parent idea belongs to
	// userID.
	GetTweetForOwner(ctx context.Context, tweetID, userID int64) (*models.Tweet, error)
	UpdateTweet(ctx context.Context, t *models.Tweet) error
	// DeleteTweet removes the tweet and its feedback events; when it was the
	// idea's last tweet the idea reverts to pending, all in one transaction.
	DeleteTweet(ctx context.Context, id int64) error
	// ListTweetsByIdea returns tweets newest first with the feedback history
	// (newest first) and derived current feedback type populated.
	ListTweetsByIdea(ctx context.Context, ideaID int64) ([]models.Tweet, error)
}

type FeedbackRepo interface {
	AppendFeedback(ctx context.Context, e *models.FeedbackEvent) (int64, error)
	ListFeedbackByTweet(ctx context.Context, tweetID int64) ([]models.FeedbackEvent, error)
}

type AdminRepo interface {
	// ListUserSummaries returns non-admin users, pending work first then
	// newest first.
	ListUserSummaries(ctx context.Context) ([]models.UserSummary, error)
	GetUserDetail(ctx context.Context, userID int64) (*models.UserDetail, error)
}

type PromptRepo interface {
	CreatePrompt(ctx context.Context, p *models.PromptTemplate) (int64, error)
	GetPrompt(ctx context.Context, id int64) (*models.PromptTemplate, error)
	ListPrompts(ctx context.Context, category string) ([]models.PromptTemplate, error)
	UpdatePrompt(ctx context.Context, p *models.PromptTemplate) error
	DeletePrompt(ctx context.Context, id int64) error
}

type SchemaRepo interface {
	CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error)
	GetSchemaByVersion(ctx context.Context, version string) (*models.OnboardingSchema, error)
	ListSchemas(ctx context.Context) ([]models.OnboardingSchema, error)
}
