package models

// Submission statuses. `completed` and `error` are terminal.
const (
	SubmissionPending    = "pending"
	SubmissionProcessing = "processing"
	SubmissionCompleted  = "completed"
	SubmissionError      = "error"
)

// Content idea statuses. An idea is completed exactly when it has at least
// one tweet; the stored status is kept in sync inside the tweet transactions.
const (
	IdeaPending   = "pending"
	IdeaCompleted = "completed"
)

// Feedback types a user can attach to a tweet.
const (
	FeedbackUseThis    = "use_this"
	FeedbackTweak      = "tweak"
	FeedbackRegenerate = "regenerate"
)

type User struct {
	ID                    int64       `json:"id" db:"id"`
	Email                 string      `json:"email" db:"email"`
	PasswordHash          string      `json:"-" db:"password_hash"`
	IsAdmin               bool        `json:"is_admin" db:"is_admin"`
	Onboarding            *Onboarding `json:"onboarding_data,omitempty" db:"onboarding_json"`
	SubmissionCount       int64       `json:"submission_count" db:"submission_count"`
	WeeklySubmissionCount int64       `json:"weekly_submission_count" db:"weekly_submission_count"`
	LastSubmissionReset   int64       `json:"last_submission_reset" db:"last_submission_reset"`
	Created               int64       `json:"created_at" db:"created"`
}

// Onboarding is the optional profile collected once after registration.
type Onboarding struct {
	Niche           string `json:"niche"`
	Goals           string `json:"goals"`
	ExperienceLevel string `json:"experience_level"`
}

type Submission struct {
	ID                 int64     `json:"id" db:"id"`
	UserID             int64     `json:"user_id" db:"user_id"`
	Status             string    `json:"status" db:"status"`
	ProfileURLs        []string  `json:"profile_urls" db:"profile_urls"`
	SubmittedAt        int64     `json:"submitted_at" db:"submitted_at"`
	ExpectedDeliveryAt int64     `json:"expected_delivery_at" db:"expected_delivery_at"`
	Analysis           *Analysis `json:"analysis,omitempty"`
}

type KeyPattern struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
	Example     string `json:"example,omitempty"`
}

type Analysis struct {
	ID           int64        `json:"id" db:"id"`
	SubmissionID int64        `json:"submission_id" db:"submission_id"`
	KeyPatterns  []KeyPattern `json:"key_patterns" db:"key_patterns"`
	DocumentURL  string       `json:"document_url,omitempty" db:"document_url"`
	DocumentType string       `json:"document_type,omitempty" db:"document_type"`
	CompletedAt  int64        `json:"completed_at" db:"completed_at"`
}

type ContentIdea struct {
	ID         int64   `json:"id" db:"id"`
	UserID     int64   `json:"user_id" db:"user_id"`
	RawContent string  `json:"raw_content" db:"raw_content"`
	Status     string  `json:"status" db:"status"`
	TweetCount int64   `json:"tweet_count"`
	Tweets     []Tweet `json:"tweets,omitempty"`
	Created    int64   `json:"created_at" db:"created"`
}

// Tweet is an admin-authored post for a content idea. FeedbackType is never
// stored; it is derived from the newest feedback event when tweets are read.
type Tweet struct {
	ID              int64           `json:"id" db:"id"`
	IdeaID          int64           `json:"idea_id" db:"idea_id"`
	TweetText       string          `json:"tweet_text" db:"tweet_text"`
	PatternUsed     string          `json:"pattern_used,omitempty" db:"pattern_used"`
	Reasoning       string          `json:"reasoning,omitempty" db:"reasoning"`
	FeedbackType    string          `json:"feedback_type,omitempty"`
	FeedbackHistory []FeedbackEvent `json:"feedback_history,omitempty"`
	Created         int64           `json:"created_at" db:"created"`
	Updated         int64           `json:"updated_at" db:"updated"`
}

// FeedbackEvent is one entry of a tweet's append-only feedback log.
type FeedbackEvent struct {
	ID            int64  `json:"id" db:"id"`
	TweetID       int64  `json:"tweet_id" db:"tweet_id"`
	FeedbackType  string `json:"feedback_type" db:"feedback_type"`
	FeedbackNotes string `json:"feedback_notes,omitempty" db:"feedback_notes"`
	Created       int64  `json:"created_at" db:"created"`
}

type PromptTemplate struct {
	ID           int64  `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	Category     string `json:"category" db:"category"`
	TemplateText string `json:"template_text" db:"template_text"`
	Created      int64  `json:"created_at" db:"created"`
	Updated      int64  `json:"updated_at" db:"updated"`
}

// OnboardingSchema is a stored, versioned JSON schema used to validate
// onboarding payloads.
type OnboardingSchema struct {
	ID          int64  `json:"id" db:"id"`
	Version     string `json:"version" db:"version"`
	Description string `json:"description,omitempty" db:"description"`
	SchemaJSON  string `json:"schema_json" db:"schema_json"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
}

// UserSummary is one row of the admin worklist.
type UserSummary struct {
	ID                 int64       `json:"id"`
	Email              string      `json:"email"`
	Created            int64       `json:"created_at"`
	Onboarding         *Onboarding `json:"onboarding_data,omitempty"`
	SubmissionCount    int64       `json:"submission_count"`
	ContentCount       int64       `json:"content_count"`
	PendingSubmissions int64       `json:"pending_submissions"`
	PendingContent     int64       `json:"pending_content"`
	FeedbackCount      int64       `json:"feedback_count"`
	HasPendingWork     bool        `json:"has_pending_work"`
}

// UserDetail is the admin drill-down tree for one user.
type UserDetail struct {
	User         User          `json:"user"`
	Submissions  []Submission  `json:"submissions"`
	ContentIdeas []ContentIdea `json:"content_ideas"`
}
