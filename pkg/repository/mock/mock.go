// Package mock provides an in-memory repository implementation for handler
// tests. It mirrors the transactional semantics of the sqlite implementation
// (counter bumps, status transitions, ownership joins) without a database.
package mock

import (
	"context"
	"sort"
	"time"

	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

// Store implements every repository interface over plain maps. Not safe for
// concurrent use; handler tests drive it from a single goroutine.
type Store struct {
	// ForcedErr, when set, is returned by every operation.
	ForcedErr error

	Users    map[int64]*models.User
	Subs     map[int64]*models.Submission
	Analyses map[int64]*models.Analysis
	Ideas    map[int64]*models.ContentIdea
	Tweets   map[int64]*models.Tweet
	Feedback map[int64]*models.FeedbackEvent
	Prompts  map[int64]*models.PromptTemplate
	Schemas  map[string]*models.OnboardingSchema

	nextID int64
}

var (
	_ repository.UserRepo       = (*Store)(nil)
	_ repository.SubmissionRepo = (*Store)(nil)
	_ repository.AnalysisRepo   = (*Store)(nil)
	_ repository.ContentRepo    = (*Store)(nil)
	_ repository.TweetRepo      = (*Store)(nil)
	_ repository.FeedbackRepo   = (*Store)(nil)
	_ repository.AdminRepo      = (*Store)(nil)
	_ repository.PromptRepo     = (*Store)(nil)
	_ repository.SchemaRepo     = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		Users:    make(map[int64]*models.User),
		Subs:     make(map[int64]*models.Submission),
		Analyses: make(map[int64]*models.Analysis),
		Ideas:    make(map[int64]*models.ContentIdea),
		Tweets:   make(map[int64]*models.Tweet),
		Feedback: make(map[int64]*models.FeedbackEvent),
		Prompts:  make(map[int64]*models.PromptTemplate),
		Schemas:  make(map[string]*models.OnboardingSchema),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func nowMilli() int64 { return time.Now().UTC().UnixMilli() }

// --- UserRepo ---

func (s *Store) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	for _, existing := range s.Users {
		if existing.Email == u.Email {
			return 0, repository.ErrDuplicate
		}
	}
	cp := *u
	cp.ID = s.id()
	if cp.Created == 0 {
		cp.Created = nowMilli()
	}
	s.Users[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	u, ok := s.Users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	for _, u := range s.Users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) SetOnboarding(ctx context.Context, userID int64, data *models.Onboarding) error {
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	u, ok := s.Users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *data
	u.Onboarding = &cp
	return nil
}

func (s *Store) ResetWeeklyCount(ctx context.Context, userID, resetAt int64) error {
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	u, ok := s.Users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.WeeklySubmissionCount = 0
	u.LastSubmissionReset = resetAt
	return nil
}

// --- SubmissionRepo ---

func (s *Store) CreateSubmission(ctx context.Context, sub *models.Submission) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	u, ok := s.Users[sub.UserID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	cp := *sub
	cp.ID = s.id()
	if cp.Status == "" {
		cp.Status = models.SubmissionPending
	}
	s.Subs[cp.ID] = &cp
	u.SubmissionCount++
	u.WeeklySubmissionCount++
	return cp.ID, nil
}

func (s *Store) GetSubmissionForUser(ctx context.Context, id, userID int64) (*models.Submission, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	sub, ok := s.Subs[id]
	if !ok || sub.UserID != userID {
		return nil, nil
	}
	return s.withAnalysis(sub), nil
}

func (s *Store) ListSubmissionsByUser(ctx context.Context, userID int64) ([]models.Submission, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.Submission{}
	for _, sub := range s.Subs {
		if sub.UserID == userID {
			out = append(out, *s.withAnalysis(sub))
		}
	}
	sortSubmissions(out)
	return out, nil
}

func (s *Store) ListAllSubmissions(ctx context.Context) ([]models.Submission, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.Submission{}
	for _, sub := range s.Subs {
		out = append(out, *s.withAnalysis(sub))
	}
	sortSubmissions(out)
	return out, nil
}

func (s *Store) withAnalysis(sub *models.Submission) *models.Submission {
	cp := *sub
	for _, a := range s.Analyses {
		if a.SubmissionID == sub.ID {
			ac := *a
			cp.Analysis = &ac
			break
		}
	}
	return &cp
}

func sortSubmissions(subs []models.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].SubmittedAt != subs[j].SubmittedAt {
			return subs[i].SubmittedAt > subs[j].SubmittedAt
		}
		return subs[i].ID > subs[j].ID
	})
}

// --- AnalysisRepo ---

func (s *Store) AttachAnalysis(ctx context.Context, a *models.Analysis) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	sub, ok := s.Subs[a.SubmissionID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	for _, existing := range s.Analyses {
		if existing.SubmissionID == a.SubmissionID {
			return 0, repository.ErrDuplicate
		}
	}
	if sub.Status != models.SubmissionPending && sub.Status != models.SubmissionProcessing {
		return 0, repository.ErrInvalidState
	}
	cp := *a
	cp.ID = s.id()
	if cp.CompletedAt == 0 {
		cp.CompletedAt = nowMilli()
	}
	s.Analyses[cp.ID] = &cp
	sub.Status = models.SubmissionCompleted
	return cp.ID, nil
}

func (s *Store) GetAnalysisBySubmission(ctx context.Context, submissionID int64) (*models.Analysis, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	for _, a := range s.Analyses {
		if a.SubmissionID == submissionID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetAnalysisForUser(ctx context.Context, analysisID, userID int64) (*models.Analysis, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	a, ok := s.Analyses[analysisID]
	if !ok {
		return nil, nil
	}
	sub, ok := s.Subs[a.SubmissionID]
	if !ok || sub.UserID != userID {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// --- ContentRepo ---

func (s *Store) CreateIdea(ctx context.Context, idea *models.ContentIdea) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	cp := *idea
	cp.ID = s.id()
	if cp.Status == "" {
		cp.Status = models.IdeaPending
	}
	if cp.Created == 0 {
		cp.Created = nowMilli()
	}
	s.Ideas[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetIdea(ctx context.Context, id int64) (*models.ContentIdea, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	idea, ok := s.Ideas[id]
	if !ok {
		return nil, nil
	}
	return s.ideaView(idea), nil
}

func (s *Store) GetIdeaForUser(ctx context.Context, id, userID int64) (*models.ContentIdea, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	idea, ok := s.Ideas[id]
	if !ok || idea.UserID != userID {
		return nil, nil
	}
	return s.ideaView(idea), nil
}

func (s *Store) ListIdeasByUser(ctx context.Context, userID int64) ([]models.ContentIdea, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.ContentIdea{}
	for _, idea := range s.Ideas {
		if idea.UserID == userID {
			out = append(out, *s.ideaView(idea))
		}
	}
	sortIdeas(out)
	return out, nil
}

func (s *Store) ListAllIdeas(ctx context.Context) ([]models.ContentIdea, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.ContentIdea{}
	for _, idea := range s.Ideas {
		out = append(out, *s.ideaView(idea))
	}
	sortIdeas(out)
	return out, nil
}

func (s *Store) ideaView(idea *models.ContentIdea) *models.ContentIdea {
	cp := *idea
	cp.TweetCount = 0
	for _, t := range s.Tweets {
		if t.IdeaID == idea.ID {
			cp.TweetCount++
		}
	}
	return &cp
}

func sortIdeas(ideas []models.ContentIdea) {
	sort.Slice(ideas, func(i, j int) bool {
		if ideas[i].Created != ideas[j].Created {
			return ideas[i].Created > ideas[j].Created
		}
		return ideas[i].ID > ideas[j].ID
	})
}

// --- TweetRepo ---

func (s *Store) CreateTweet(ctx context.Context, t *models.Tweet) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	idea, ok := s.Ideas[t.IdeaID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	cp := *t
	cp.ID = s.id()
	ts := nowMilli()
	if cp.Created == 0 {
		cp.Created = ts
	}
	if cp.Updated == 0 {
		cp.Updated = ts
	}
	s.Tweets[cp.ID] = &cp
	idea.Status = models.IdeaCompleted
	return cp.ID, nil
}

func (s *Store) GetTweet(ctx context.Context, id int64) (*models.Tweet, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	t, ok := s.Tweets[id]
	if !ok {
		return nil, nil
	}
	return s.tweetView(t), nil
}

func (s *Store) GetTweetForOwner(ctx context.Context, tweetID, userID int64) (*models.Tweet, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	t, ok := s.Tweets[tweetID]
	if !ok {
		return nil, nil
	}
	idea, ok := s.Ideas[t.IdeaID]
	if !ok || idea.UserID != userID {
		return nil, nil
	}
	return s.tweetView(t), nil
}

func (s *Store) UpdateTweet(ctx context.Context, t *models.Tweet) error {
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	existing, ok := s.Tweets[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.TweetText = t.TweetText
	existing.PatternUsed = t.PatternUsed
	existing.Reasoning = t.Reasoning
	existing.Updated = nowMilli()
	return nil
}

func (s *Store) DeleteTweet(ctx context.Context, id int64) error {
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	t, ok := s.Tweets[id]
	if !ok {
		return repository.ErrNotFound
	}
	for fid, e := range s.Feedback {
		if e.TweetID == id {
			delete(s.Feedback, fid)
		}
	}
	ideaID := t.IdeaID
	delete(s.Tweets, id)
	remaining := 0
	for _, other := range s.Tweets {
		if other.IdeaID == ideaID {
			remaining++
		}
	}
	if remaining == 0 {
		if idea, ok := s.Ideas[ideaID]; ok {
			idea.Status = models.IdeaPending
		}
	}
	return nil
}

func (s *Store) ListTweetsByIdea(ctx context.Context, ideaID int64) ([]models.Tweet, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.Tweet{}
	for _, t := range s.Tweets {
		if t.IdeaID == ideaID {
			out = append(out, *s.tweetView(t))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) tweetView(t *models.Tweet) *models.Tweet {
	cp := *t
	history, _ := s.ListFeedbackByTweet(context.Background(), t.ID)
	cp.FeedbackHistory = history
	if len(history) > 0 {
		cp.FeedbackType = history[0].FeedbackType
	}
	return &cp
}

// --- FeedbackRepo ---

func (s *Store) AppendFeedback(ctx context.Context, e *models.FeedbackEvent) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	if _, ok := s.Tweets[e.TweetID]; !ok {
		return 0, repository.ErrNotFound
	}
	cp := *e
	cp.ID = s.id()
	if cp.Created == 0 {
		cp.Created = nowMilli()
	}
	s.Feedback[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) ListFeedbackByTweet(ctx context.Context, tweetID int64) ([]models.FeedbackEvent, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.FeedbackEvent{}
	for _, e := range s.Feedback {
		if e.TweetID == tweetID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// --- AdminRepo ---

func (s *Store) ListUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.UserSummary{}
	for _, u := range s.Users {
		if u.IsAdmin {
			continue
		}
		sum := models.UserSummary{ID: u.ID, Email: u.Email, Created: u.Created, Onboarding: u.Onboarding}
		for _, sub := range s.Subs {
			if sub.UserID != u.ID {
				continue
			}
			sum.SubmissionCount++
			if sub.Status == models.SubmissionPending || sub.Status == models.SubmissionProcessing {
				sum.PendingSubmissions++
			}
		}
		for _, idea := range s.Ideas {
			if idea.UserID != u.ID {
				continue
			}
			sum.ContentCount++
			if idea.Status == models.IdeaPending {
				sum.PendingContent++
			}
			for _, t := range s.Tweets {
				if t.IdeaID != idea.ID {
					continue
				}
				for _, e := range s.Feedback {
					if e.TweetID == t.ID {
						sum.FeedbackCount++
					}
				}
			}
		}
		sum.HasPendingWork = sum.PendingSubmissions > 0 || sum.PendingContent > 0
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HasPendingWork != out[j].HasPendingWork {
			return out[i].HasPendingWork
		}
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetUserDetail(ctx context.Context, userID int64) (*models.UserDetail, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	u, ok := s.Users[userID]
	if !ok {
		return nil, nil
	}
	subs, err := s.ListSubmissionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ideas, err := s.ListIdeasByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range ideas {
		tweets, err := s.ListTweetsByIdea(ctx, ideas[i].ID)
		if err != nil {
			return nil, err
		}
		ideas[i].Tweets = tweets
	}
	return &models.UserDetail{User: *u, Submissions: subs, ContentIdeas: ideas}, nil
}

// --- PromptRepo ---

func (s *Store) CreatePrompt(ctx context.Context, p *models.PromptTemplate) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	for _, existing := range s.Prompts {
		if existing.Name == p.Name && existing.Category == p.Category {
			return 0, repository.ErrDuplicate
		}
	}
	cp := *p
	cp.ID = s.id()
	ts := nowMilli()
	cp.Created, cp.Updated = ts, ts
	s.Prompts[cp.ID] = &cp
	return cp.ID, nil
}

func (s *Store) GetPrompt(ctx context.Context, id int64) (*models.PromptTemplate, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	p, ok := s.Prompts[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (s *Store) ListPrompts(ctx context.Context, category string) ([]models.PromptTemplate, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.PromptTemplate{}
	for _, p := range s.Prompts {
		if category == "" || p.Category == category {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Created != out[j].Created {
			return out[i].Created > out[j].Created
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) UpdatePrompt(ctx context.Context, p *models.PromptTemplate) error {
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	existing, ok := s.Prompts[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = p.Name
	existing.Category = p.Category
	existing.TemplateText = p.TemplateText
	existing.Updated = nowMilli()
	return nil
}

func (s *Store) DeletePrompt(ctx context.Context, id int64) error {
	if s.ForcedErr != nil {
		return s.ForcedErr
	}
	delete(s.Prompts, id)
	return nil
}

// --- SchemaRepo ---

func (s *Store) CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error) {
	if s.ForcedErr != nil {
		return 0, s.ForcedErr
	}
	existing, ok := s.Schemas[version]
	if ok {
		existing.Description = description
		existing.SchemaJSON = schemaJSON
		existing.Updated = nowMilli()
		return existing.ID, nil
	}
	ts := nowMilli()
	sc := &models.OnboardingSchema{ID: s.id(), Version: version, Description: description, SchemaJSON: schemaJSON, Created: ts, Updated: ts}
	s.Schemas[version] = sc
	return sc.ID, nil
}

func (s *Store) GetSchemaByVersion(ctx context.Context, version string) (*models.OnboardingSchema, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	sc, ok := s.Schemas[version]
	if !ok {
		return nil, nil
	}
	cp := *sc
	return &cp, nil
}

func (s *Store) ListSchemas(ctx context.Context) ([]models.OnboardingSchema, error) {
	if s.ForcedErr != nil {
		return nil, s.ForcedErr
	}
	out := []models.OnboardingSchema{}
	for _, sc := range s.Schemas {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
