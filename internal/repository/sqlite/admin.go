package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
)

// ListUserSummaries computes the admin worklist in one query. Pending
// submissions count only pending/processing; error rows need different
// handling and never drive "has pending work".
func (r *SQLiteRepo) ListUserSummaries(ctx context.Context) ([]models.UserSummary, error) {
	q := `SELECT u.id, u.email, u.created, u.onboarding_json,
		(SELECT COUNT(*) FROM submissions s WHERE s.user_id = u.id) AS submission_count,
		(SELECT COUNT(*) FROM content_ideas c WHERE c.user_id = u.id) AS content_count,
		(SELECT COUNT(*) FROM submissions s WHERE s.user_id = u.id AND s.status IN ('pending', 'processing')) AS pending_submissions,
		(SELECT COUNT(*) FROM content_ideas c WHERE c.user_id = u.id AND c.status = 'pending') AS pending_content,
		(SELECT COUNT(*) FROM feedback_events fe
			JOIN tweets t ON fe.tweet_id = t.id
			JOIN content_ideas c ON t.idea_id = c.id
			WHERE c.user_id = u.id) AS feedback_count
	FROM users u
	WHERE u.is_admin = 0
	ORDER BY (pending_submissions > 0 OR pending_content > 0) DESC, u.created DESC, u.id DESC`

	rows, err := r.conn.QueryRows(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.UserSummary
	for rows.Next() {
		var s models.UserSummary
		var onboarding sql.NullString
		if err := rows.Scan(&s.ID, &s.Email, &s.Created, &onboarding,
			&s.SubmissionCount, &s.ContentCount, &s.PendingSubmissions, &s.PendingContent, &s.FeedbackCount); err != nil {
			return nil, err
		}
		if onboarding.Valid && onboarding.String != "" {
			var ob models.Onboarding
			if err := json.Unmarshal([]byte(onboarding.String), &ob); err != nil {
				return nil, fmt.Errorf("decode onboarding: %w", err)
			}
			s.Onboarding = &ob
		}
		s.HasPendingWork = s.PendingSubmissions > 0 || s.PendingContent > 0
		out = append(out, s)
	}

	return out, rows.Err()
}

// GetUserDetail assembles the full drill-down tree for one user.
func (r *SQLiteRepo) GetUserDetail(ctx context.Context, userID int64) (*models.UserDetail, error) {
	user, err := r.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	submissions, err := r.ListSubmissionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range submissions {
		analysis, err := r.GetAnalysisBySubmission(ctx, submissions[i].ID)
		if err != nil {
			return nil, err
		}
		submissions[i].Analysis = analysis
	}

	ideas, err := r.ListIdeasByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range ideas {
		tweets, err := r.ListTweetsByIdea(ctx, ideas[i].ID)
		if err != nil {
			return nil, err
		}
		ideas[i].Tweets = tweets
	}

	if submissions == nil {
		submissions = []models.Submission{}
	}
	if ideas == nil {
		ideas = []models.ContentIdea{}
	}

	return &models.UserDetail{User: *user, Submissions: submissions, ContentIdeas: ideas}, nil
}
