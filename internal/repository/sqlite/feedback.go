package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
)

// AppendFeedback adds one event to a tweet's feedback log. The log is
// append-only: nothing here ever updates or deletes prior events.
func (r *SQLiteRepo) AppendFeedback(ctx context.Context, e *models.FeedbackEvent) (int64, error) {
	if e == nil {
		return 0, fmt.Errorf("feedback event is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO feedback_events (tweet_id, feedback_type, feedback_notes, created) VALUES (?, ?, ?, ?)`,
		e.TweetID, e.FeedbackType, nullIfEmpty(e.FeedbackNotes), now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// ListFeedbackByTweet returns events newest first, id as tiebreaker, so
// index 0 is always the current feedback.
func (r *SQLiteRepo) ListFeedbackByTweet(ctx context.Context, tweetID int64) ([]models.FeedbackEvent, error) {
	rows, err := r.conn.QueryRows(ctx,
		`SELECT id, tweet_id, feedback_type, feedback_notes, created FROM feedback_events WHERE tweet_id = ? ORDER BY created DESC, id DESC`, tweetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.FeedbackEvent
	for rows.Next() {
		var e models.FeedbackEvent
		var notes sql.NullString
		if err := rows.Scan(&e.ID, &e.TweetID, &e.FeedbackType, &notes, &e.Created); err != nil {
			return nil, err
		}
		if notes.Valid {
			e.FeedbackNotes = notes.String
		}
		out = append(out, e)
	}

	return out, rows.Err()
}
