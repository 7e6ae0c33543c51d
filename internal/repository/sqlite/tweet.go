package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

// CreateTweet inserts the tweet and marks the parent idea completed in the
// same transaction; idea completion is purely a side effect of tweet
// creation, there is no separate "complete" action.
func (r *SQLiteRepo) CreateTweet(ctx context.Context, t *models.Tweet) (int64, error) {
	if t == nil {
		return 0, fmt.Errorf("tweet is nil")
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var ideaID int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM content_ideas WHERE id = ?`, t.IdeaID).Scan(&ideaID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return 0, repository.ErrNotFound
		}

		return 0, err
	}

	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tweets (idea_id, tweet_text, pattern_used, reasoning, created, updated) VALUES (?, ?, ?, ?, ?, ?)`,
		t.IdeaID, t.TweetText, nullIfEmpty(t.PatternUsed), nullIfEmpty(t.Reasoning), ts, ts)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE content_ideas SET status = ? WHERE id = ?`, models.IdeaCompleted, t.IdeaID); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	return id, tx.Commit()
}

const tweetColumns = `id, idea_id, tweet_text, pattern_used, reasoning, created, updated`

func (r *SQLiteRepo) GetTweet(ctx context.Context, id int64) (*models.Tweet, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE id = ?`, id)
	return scanTweet(row)
}

func (r *SQLiteRepo) GetTweetForOwner(ctx context.Context, tweetID, userID int64) (*models.Tweet, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT t.id, t.idea_id, t.tweet_text, t.pattern_used, t.reasoning, t.created, t.updated
		 FROM tweets t JOIN content_ideas i ON t.idea_id = i.id
		 WHERE t.id = ? AND i.user_id = ?`, tweetID, userID)
	return scanTweet(row)
}

func (r *SQLiteRepo) UpdateTweet(ctx context.Context, t *models.Tweet) error {
	if t == nil {
		return fmt.Errorf("tweet is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE tweets SET tweet_text = ?, pattern_used = ?, reasoning = ?, updated = ? WHERE id = ?`,
		t.TweetText, nullIfEmpty(t.PatternUsed), nullIfEmpty(t.Reasoning), now(), t.ID)
	return err
}

// DeleteTweet removes the tweet and its feedback log; when it was the idea's
// last tweet the idea reverts to pending so completed <=> has-tweets keeps
// holding in both directions.
func (r *SQLiteRepo) DeleteTweet(ctx context.Context, id int64) error {
	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	var ideaID int64
	if err := tx.QueryRowContext(ctx, `SELECT idea_id FROM tweets WHERE id = ?`, id).Scan(&ideaID); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return repository.ErrNotFound
		}

		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM feedback_events WHERE tweet_id = ?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tweets WHERE id = ?`, id); err != nil {
		_ = tx.Rollback()
		return err
	}

	var remaining int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM tweets WHERE idea_id = ?`, ideaID).Scan(&remaining); err != nil {
		_ = tx.Rollback()
		return err
	}
	if remaining == 0 {
		if _, err := tx.ExecContext(ctx, `UPDATE content_ideas SET status = ? WHERE id = ?`, models.IdeaPending, ideaID); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// ListTweetsByIdea returns tweets newest first, each with its feedback
// history (newest first) and the derived current feedback type.
func (r *SQLiteRepo) ListTweetsByIdea(ctx context.Context, ideaID int64) ([]models.Tweet, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE idea_id = ? ORDER BY created DESC, id DESC`, ideaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Tweet
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		history, err := r.ListFeedbackByTweet(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].FeedbackHistory = history
		if len(history) > 0 {
			out[i].FeedbackType = history[0].FeedbackType
		}
	}

	return out, nil
}

func scanTweet(row rowScanner) (*models.Tweet, error) {
	var t models.Tweet
	var pattern, reasoning sql.NullString
	if err := row.Scan(&t.ID, &t.IdeaID, &t.TweetText, &pattern, &reasoning, &t.Created, &t.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if pattern.Valid {
		t.PatternUsed = pattern.String
	}
	if reasoning.Valid {
		t.Reasoning = reasoning.String
	}

	return &t, nil
}
