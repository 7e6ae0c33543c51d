package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
)

func (r *SQLiteRepo) CreateIdea(ctx context.Context, idea *models.ContentIdea) (int64, error) {
	if idea == nil {
		return 0, fmt.Errorf("content idea is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO content_ideas (user_id, raw_content, status, created) VALUES (?, ?, ?, ?)`,
		idea.UserID, idea.RawContent, models.IdeaPending, now())
	if err != nil {
		return 0, err
	}

	return res.LastInsertId()
}

// idea rows always carry the live tweet count
const ideaQuery = `SELECT i.id, i.user_id, i.raw_content, i.status, i.created,
	(SELECT COUNT(*) FROM tweets t WHERE t.idea_id = i.id) AS tweet_count
	FROM content_ideas i`

func (r *SQLiteRepo) GetIdea(ctx context.Context, id int64) (*models.ContentIdea, error) {
	row := r.conn.QueryRow(ctx, ideaQuery+` WHERE i.id = ?`, id)
	return scanIdea(row)
}

func (r *SQLiteRepo) GetIdeaForUser(ctx context.Context, id, userID int64) (*models.ContentIdea, error) {
	row := r.conn.QueryRow(ctx, ideaQuery+` WHERE i.id = ? AND i.user_id = ?`, id, userID)
	return scanIdea(row)
}

func (r *SQLiteRepo) ListIdeasByUser(ctx context.Context, userID int64) ([]models.ContentIdea, error) {
	return r.listIdeas(ctx, ideaQuery+` WHERE i.user_id = ? ORDER BY i.created DESC, i.id DESC`, userID)
}

func (r *SQLiteRepo) ListAllIdeas(ctx context.Context) ([]models.ContentIdea, error) {
	return r.listIdeas(ctx, ideaQuery+` ORDER BY i.created DESC, i.id DESC`)
}

func (r *SQLiteRepo) listIdeas(ctx context.Context, query string, args ...any) ([]models.ContentIdea, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ContentIdea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *idea)
	}

	return out, rows.Err()
}

func scanIdea(row rowScanner) (*models.ContentIdea, error) {
	var i models.ContentIdea
	if err := row.Scan(&i.ID, &i.UserID, &i.RawContent, &i.Status, &i.Created, &i.TweetCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &i, nil
}
