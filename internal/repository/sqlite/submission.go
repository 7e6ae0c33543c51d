package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
)

// CreateSubmission inserts the submission and bumps the owner's counters in
// one transaction so the weekly limit stays consistent with stored rows.
func (r *SQLiteRepo) CreateSubmission(ctx context.Context, s *models.Submission) (int64, error) {
	if s == nil {
		return 0, fmt.Errorf("submission is nil")
	}

	urls, err := json.Marshal(s.ProfileURLs)
	if err != nil {
		return 0, fmt.Errorf("marshal profile urls: %w", err)
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO submissions (user_id, status, profile_urls, submitted_at, expected_delivery_at) VALUES (?, ?, ?, ?, ?)`,
		s.UserID, models.SubmissionPending, string(urls), s.SubmittedAt, s.ExpectedDeliveryAt)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET submission_count = submission_count + 1, weekly_submission_count = weekly_submission_count + 1 WHERE id = ?`,
		s.UserID); err != nil {
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

const submissionColumns = `id, user_id, status, profile_urls, submitted_at, expected_delivery_at`

func (r *SQLiteRepo) GetSubmissionForUser(ctx context.Context, id, userID int64) (*models.Submission, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = ? AND user_id = ?`, id, userID)
	s, err := scanSubmission(row)
	if err != nil || s == nil {
		return s, err
	}

	a, err := r.GetAnalysisBySubmission(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	s.Analysis = a

	return s, nil
}

func (r *SQLiteRepo) ListSubmissionsByUser(ctx context.Context, userID int64) ([]models.Submission, error) {
	return r.listSubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE user_id = ? ORDER BY submitted_at DESC, id DESC`, userID)
}

func (r *SQLiteRepo) ListAllSubmissions(ctx context.Context) ([]models.Submission, error) {
	return r.listSubmissions(ctx, `SELECT `+submissionColumns+` FROM submissions ORDER BY submitted_at DESC, id DESC`)
}

func (r *SQLiteRepo) listSubmissions(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	rows, err := r.conn.QueryRows(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}

	return out, rows.Err()
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	var urls string
	if err := row.Scan(&s.ID, &s.UserID, &s.Status, &urls, &s.SubmittedAt, &s.ExpectedDeliveryAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if err := json.Unmarshal([]byte(urls), &s.ProfileURLs); err != nil {
		return nil, fmt.Errorf("decode profile urls: %w", err)
	}

	return &s, nil
}
