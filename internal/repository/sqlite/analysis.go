package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

// AttachAnalysis inserts the analysis and completes the submission in one
// transaction. Only pending/processing submissions accept an analysis;
// completed and error are terminal. The UNIQUE constraint on submission_id
// backs up the in-tx duplicate check.
func (r *SQLiteRepo) AttachAnalysis(ctx context.Context, a *models.Analysis) (int64, error) {
	if a == nil {
		return 0, fmt.Errorf("analysis is nil")
	}

	patterns, err := json.Marshal(a.KeyPatterns)
	if err != nil {
		return 0, fmt.Errorf("marshal key patterns: %w", err)
	}

	tx, err := r.conn.GetConn().BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var status string
	row := tx.QueryRowContext(ctx, `SELECT status FROM submissions WHERE id = ?`, a.SubmissionID)
	if err := row.Scan(&status); err != nil {
		_ = tx.Rollback()
		if err == sql.ErrNoRows {
			return 0, repository.ErrNotFound
		}

		return 0, err
	}
	var existing int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM analyses WHERE submission_id = ?`, a.SubmissionID).Scan(&existing); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	if existing > 0 {
		_ = tx.Rollback()
		return 0, repository.ErrDuplicate
	}
	if status != models.SubmissionPending && status != models.SubmissionProcessing {
		_ = tx.Rollback()
		return 0, repository.ErrInvalidState
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO analyses (submission_id, key_patterns, document_url, document_type, completed_at) VALUES (?, ?, ?, ?, ?)`,
		a.SubmissionID, string(patterns), nullIfEmpty(a.DocumentURL), nullIfEmpty(a.DocumentType), a.CompletedAt)
	if err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE submissions SET status = ? WHERE id = ?`, models.SubmissionCompleted, a.SubmissionID); err != nil {
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

const analysisColumns = `id, submission_id, key_patterns, document_url, document_type, completed_at`

func (r *SQLiteRepo) GetAnalysisBySubmission(ctx context.Context, submissionID int64) (*models.Analysis, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+analysisColumns+` FROM analyses WHERE submission_id = ?`, submissionID)
	return scanAnalysis(row)
}

// GetAnalysisForUser resolves an analysis only when the parent submission
// belongs to userID.
func (r *SQLiteRepo) GetAnalysisForUser(ctx context.Context, analysisID, userID int64) (*models.Analysis, error) {
	row := r.conn.QueryRow(ctx,
		`SELECT a.id, a.submission_id, a.key_patterns, a.document_url, a.document_type, a.completed_at
		 FROM analyses a JOIN submissions s ON a.submission_id = s.id
		 WHERE a.id = ? AND s.user_id = ?`, analysisID, userID)
	return scanAnalysis(row)
}

func scanAnalysis(row rowScanner) (*models.Analysis, error) {
	var a models.Analysis
	var patterns string
	var docURL, docType sql.NullString
	if err := row.Scan(&a.ID, &a.SubmissionID, &patterns, &docURL, &docType, &a.CompletedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	if err := json.Unmarshal([]byte(patterns), &a.KeyPatterns); err != nil {
		return nil, fmt.Errorf("decode key patterns: %w", err)
	}
	if docURL.Valid {
		a.DocumentURL = docURL.String
	}
	if docType.Valid {
		a.DocumentType = docType.String
	}

	return &a, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
