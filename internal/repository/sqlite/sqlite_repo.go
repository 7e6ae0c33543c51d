package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/patternscope/patternscope/internal/db"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

// SQLiteRepo implements repository interfaces using the internal DB wrapper.
type SQLiteRepo struct {
	conn *db.DB
}

// Ensure SQLiteRepo implements the public interfaces.
var _ repository.UserRepo = (*SQLiteRepo)(nil)
var _ repository.SubmissionRepo = (*SQLiteRepo)(nil)
var _ repository.AnalysisRepo = (*SQLiteRepo)(nil)
var _ repository.ContentRepo = (*SQLiteRepo)(nil)
var _ repository.TweetRepo = (*SQLiteRepo)(nil)
var _ repository.FeedbackRepo = (*SQLiteRepo)(nil)
var _ repository.AdminRepo = (*SQLiteRepo)(nil)
var _ repository.PromptRepo = (*SQLiteRepo)(nil)
var _ repository.SchemaRepo = (*SQLiteRepo)(nil)

func New(conn *db.DB) *SQLiteRepo {
	return &SQLiteRepo{conn: conn}
}

// User methods
func (r *SQLiteRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if u == nil {
		return 0, fmt.Errorf("user is nil")
	}

	res, err := r.conn.Exec(ctx,
		`INSERT INTO users (email, password_hash, is_admin, last_submission_reset, created) VALUES (?, ?, ?, ?, ?)`,
		u.Email, u.PasswordHash, boolToInt(u.IsAdmin), now(), now())
	if err != nil {
		return 0, mapConstraintErr(err)
	}

	return res.LastInsertId()
}

// mapConstraintErr translates the driver's uniqueness violations into the
// repository sentinel so handlers can branch on them.
func mapConstraintErr(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return repository.ErrDuplicate
	}
	return err
}

const userColumns = `id, email, password_hash, is_admin, onboarding_json, submission_count, weekly_submission_count, last_submission_reset, created`

func (r *SQLiteRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *SQLiteRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *SQLiteRepo) SetOnboarding(ctx context.Context, userID int64, data *models.Onboarding) error {
	if data == nil {
		return fmt.Errorf("onboarding data is nil")
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal onboarding: %w", err)
	}

	_, err = r.conn.Exec(ctx, `UPDATE users SET onboarding_json = ? WHERE id = ?`, string(b), userID)
	return err
}

func (r *SQLiteRepo) ResetWeeklyCount(ctx context.Context, userID, resetAt int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE users SET weekly_submission_count = 0, last_submission_reset = ? WHERE id = ?`, resetAt, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var isAdmin int
	var onboarding sql.NullString
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &isAdmin, &onboarding,
		&u.SubmissionCount, &u.WeeklySubmissionCount, &u.LastSubmissionReset, &u.Created)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	u.IsAdmin = isAdmin != 0
	if onboarding.Valid && onboarding.String != "" {
		var ob models.Onboarding
		if err := json.Unmarshal([]byte(onboarding.String), &ob); err != nil {
			return nil, fmt.Errorf("decode onboarding: %w", err)
		}
		u.Onboarding = &ob
	}

	return &u, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func now() int64 {
	return time.Now().UTC().UnixMilli()
}
