package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/patternscope/patternscope/pkg/models"
)

func (r *SQLiteRepo) CreatePrompt(ctx context.Context, p *models.PromptTemplate) (int64, error) {
	if p == nil {
		return 0, fmt.Errorf("prompt template is nil")
	}

	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO prompt_templates (name, category, template_text, created, updated) VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Category, p.TemplateText, ts, ts)
	if err != nil {
		return 0, mapConstraintErr(err)
	}

	return res.LastInsertId()
}

const promptColumns = `id, name, category, template_text, created, updated`

func (r *SQLiteRepo) GetPrompt(ctx context.Context, id int64) (*models.PromptTemplate, error) {
	row := r.conn.QueryRow(ctx, `SELECT `+promptColumns+` FROM prompt_templates WHERE id = ?`, id)
	return scanPrompt(row)
}

func (r *SQLiteRepo) ListPrompts(ctx context.Context, category string) ([]models.PromptTemplate, error) {
	q := `SELECT ` + promptColumns + ` FROM prompt_templates`
	args := []any{}
	if category != "" {
		q += ` WHERE category = ?`
		args = append(args, category)
	}
	q += ` ORDER BY created DESC, id DESC`

	rows, err := r.conn.QueryRows(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PromptTemplate
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}

	return out, rows.Err()
}

func (r *SQLiteRepo) UpdatePrompt(ctx context.Context, p *models.PromptTemplate) error {
	if p == nil {
		return fmt.Errorf("prompt template is nil")
	}

	_, err := r.conn.Exec(ctx,
		`UPDATE prompt_templates SET name = ?, category = ?, template_text = ?, updated = ? WHERE id = ?`,
		p.Name, p.Category, p.TemplateText, now(), p.ID)
	return err
}

func (r *SQLiteRepo) DeletePrompt(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `DELETE FROM prompt_templates WHERE id = ?`, id)
	return err
}

func scanPrompt(row rowScanner) (*models.PromptTemplate, error) {
	var p models.PromptTemplate
	if err := row.Scan(&p.ID, &p.Name, &p.Category, &p.TemplateText, &p.Created, &p.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &p, nil
}
