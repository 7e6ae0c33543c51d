package sqlite

import (
	"context"
	"database/sql"

	"github.com/patternscope/patternscope/pkg/models"
)

// CreateSchema inserts or updates an onboarding schema by version.
func (r *SQLiteRepo) CreateSchema(ctx context.Context, version, description, schemaJSON string) (int64, error) {
	ts := now()
	res, err := r.conn.Exec(ctx,
		`INSERT INTO onboarding_schemas (version, description, schema_json, created, updated) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(version) DO UPDATE SET description=excluded.description, schema_json=excluded.schema_json, updated=excluded.updated`,
		version, description, schemaJSON, ts, ts)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *SQLiteRepo) GetSchemaByVersion(ctx context.Context, version string) (*models.OnboardingSchema, error) {
	row := r.conn.QueryRow(ctx, `SELECT id, version, description, schema_json, created, updated FROM onboarding_schemas WHERE version = ?`, version)
	var s models.OnboardingSchema
	var desc sql.NullString
	if err := row.Scan(&s.ID, &s.Version, &desc, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	if desc.Valid {
		s.Description = desc.String
	}
	return &s, nil
}

func (r *SQLiteRepo) ListSchemas(ctx context.Context) ([]models.OnboardingSchema, error) {
	rows, err := r.conn.QueryRows(ctx, `SELECT id, version, description, schema_json, created, updated FROM onboarding_schemas ORDER BY version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OnboardingSchema
	for rows.Next() {
		var s models.OnboardingSchema
		var desc sql.NullString
		if err := rows.Scan(&s.ID, &s.Version, &desc, &s.SchemaJSON, &s.Created, &s.Updated); err != nil {
			return nil, err
		}
		if desc.Valid {
			s.Description = desc.String
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
