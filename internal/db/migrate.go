package db

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

// Migrate applies SQL migrations and optional seed files. It creates a
// `schema_migrations` table to track applied migrations and applies any SQL
// files in `migrations/` that have not yet been recorded. Seed files are
// applied idempotently.
func Migrate(ctx context.Context, d *DB, migrationFS embed.FS, seedFS embed.FS) error {
	if _, err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	migDir := "migrations"

	entries, err := fs.ReadDir(migrationFS, migDir)
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(strings.ToLower(name), ".sql") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	for _, fname := range files {
		// filename (without extension) is the migration version key
		version := strings.TrimSuffix(fname, path.Ext(fname))

		var count int
		row := d.QueryRow(ctx, `SELECT COUNT(1) FROM schema_migrations WHERE version = ?`, version)
		if err := row.Scan(&count); err != nil {
			return fmt.Errorf("scan migration applied count: %w", err)
		}
		if count > 0 {
			continue
		}

		b, err := fs.ReadFile(migrationFS, path.Join(migDir, fname))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", fname, err)
		}
		if _, err := d.Exec(ctx, string(b)); err != nil {
			return fmt.Errorf("exec migration %s: %w", fname, err)
		}

		if _, err := d.Exec(ctx, `INSERT INTO schema_migrations (version, applied) VALUES (?, ?)`, version, time.Now().UTC().UnixMilli()); err != nil {
			return fmt.Errorf("record migration %s: %w", fname, err)
		}
	}

	return seed(ctx, d, seedFS)
}

type seedPrompt struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	TemplateText string `json:"template_text"`
}

func seed(ctx context.Context, d *DB, seedFS embed.FS) error {
	now := time.Now().UTC().UnixMilli()

	// onboarding validation schema, upserted by version
	if b, err := fs.ReadFile(seedFS, path.Join("seed", "onboarding_v1.json")); err == nil {
		q := `INSERT INTO onboarding_schemas (version, description, schema_json, created, updated) VALUES ('v1', 'default onboarding schema', ?, ?, ?)
			ON CONFLICT(version) DO UPDATE SET schema_json=excluded.schema_json, updated=excluded.updated`
		if _, err := d.Exec(ctx, q, string(b), now, now); err != nil {
			return fmt.Errorf("seed onboarding schema: %w", err)
		}
	}

	// default prompt templates, inserted once by (name, category)
	if b, err := fs.ReadFile(seedFS, path.Join("seed", "prompts_v1.json")); err == nil {
		var prompts []seedPrompt
		if err := json.Unmarshal(b, &prompts); err != nil {
			return fmt.Errorf("decode seed prompts: %w", err)
		}
		for _, p := range prompts {
			q := `INSERT OR IGNORE INTO prompt_templates (name, category, template_text, created, updated) VALUES (?, ?, ?, ?, ?)`
			if _, err := d.Exec(ctx, q, p.Name, p.Category, p.TemplateText, now, now); err != nil {
				return fmt.Errorf("seed prompt %q: %w", p.Name, err)
			}
		}
	}

	return nil
}
