// Package schema validates onboarding payloads against stored, versioned
// JSON schemas.
package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/patternscope/patternscope/pkg/repository"
	"github.com/qri-io/jsonschema"
)

// OnboardingVersion is the schema version current onboarding payloads are
// validated against.
const OnboardingVersion = "v1"

// Loader loads and caches compiled JSON schemas from the repository.
type Loader struct {
	repo  repository.SchemaRepo
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

func NewLoader(ctx context.Context, r repository.SchemaRepo) (*Loader, error) {
	l := &Loader{
		repo:  r,
		cache: make(map[string]*jsonschema.Schema),
	}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}

	return l, nil
}

// GetSchema returns a compiled schema for a version.
func (l *Loader) GetSchema(version string) (*jsonschema.Schema, bool) {
	l.mu.RLock()
	s, ok := l.cache[version]
	l.mu.RUnlock()

	return s, ok
}

// Reload loads all schemas from the DB and compiles them.
func (l *Loader) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rows, err := l.repo.ListSchemas(ctx)
	if err != nil {
		return fmt.Errorf("load schemas: %w", err)
	}

	newCache := make(map[string]*jsonschema.Schema)
	for _, r := range rows {
		rs := &jsonschema.Schema{}
		if err := json.Unmarshal([]byte(r.SchemaJSON), rs); err != nil {
			return fmt.Errorf("compile schema %s: %w", r.Version, err)
		}

		newCache[r.Version] = rs
	}

	l.cache = newCache
	return nil
}

// Validate checks payload against the schema for version. The first return
// value lists keyed validation failures; a nil error with a non-empty list
// means the payload is invalid.
func (l *Loader) Validate(ctx context.Context, version string, payload []byte) ([]jsonschema.KeyError, error) {
	s, ok := l.GetSchema(version)
	if !ok {
		return nil, fmt.Errorf("schema version %s not loaded", version)
	}

	verrs, err := s.ValidateBytes(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}

	return verrs, nil
}
