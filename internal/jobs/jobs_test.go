package jobs_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	embedded "github.com/patternscope/patternscope/db"
	"github.com/patternscope/patternscope/internal/db"
	"github.com/patternscope/patternscope/internal/jobs"
)

func setupJobRepo(t *testing.T) *jobs.Repository {
	t.Helper()
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	d, err := db.New(ctx, dsn)
	if err != nil {
		t.Fatalf("db.New: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := db.Migrate(ctx, d, embedded.Migrations, embedded.SeedFiles); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return jobs.NewRepository(d)
}

func TestEnqueueAndProcess(t *testing.T) {
	ctx := context.Background()
	repo := setupJobRepo(t)

	handled := make(chan json.RawMessage, 1)
	handlers := map[string]jobs.Handler{
		"test": func(ctx context.Context, j *jobs.Job) error {
			handled <- j.Payload
			return nil
		},
	}
	pool := jobs.NewWorkerPool(repo, handlers, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "test", map[string]string{"foo": "bar"}, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	select {
	case payload := <-handled:
		var got map[string]string
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if got["foo"] != "bar" {
			t.Fatalf("payload = %v, want foo=bar", got)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("handler was not called")
	}
}

func TestRetryThenDeadLetter(t *testing.T) {
	ctx := context.Background()
	repo := setupJobRepo(t)

	j := &jobs.Job{Type: "flaky", Payload: json.RawMessage(`{}`), MaxAttempts: 2, ScheduledAt: time.Now()}
	id, err := repo.Enqueue(ctx, j)
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	fetched, err := repo.FetchNext(ctx)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched == nil || fetched.ID != id {
		t.Fatalf("fetched = %+v, want job %d", fetched, id)
	}

	// first failure schedules a retry in the future
	fetched.Attempts++
	fetched.Status = jobs.StatusRetry
	fetched.LastError = "boom"
	next := time.Now().Add(time.Hour)
	fetched.NextTryAt = &next
	if err := repo.UpdateJob(ctx, fetched); err != nil {
		t.Fatalf("update: %v", err)
	}

	if again, err := repo.FetchNext(ctx); err != nil {
		t.Fatalf("fetch after retry: %v", err)
	} else if again != nil {
		t.Fatalf("job with future next_try_at should not be fetched, got %+v", again)
	}

	// second failure exhausts attempts and moves to dead letter
	fetched.Attempts++
	fetched.Status = jobs.StatusFailed
	if err := repo.MoveToDeadLetter(ctx, fetched); err != nil {
		t.Fatalf("move to dead letter: %v", err)
	}

	pending, err := repo.CountPending(ctx)
	if err != nil {
		t.Fatalf("count pending: %v", err)
	}
	if pending != 0 {
		t.Fatalf("pending = %d, want 0", pending)
	}
}

func TestUnknownTypeGoesToDeadLetter(t *testing.T) {
	ctx := context.Background()
	repo := setupJobRepo(t)

	pool := jobs.NewWorkerPool(repo, map[string]jobs.Handler{}, slog.Default(), 1)
	pool.Start(ctx)
	defer pool.Stop()

	if _, err := pool.Enqueue(ctx, "nobody.handles.this", map[string]string{}, 10, 3); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		pending, err := repo.CountPending(ctx)
		if err != nil {
			t.Fatalf("count pending: %v", err)
		}
		if pending == 0 {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("job without handler was not dead-lettered")
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func TestClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	repo := setupJobRepo(t)

	j := &jobs.Job{Type: "once", Payload: json.RawMessage(`{}`), MaxAttempts: 3, ScheduledAt: time.Now()}
	if _, err := repo.Enqueue(ctx, j); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	first, err := repo.FetchNext(ctx)
	if err != nil || first == nil {
		t.Fatalf("fetch: %v %v", first, err)
	}
	second, err := repo.FetchNext(ctx)
	if err != nil || second == nil {
		t.Fatalf("second fetch: %v %v", second, err)
	}

	// both workers fetched the same row; exactly one claim wins
	if ok, err := repo.Claim(ctx, first); err != nil || !ok {
		t.Fatalf("first claim = %v, %v, want win", ok, err)
	}
	if ok, err := repo.Claim(ctx, second); err != nil {
		t.Fatalf("second claim: %v", err)
	} else if ok {
		t.Fatalf("second claim should lose")
	}

	// a processing job is invisible to further fetches
	if again, err := repo.FetchNext(ctx); err != nil {
		t.Fatalf("fetch after claim: %v", err)
	} else if again != nil {
		t.Fatalf("claimed job should not be fetched again, got %+v", again)
	}
	if first.Status != jobs.StatusProcessing {
		t.Fatalf("claimed status = %q, want processing", first.Status)
	}
}

func TestBackoffDuration(t *testing.T) {
	if d := jobs.BackoffDuration(0); d != time.Second {
		t.Fatalf("attempt 0 = %v, want 1s", d)
	}
	if d := jobs.BackoffDuration(3); d != 8*time.Second {
		t.Fatalf("attempt 3 = %v, want 8s", d)
	}
	if d := jobs.BackoffDuration(30); d != 5*time.Minute {
		t.Fatalf("attempt 30 = %v, want cap of 5m", d)
	}
}
