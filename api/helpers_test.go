package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"github.com/patternscope/patternscope/api"
	"github.com/patternscope/patternscope/internal/config"
	"github.com/patternscope/patternscope/internal/schema"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository/mock"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "testsecret"

const onboardingSchemaJSON = `{
  "type": "object",
  "required": ["niche", "goals", "experience_level"],
  "properties": {
    "niche": {"type": "string", "minLength": 2, "maxLength": 200},
    "goals": {"type": "string", "enum": ["grow_following", "drive_sales", "build_authority"]},
    "experience_level": {"type": "string", "enum": ["beginner", "intermediate", "advanced"]}
  },
  "additionalProperties": false
}`

// stubQueue records enqueued notification jobs.
type stubQueue struct {
	jobs []stubJob
	err  error
}

type stubJob struct {
	Type    string
	Payload any
}

func (q *stubQueue) Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error) {
	if q.err != nil {
		return 0, q.err
	}
	q.jobs = append(q.jobs, stubJob{Type: typ, Payload: payload})
	return int64(len(q.jobs)), nil
}

func newTestServer(t *testing.T, store *mock.Store) (*mux.Router, *stubQueue) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.CreateSchema(ctx, schema.OnboardingVersion, "onboarding", onboardingSchemaJSON); err != nil {
		t.Fatalf("seed schema: %v", err)
	}
	loader, err := schema.NewLoader(ctx, store)
	if err != nil {
		t.Fatalf("schema loader: %v", err)
	}

	cfg := &config.Config{
		JWTSecret:             testSecret,
		TokenDuration:         time.Hour,
		DeliverySLA:           8 * time.Hour,
		WeeklySubmissionLimit: 10,
		UploadDir:             t.TempDir(),
	}
	queue := &stubQueue{}
	repos := api.Repos{
		Users:       store,
		Submissions: store,
		Analyses:    store,
		Content:     store,
		Tweets:      store,
		Feedback:    store,
		Admin:       store,
		Prompts:     store,
	}
	return api.SetupRoutes(cfg, "test", "now", repos, loader, queue), queue
}

func tokenFor(t *testing.T, userID int64, isAdmin bool) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func doJSON(t *testing.T, router *mux.Router, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal response %q: %v", w.Body.String(), err)
	}
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func seedUser(t *testing.T, store *mock.Store, email string, admin bool) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	id, err := store.CreateUser(context.Background(), &models.User{Email: email, PasswordHash: string(hash), IsAdmin: admin})
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return id
}
