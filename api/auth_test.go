package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository/mock"
)

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"InvalidJSON", "not a json", http.StatusBadRequest},
		{"MissingEmail", map[string]string{"password": "longenough"}, http.StatusUnprocessableEntity},
		{"BadEmail", map[string]string{"email": "nope", "password": "longenough"}, http.StatusUnprocessableEntity},
		{"ShortPassword", map[string]string{"email": "a@example.com", "password": "short"}, http.StatusUnprocessableEntity},
		{"Success", map[string]string{"email": "a@example.com", "password": "longenough"}, http.StatusCreated},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mock.NewStore()
			router, _ := newTestServer(t, store)

			w := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}

			if tc.wantStatus == http.StatusCreated {
				var resp struct {
					Token string `json:"token"`
				}
				decodeBody(t, w, &resp)
				if resp.Token == "" {
					t.Fatal("empty token")
				}
				claims := jwt.MapClaims{}
				if _, err := jwt.ParseWithClaims(resp.Token, claims, func(token *jwt.Token) (any, error) {
					return []byte(testSecret), nil
				}); err != nil {
					t.Fatalf("invalid token: %v", err)
				}
				if _, ok := claims["user_id"]; !ok {
					t.Fatal("token missing user_id claim")
				}
				if admin, _ := claims["is_admin"].(bool); admin {
					t.Fatal("fresh registration must not be admin")
				}
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := mock.NewStore()
	router, _ := newTestServer(t, store)

	body := map[string]string{"email": "dup@example.com", "password": "longenough"}
	if w := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", body); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodPost, "/v1/auth/register", "", body); w.Code != http.StatusConflict {
		t.Fatalf("second register = %d, want 409", w.Code)
	}
}

func TestLogin(t *testing.T) {
	store := mock.NewStore()
	router, _ := newTestServer(t, store)
	seedUser(t, store, "alice@example.com", false)

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"Success", map[string]string{"email": "alice@example.com", "password": "password123"}, http.StatusOK},
		{"WrongPassword", map[string]string{"email": "alice@example.com", "password": "wrongwrong"}, http.StatusUnauthorized},
		{"UnknownEmail", map[string]string{"email": "bob@example.com", "password": "password123"}, http.StatusUnauthorized},
		{"MissingFields", map[string]string{"email": "alice@example.com"}, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/v1/auth/login", "", tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestMe(t *testing.T) {
	store := mock.NewStore()
	router, _ := newTestServer(t, store)
	id := seedUser(t, store, "alice@example.com", false)

	w := doJSON(t, router, http.MethodGet, "/v1/auth/me", tokenFor(t, id, false), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d (body %s)", w.Code, w.Body.String())
	}

	var user models.User
	decodeBody(t, w, &user)
	if user.Email != "alice@example.com" {
		t.Fatalf("email = %q", user.Email)
	}
	if w.Body.String() == "" || user.PasswordHash != "" {
		t.Fatal("password hash must not be serialized")
	}

	// no token
	if w := doJSON(t, router, http.MethodGet, "/v1/auth/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", w.Code)
	}
}

func TestOnboarding(t *testing.T) {
	valid := map[string]string{"niche": "fintech", "goals": "drive_sales", "experience_level": "beginner"}

	tests := []struct {
		name       string
		body       any
		wantStatus int
	}{
		{"Valid", valid, http.StatusOK},
		{"MissingNiche", map[string]string{"goals": "drive_sales", "experience_level": "beginner"}, http.StatusUnprocessableEntity},
		{"BadGoals", map[string]string{"niche": "fintech", "goals": "be_famous", "experience_level": "beginner"}, http.StatusUnprocessableEntity},
		{"NicheTooShort", map[string]string{"niche": "f", "goals": "drive_sales", "experience_level": "beginner"}, http.StatusUnprocessableEntity},
		{"ExtraField", map[string]string{"niche": "fintech", "goals": "drive_sales", "experience_level": "beginner", "extra": "x"}, http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mock.NewStore()
			router, _ := newTestServer(t, store)
			id := seedUser(t, store, "alice@example.com", false)

			w := doJSON(t, router, http.MethodPut, "/v1/auth/onboarding", tokenFor(t, id, false), tc.body)
			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
		})
	}
}

func TestOnboardingSetOnce(t *testing.T) {
	store := mock.NewStore()
	router, _ := newTestServer(t, store)
	id := seedUser(t, store, "alice@example.com", false)
	token := tokenFor(t, id, false)

	body := map[string]string{"niche": "fintech", "goals": "drive_sales", "experience_level": "beginner"}
	if w := doJSON(t, router, http.MethodPut, "/v1/auth/onboarding", token, body); w.Code != http.StatusOK {
		t.Fatalf("first onboarding: %d (body %s)", w.Code, w.Body.String())
	}
	if w := doJSON(t, router, http.MethodPut, "/v1/auth/onboarding", token, body); w.Code != http.StatusConflict {
		t.Fatalf("second onboarding = %d, want 409", w.Code)
	}

	user, err := store.GetUserByID(context.Background(), id)
	if err != nil || user == nil || user.Onboarding == nil {
		t.Fatalf("onboarding not persisted: %v %+v", err, user)
	}
	if user.Onboarding.Niche != "fintech" {
		t.Fatalf("niche = %q", user.Onboarding.Niche)
	}
}
