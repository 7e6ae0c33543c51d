package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/patternscope/patternscope/internal/schema"
	"github.com/patternscope/patternscope/internal/workflow"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// bcrypt only hashes the first 72 bytes; longer passwords are truncated
// instead of rejected, matching the previous backend.
const bcryptMaxLen = 72

type AuthHandler struct {
	userRepo      repository.UserRepo
	schemas       *schema.Loader
	jwtSecret     string
	tokenDuration time.Duration
}

func NewAuthHandler(ur repository.UserRepo, schemas *schema.Loader, jwtSecret string, tokenDuration time.Duration) *AuthHandler {
	return &AuthHandler{userRepo: ur, schemas: schemas, jwtSecret: jwtSecret, tokenDuration: tokenDuration}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	req.Email = strings.TrimSpace(req.Email)
	fe := workflow.FieldErrors{}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		fe.Add("email", "a valid email address is required")
	}
	if len(req.Password) < minPasswordLen {
		fe.Add("password", "password must be at least 8 characters")
	}
	if !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	hash, err := bcrypt.GenerateFromPassword(truncatePassword(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, "error hashing password", http.StatusInternalServerError)
		return
	}

	ctx := r.Context()
	user := models.User{Email: req.Email, PasswordHash: string(hash)}
	id, err := h.userRepo.CreateUser(ctx, &user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, "email already registered", http.StatusConflict)
			return
		}
		writeError(w, "error creating user", http.StatusInternalServerError)
		return
	}

	tokenStr, err := h.issueToken(id, false)
	if err != nil {
		writeError(w, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, "missing fields", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetUserByEmail(r.Context(), req.Email)
	if err != nil || user == nil {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), truncatePassword(req.Password)) != nil {
		writeError(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	tokenStr, err := h.issueToken(user.ID, user.IsAdmin)
	if err != nil {
		writeError(w, "error signing token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, authResponse{Token: tokenStr}, http.StatusOK)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.userRepo.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(w, "error loading user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, user, http.StatusOK)
}

// SetOnboarding stores the one-time onboarding profile after validating it
// against the versioned JSON schema.
func (h *AuthHandler) SetOnboarding(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ctx := r.Context()
	user, err := h.userRepo.GetUserByID(ctx, id)
	if err != nil {
		writeError(w, "error loading user", http.StatusInternalServerError)
		return
	}
	if user == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}
	if user.Onboarding != nil {
		writeError(w, "onboarding already completed", http.StatusConflict)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	verrs, err := h.schemas.Validate(ctx, schema.OnboardingVersion, raw)
	if err != nil {
		writeError(w, "error validating onboarding data", http.StatusInternalServerError)
		return
	}
	if len(verrs) > 0 {
		fe := workflow.FieldErrors{}
		for _, ve := range verrs {
			field := strings.TrimPrefix(ve.PropertyPath, "/")
			if field == "" {
				field = "onboarding"
			}
			fe.Add(field, ve.Message)
		}
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	var data models.Onboarding
	if err := json.Unmarshal(raw, &data); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if err := h.userRepo.SetOnboarding(ctx, id, &data); err != nil {
		writeError(w, "error saving onboarding data", http.StatusInternalServerError)
		return
	}

	writeJSON(w, data, http.StatusOK)
}

func (h *AuthHandler) issueToken(userID int64, isAdmin bool) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}

func truncatePassword(pw string) []byte {
	b := []byte(pw)
	if len(b) > bcryptMaxLen {
		b = b[:bcryptMaxLen]
	}
	return b
}
