package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/gorilla/mux"
	"github.com/patternscope/patternscope/internal/notify"
	"github.com/patternscope/patternscope/internal/workflow"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

// Enqueuer persists a background job. Satisfied by *jobs.WorkerPool.
type Enqueuer interface {
	Enqueue(ctx context.Context, typ string, payload any, priority int, maxAttempts int) (int64, error)
}

const (
	notifyPriority    = 100
	notifyMaxAttempts = 3
)

type SubmissionsHandler struct {
	userRepo    repository.UserRepo
	subRepo     repository.SubmissionRepo
	queue       Enqueuer
	deliverySLA time.Duration
	weeklyLimit int
}

func NewSubmissionsHandler(ur repository.UserRepo, sr repository.SubmissionRepo, queue Enqueuer, deliverySLA time.Duration, weeklyLimit int) *SubmissionsHandler {
	return &SubmissionsHandler{userRepo: ur, subRepo: sr, queue: queue, deliverySLA: deliverySLA, weeklyLimit: weeklyLimit}
}

type createSubmissionRequest struct {
	ProfileURLs []string `json:"profile_urls"`
}

func (h *SubmissionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	urls := workflow.CleanProfileURLs(req.ProfileURLs)
	if fe := workflow.ValidateProfileURLs(urls); !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
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

	// reset the weekly counter when a new calendar week (Monday UTC) began
	now := time.Now().UTC()
	weekStart := workflow.WeekStart(now).UnixMilli()
	weeklyCount := user.WeeklySubmissionCount
	if user.LastSubmissionReset < weekStart {
		if err := h.userRepo.ResetWeeklyCount(ctx, id, weekStart); err != nil {
			writeError(w, "error resetting weekly counter", http.StatusInternalServerError)
			return
		}
		weeklyCount = 0
	}
	if weeklyCount >= int64(h.weeklyLimit) {
		writeError(w, "weekly submission limit reached", http.StatusTooManyRequests)
		return
	}

	sub := models.Submission{
		UserID:             id,
		Status:             models.SubmissionPending,
		ProfileURLs:        urls,
		SubmittedAt:        now.UnixMilli(),
		ExpectedDeliveryAt: now.Add(h.deliverySLA).UnixMilli(),
	}
	subID, err := h.subRepo.CreateSubmission(ctx, &sub)
	if err != nil {
		writeError(w, "error creating submission", http.StatusInternalServerError)
		return
	}
	sub.ID = subID

	// notification failures never fail the request
	payload := notify.SubmissionPayload{
		SubmissionID:       subID,
		UserEmail:          user.Email,
		ProfileURLs:        urls,
		ExpectedDeliveryAt: sub.ExpectedDeliveryAt,
	}
	if _, err := h.queue.Enqueue(ctx, notify.TypeSubmission, payload, notifyPriority, notifyMaxAttempts); err != nil {
		logger.Warn("enqueue submission notification", slog.Any("err", err))
	}

	writeJSON(w, sub, http.StatusCreated)
}

func (h *SubmissionsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subs, err := h.subRepo.ListSubmissionsByUser(r.Context(), id)
	if err != nil {
		writeError(w, "error listing submissions", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	writeJSON(w, subs, http.StatusOK)
}

func (h *SubmissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	subID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid submission id", http.StatusBadRequest)
		return
	}

	sub, err := h.subRepo.GetSubmissionForUser(r.Context(), subID, id)
	if err != nil {
		writeError(w, "error loading submission", http.StatusInternalServerError)
		return
	}
	if sub == nil {
		writeError(w, "submission not found", http.StatusNotFound)
		return
	}

	writeJSON(w, sub, http.StatusOK)
}

// pathID parses a numeric mux path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}
