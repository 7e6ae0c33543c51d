package api

import (
	"encoding/json"
	"net/http"

	"log/slog"

	"github.com/patternscope/patternscope/internal/notify"
	"github.com/patternscope/patternscope/internal/workflow"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

type ContentHandler struct {
	userRepo     repository.UserRepo
	contentRepo  repository.ContentRepo
	tweetRepo    repository.TweetRepo
	feedbackRepo repository.FeedbackRepo
	queue        Enqueuer
}

func NewContentHandler(ur repository.UserRepo, cr repository.ContentRepo, tr repository.TweetRepo, fr repository.FeedbackRepo, queue Enqueuer) *ContentHandler {
	return &ContentHandler{userRepo: ur, contentRepo: cr, tweetRepo: tr, feedbackRepo: fr, queue: queue}
}

type createIdeaRequest struct {
	RawContent string `json:"raw_content"`
}

func (h *ContentHandler) CreateIdea(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req createIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	content, fe := workflow.ValidateRawContent(req.RawContent)
	if !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	ctx := r.Context()
	idea := models.ContentIdea{UserID: id, RawContent: content, Status: models.IdeaPending}
	ideaID, err := h.contentRepo.CreateIdea(ctx, &idea)
	if err != nil {
		writeError(w, "error creating content idea", http.StatusInternalServerError)
		return
	}
	idea.ID = ideaID

	h.notifyIdea(r, ideaID, id, content)

	writeJSON(w, idea, http.StatusCreated)
}

func (h *ContentHandler) notifyIdea(r *http.Request, ideaID, ownerID int64, content string) {
	ctx := r.Context()
	email := ""
	if user, err := h.userRepo.GetUserByID(ctx, ownerID); err == nil && user != nil {
		email = user.Email
	}
	payload := notify.ContentIdeaPayload{IdeaID: ideaID, UserEmail: email, RawContent: content}
	if _, err := h.queue.Enqueue(ctx, notify.TypeContentIdea, payload, notifyPriority, notifyMaxAttempts); err != nil {
		logger.Warn("enqueue content idea notification", slog.Any("err", err))
	}
}

func (h *ContentHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ideas, err := h.contentRepo.ListIdeasByUser(r.Context(), id)
	if err != nil {
		writeError(w, "error listing content ideas", http.StatusInternalServerError)
		return
	}
	if ideas == nil {
		ideas = []models.ContentIdea{}
	}

	writeJSON(w, ideas, http.StatusOK)
}

// ListTweets returns the tweets for one of the caller's ideas, newest first,
// with feedback history attached.
func (h *ContentHandler) ListTweets(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ideaID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid idea id", http.StatusBadRequest)
		return
	}

	ctx := r.Context()
	idea, err := h.contentRepo.GetIdeaForUser(ctx, ideaID, id)
	if err != nil {
		writeError(w, "error loading content idea", http.StatusInternalServerError)
		return
	}
	if idea == nil {
		writeError(w, "content idea not found", http.StatusNotFound)
		return
	}

	tweets, err := h.tweetRepo.ListTweetsByIdea(ctx, ideaID)
	if err != nil {
		writeError(w, "error listing tweets", http.StatusInternalServerError)
		return
	}
	if tweets == nil {
		tweets = []models.Tweet{}
	}

	writeJSON(w, tweets, http.StatusOK)
}

type feedbackRequest struct {
	FeedbackType  string `json:"feedback_type"`
	FeedbackNotes string `json:"feedback_notes"`
}

// PostFeedback appends a feedback event to a tweet owned by the caller.
// Tweets under someone else's idea are reported as not found.
func (h *ContentHandler) PostFeedback(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	tweetID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid tweet id", http.StatusBadRequest)
		return
	}

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	if !workflow.ValidFeedbackType(req.FeedbackType) {
		fe := workflow.FieldErrors{}
		fe.Add("feedback_type", "feedback_type must be one of use_this, tweak, regenerate")
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	ctx := r.Context()
	tweet, err := h.tweetRepo.GetTweetForOwner(ctx, tweetID, id)
	if err != nil {
		writeError(w, "error loading tweet", http.StatusInternalServerError)
		return
	}
	if tweet == nil {
		writeError(w, "tweet not found", http.StatusNotFound)
		return
	}

	event := models.FeedbackEvent{
		TweetID:       tweetID,
		FeedbackType:  req.FeedbackType,
		FeedbackNotes: req.FeedbackNotes,
	}
	eventID, err := h.feedbackRepo.AppendFeedback(ctx, &event)
	if err != nil {
		writeError(w, "error saving feedback", http.StatusInternalServerError)
		return
	}
	event.ID = eventID

	email := ""
	if user, uerr := h.userRepo.GetUserByID(ctx, id); uerr == nil && user != nil {
		email = user.Email
	}
	payload := notify.FeedbackPayload{
		TweetID:       tweetID,
		UserEmail:     email,
		FeedbackType:  req.FeedbackType,
		FeedbackNotes: req.FeedbackNotes,
		TweetText:     tweet.TweetText,
	}
	if _, err := h.queue.Enqueue(ctx, notify.TypeFeedback, payload, notifyPriority, notifyMaxAttempts); err != nil {
		logger.Warn("enqueue feedback notification", slog.Any("err", err))
	}

	writeJSON(w, event, http.StatusCreated)
}
