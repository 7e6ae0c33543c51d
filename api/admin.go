package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/patternscope/patternscope/internal/workflow"
	"github.com/patternscope/patternscope/pkg/models"
	"github.com/patternscope/patternscope/pkg/repository"
)

type AdminHandler struct {
	adminRepo    repository.AdminRepo
	subRepo      repository.SubmissionRepo
	contentRepo  repository.ContentRepo
	analysisRepo repository.AnalysisRepo
	tweetRepo    repository.TweetRepo
	promptRepo   repository.PromptRepo
}

func NewAdminHandler(
	adminRepo repository.AdminRepo,
	subRepo repository.SubmissionRepo,
	contentRepo repository.ContentRepo,
	analysisRepo repository.AnalysisRepo,
	tweetRepo repository.TweetRepo,
	promptRepo repository.PromptRepo,
) *AdminHandler {
	return &AdminHandler{
		adminRepo:    adminRepo,
		subRepo:      subRepo,
		contentRepo:  contentRepo,
		analysisRepo: analysisRepo,
		tweetRepo:    tweetRepo,
		promptRepo:   promptRepo,
	}
}

// ListUsers returns the admin worklist; users with pending work sort first.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminRepo.ListUserSummaries(r.Context())
	if err != nil {
		writeError(w, "error listing users", http.StatusInternalServerError)
		return
	}
	if users == nil {
		users = []models.UserSummary{}
	}

	writeJSON(w, users, http.StatusOK)
}

func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid user id", http.StatusBadRequest)
		return
	}

	detail, err := h.adminRepo.GetUserDetail(r.Context(), id)
	if err != nil {
		writeError(w, "error loading user", http.StatusInternalServerError)
		return
	}
	if detail == nil {
		writeError(w, "user not found", http.StatusNotFound)
		return
	}

	writeJSON(w, detail, http.StatusOK)
}

func (h *AdminHandler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subRepo.ListAllSubmissions(r.Context())
	if err != nil {
		writeError(w, "error listing submissions", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []models.Submission{}
	}

	writeJSON(w, subs, http.StatusOK)
}

func (h *AdminHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	ideas, err := h.contentRepo.ListAllIdeas(r.Context())
	if err != nil {
		writeError(w, "error listing content ideas", http.StatusInternalServerError)
		return
	}
	if ideas == nil {
		ideas = []models.ContentIdea{}
	}

	writeJSON(w, ideas, http.StatusOK)
}

type createAnalysisRequest struct {
	SubmissionID int64                    `json:"submission_id"`
	KeyPatterns  []workflow.RawKeyPattern `json:"key_patterns"`
	DocumentURL  string                   `json:"document_url"`
	DocumentType string                   `json:"document_type"`
}

// CreateAnalysis attaches an analysis to a submission and completes it. Key
// patterns missing a name or explanation are dropped; at least one must
// survive.
func (h *AdminHandler) CreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var req createAnalysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	patterns := workflow.FilterKeyPatterns(req.KeyPatterns)
	if len(patterns) == 0 {
		fe := workflow.FieldErrors{}
		fe.Add("key_patterns", "at least one pattern with a name and an explanation is required")
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	a := models.Analysis{
		SubmissionID: req.SubmissionID,
		KeyPatterns:  patterns,
		DocumentURL:  req.DocumentURL,
		DocumentType: req.DocumentType,
		CompletedAt:  time.Now().UTC().UnixMilli(),
	}
	id, err := h.analysisRepo.AttachAnalysis(r.Context(), &a)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, "submission not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrDuplicate):
			writeError(w, "submission already has an analysis", http.StatusConflict)
		case errors.Is(err, repository.ErrInvalidState):
			writeError(w, "submission is not awaiting analysis", http.StatusConflict)
		default:
			writeError(w, "error creating analysis", http.StatusInternalServerError)
		}
		return
	}
	a.ID = id

	writeJSON(w, a, http.StatusCreated)
}

type tweetRequest struct {
	IdeaID      int64  `json:"idea_id"`
	TweetText   string `json:"tweet_text"`
	PatternUsed string `json:"pattern_used"`
	Reasoning   string `json:"reasoning"`
}

func (h *AdminHandler) CreateTweet(w http.ResponseWriter, r *http.Request) {
	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	text, fe := workflow.ValidateTweetText(req.TweetText)
	if !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	t := models.Tweet{
		IdeaID:      req.IdeaID,
		TweetText:   text,
		PatternUsed: req.PatternUsed,
		Reasoning:   req.Reasoning,
	}
	id, err := h.tweetRepo.CreateTweet(r.Context(), &t)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, "content idea not found", http.StatusNotFound)
			return
		}
		writeError(w, "error creating tweet", http.StatusInternalServerError)
		return
	}
	t.ID = id

	writeJSON(w, t, http.StatusCreated)
}

// tweetUpdateRequest uses pointers so an omitted field keeps the stored
// value while an explicit empty string clears it.
type tweetUpdateRequest struct {
	TweetText   string  `json:"tweet_text"`
	PatternUsed *string `json:"pattern_used"`
	Reasoning   *string `json:"reasoning"`
}

func (h *AdminHandler) UpdateTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid tweet id", http.StatusBadRequest)
		return
	}

	var req tweetUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}

	text, fe := workflow.ValidateTweetText(req.TweetText)
	if !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	ctx := r.Context()
	existing, err := h.tweetRepo.GetTweet(ctx, id)
	if err != nil {
		writeError(w, "error loading tweet", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "tweet not found", http.StatusNotFound)
		return
	}

	existing.TweetText = text
	if req.PatternUsed != nil {
		existing.PatternUsed = *req.PatternUsed
	}
	if req.Reasoning != nil {
		existing.Reasoning = *req.Reasoning
	}
	if err := h.tweetRepo.UpdateTweet(ctx, existing); err != nil {
		writeError(w, "error updating tweet", http.StatusInternalServerError)
		return
	}

	writeJSON(w, existing, http.StatusOK)
}

func (h *AdminHandler) DeleteTweet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid tweet id", http.StatusBadRequest)
		return
	}

	if err := h.tweetRepo.DeleteTweet(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, "tweet not found", http.StatusNotFound)
			return
		}
		writeError(w, "error deleting tweet", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type promptRequest struct {
	Name         string `json:"name"`
	Category     string `json:"category"`
	TemplateText string `json:"template_text"`
}

func validPromptCategory(c string) bool {
	switch c {
	case "analysis", "tweet_generation", "pattern_extraction":
		return true
	}
	return false
}

func (h *AdminHandler) validatePrompt(req *promptRequest) workflow.FieldErrors {
	fe := workflow.FieldErrors{}
	if req.Name == "" {
		fe.Add("name", "name is required")
	}
	if !validPromptCategory(req.Category) {
		fe.Add("category", "category must be one of analysis, tweet_generation, pattern_extraction")
	}
	if req.TemplateText == "" {
		fe.Add("template_text", "template_text is required")
	}
	return fe
}

func (h *AdminHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if fe := h.validatePrompt(&req); !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	p := models.PromptTemplate{Name: req.Name, Category: req.Category, TemplateText: req.TemplateText}
	id, err := h.promptRepo.CreatePrompt(r.Context(), &p)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			writeError(w, "prompt template already exists", http.StatusConflict)
			return
		}
		writeError(w, "error creating prompt template", http.StatusInternalServerError)
		return
	}
	p.ID = id

	writeJSON(w, p, http.StatusCreated)
}

func (h *AdminHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	prompts, err := h.promptRepo.ListPrompts(r.Context(), category)
	if err != nil {
		writeError(w, "error listing prompt templates", http.StatusInternalServerError)
		return
	}
	if prompts == nil {
		prompts = []models.PromptTemplate{}
	}

	writeJSON(w, prompts, http.StatusOK)
}

func (h *AdminHandler) UpdatePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid prompt id", http.StatusBadRequest)
		return
	}

	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request", http.StatusBadRequest)
		return
	}
	if fe := h.validatePrompt(&req); !fe.Empty() {
		writeFieldErrors(w, "validation failed", fe)
		return
	}

	ctx := r.Context()
	existing, err := h.promptRepo.GetPrompt(ctx, id)
	if err != nil {
		writeError(w, "error loading prompt template", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		writeError(w, "prompt template not found", http.StatusNotFound)
		return
	}

	existing.Name = req.Name
	existing.Category = req.Category
	existing.TemplateText = req.TemplateText
	if err := h.promptRepo.UpdatePrompt(ctx, existing); err != nil {
		writeError(w, "error updating prompt template", http.StatusInternalServerError)
		return
	}

	writeJSON(w, existing, http.StatusOK)
}

func (h *AdminHandler) DeletePrompt(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid prompt id", http.StatusBadRequest)
		return
	}

	if err := h.promptRepo.DeletePrompt(r.Context(), id); err != nil {
		writeError(w, "error deleting prompt template", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
