package api

import (
	"net/http"

	"github.com/patternscope/patternscope/pkg/repository"
)

type AnalysisHandler struct {
	subRepo      repository.SubmissionRepo
	analysisRepo repository.AnalysisRepo
}

func NewAnalysisHandler(sr repository.SubmissionRepo, ar repository.AnalysisRepo) *AnalysisHandler {
	return &AnalysisHandler{subRepo: sr, analysisRepo: ar}
}

// Get returns the analysis for one of the caller's submissions. A submission
// that exists but has no analysis yet reads the same as an unknown one.
func (h *AnalysisHandler) Get(w http.ResponseWriter, r *http.Request) {
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
		writeError(w, "error loading analysis", http.StatusInternalServerError)
		return
	}
	if sub == nil || sub.Analysis == nil {
		writeError(w, "analysis not yet available", http.StatusNotFound)
		return
	}

	writeJSON(w, sub.Analysis, http.StatusOK)
}

type downloadResponse struct {
	DownloadURL  string `json:"download_url"`
	DocumentType string `json:"document_type"`
}

// Download returns the stored document location for one of the caller's
// analyses.
func (h *AnalysisHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	analysisID, err := pathID(r, "id")
	if err != nil {
		writeError(w, "invalid analysis id", http.StatusBadRequest)
		return
	}

	a, err := h.analysisRepo.GetAnalysisForUser(r.Context(), analysisID, id)
	if err != nil {
		writeError(w, "error loading analysis", http.StatusInternalServerError)
		return
	}
	if a == nil || a.DocumentURL == "" {
		writeError(w, "no document available", http.StatusNotFound)
		return
	}

	writeJSON(w, downloadResponse{DownloadURL: a.DocumentURL, DocumentType: a.DocumentType}, http.StatusOK)
}
