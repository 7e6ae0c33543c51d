package api

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"log/slog"

	"github.com/google/uuid"
)

// maxUploadSize bounds analysis document uploads (10 MiB).
const maxUploadSize = 10 << 20

var allowedDocumentTypes = map[string]bool{
	"md":  true,
	"pdf": true,
	"txt": true,
}

// DocumentsHandler stores uploaded analysis documents under uploadDir and
// serves them from /uploads/.
type DocumentsHandler struct {
	uploadDir string
}

func NewDocumentsHandler(uploadDir string) *DocumentsHandler {
	return &DocumentsHandler{uploadDir: uploadDir}
}

type uploadResponse struct {
	DocumentURL  string `json:"document_url"`
	DocumentType string `json:"document_type"`
}

func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		writeError(w, "document file is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(header.Filename)), ".")
	if !allowedDocumentTypes[ext] {
		writeError(w, "document must be a md, pdf or txt file", http.StatusBadRequest)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		writeError(w, "error preparing upload directory", http.StatusInternalServerError)
		return
	}

	name := fmt.Sprintf("%s.%s", uuid.NewString(), ext)
	path := filepath.Join(h.uploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		writeError(w, "error storing document", http.StatusInternalServerError)
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		// remove the partial file so a retry starts clean
		if rmErr := os.Remove(path); rmErr != nil {
			logger.Error("remove partial upload", slog.Any("err", rmErr))
		}
		writeError(w, "error storing document", http.StatusInternalServerError)
		return
	}

	writeJSON(w, uploadResponse{DocumentURL: "/uploads/" + name, DocumentType: ext}, http.StatusCreated)
}
