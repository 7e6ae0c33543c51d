package api_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/patternscope/patternscope/pkg/repository/mock"
)

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestDocumentUpload(t *testing.T) {
	tests := []struct {
		name       string
		field      string
		filename   string
		wantStatus int
	}{
		{"Markdown", "document", "analysis.md", http.StatusCreated},
		{"PDF", "document", "analysis.pdf", http.StatusCreated},
		{"Text", "document", "notes.TXT", http.StatusCreated},
		{"BadExtension", "document", "malware.exe", http.StatusBadRequest},
		{"NoExtension", "document", "analysis", http.StatusBadRequest},
		{"WrongField", "file", "analysis.md", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := mock.NewStore()
			router, _ := newTestServer(t, store)
			admin := seedUser(t, store, "admin@example.com", true)

			body, contentType := multipartBody(t, tc.field, tc.filename, "# analysis")
			req := httptest.NewRequest(http.MethodPost, "/v1/admin/documents", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+tokenFor(t, admin, true))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tc.wantStatus, w.Body.String())
			}
			if tc.wantStatus != http.StatusCreated {
				return
			}

			var resp struct {
				DocumentURL  string `json:"document_url"`
				DocumentType string `json:"document_type"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !strings.HasPrefix(resp.DocumentURL, "/uploads/") {
				t.Fatalf("document_url = %q", resp.DocumentURL)
			}
			wantExt := strings.ToLower(strings.TrimPrefix(tc.filename[strings.LastIndex(tc.filename, "."):], "."))
			if resp.DocumentType != wantExt {
				t.Fatalf("document_type = %q, want %q", resp.DocumentType, wantExt)
			}

			// stored file is served back
			get := httptest.NewRequest(http.MethodGet, resp.DocumentURL, nil)
			gw := httptest.NewRecorder()
			router.ServeHTTP(gw, get)
			if gw.Code != http.StatusOK {
				t.Fatalf("fetch uploaded doc = %d", gw.Code)
			}
			if gw.Body.String() != "# analysis" {
				t.Fatalf("served content = %q", gw.Body.String())
			}
		})
	}
}

func TestDocumentUploadRequiresAdmin(t *testing.T) {
	store := mock.NewStore()
	router, _ := newTestServer(t, store)
	user := seedUser(t, store, "alice@example.com", false)

	body, contentType := multipartBody(t, "document", "analysis.md", "# analysis")
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, user, false))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}
