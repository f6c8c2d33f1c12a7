package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dagmawib/receipt-verifier/internal/verify"
)

// maxImageSize bounds uploaded receipt photos; phone cameras produce
// large files.
const maxImageSize = int64(50 << 20)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	setCORSHeaders(w)
	writeJSON(w, status, map[string]string{"error": message})
}

// verifyRequest is the routing collaborator's input contract.
type verifyRequest struct {
	Institution   string `json:"institution"`
	Reference     string `json:"reference"`
	AccountSuffix string `json:"account_suffix,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// handleVerify verifies a transaction from caller-supplied identifiers.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request, key *APIKey) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	institution, err := verify.ParseInstitution(req.Institution)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result := s.service.Verify(r.Context(), key.ID, verify.Reference{
		Institution:   institution,
		Value:         req.Reference,
		AccountSuffix: req.AccountSuffix,
		Phone:         req.Phone,
	})

	writeJSON(w, http.StatusOK, result)
}

// handleVerifyImage accepts a receipt photo, classifies it, and
// verifies the identified transaction.
func (s *Server) handleVerifyImage(w http.ResponseWriter, r *http.Request, key *APIKey) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		msg := "Error parsing form"
		if err.Error() == "http: request body too large" {
			msg = "File is too large. Maximum size is 50MB."
		}
		writeJSONError(w, msg, http.StatusBadRequest)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "No file provided", http.StatusBadRequest)
		return
	}
	defer f.Close()

	if header.Size > maxImageSize {
		writeJSONError(w, "File is too large. Maximum size is 50MB.", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeJSONError(w, "Error reading file", http.StatusInternalServerError)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeFromName(header.Filename)
	}

	result := s.service.VerifyImage(r.Context(), key.ID, data, strings.ToLower(strings.TrimSpace(contentType)))
	writeJSON(w, http.StatusOK, result)
}

func contentTypeFromName(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}
	return "application/octet-stream"
}

// handleCreateKey issues a new API key.
func (s *Server) handleCreateKey(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	key, err := s.service.CreateKey(req.Name)
	if err != nil {
		slog.Error("Error creating api key", "error", err)
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusCreated, key)
}

// handleListKeys returns every issued key.
func (s *Server) handleListKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := s.service.ListKeys()
	if err != nil {
		slog.Error("Error listing api keys", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, keys)
}

// handleRevokeKey deletes a key.
func (s *Server) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, "Key ID required", http.StatusBadRequest)
		return
	}
	if err := s.service.RevokeKey(id); err != nil {
		writeJSONError(w, "Key not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStats serves the aggregated usage view.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.service.Stats()
	if err != nil {
		slog.Error("Error aggregating stats", "error", err)
		writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
