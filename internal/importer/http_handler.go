package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/rfmelo/corretora/internal/auth"
)

// Handler exposes the import pipeline over HTTP. Preview and commit
// re-parse the uploaded file on every call, so repeating a call with
// the same file is idempotent up to the commit writes themselves.
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with multipart endpoints.
func NewHTTPHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the import routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/import/inspect", h.handleInspect)
	mux.HandleFunc("/api/import/preview", h.handlePreview)
	mux.HandleFunc("/api/import/commit", h.handleCommit)
	mux.HandleFunc("/api/import/jobs", h.handleListJobs)
	mux.HandleFunc("/api/import/types", h.handleListTypes)
}

func (h *Handler) handleListTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.service.EntityTypes())
}

func (h *Handler) handleInspect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entityType, fileName, payload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.service.Inspect(r.Context(), InspectRequest{
		EntityType: entityType,
		FileName:   fileName,
		Data:       bytes.NewReader(payload),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entityType, fileName, payload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	mapping, err := parseMappingField(r.FormValue("mapping"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := ParseSheet(fileName, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Preview(r.Context(), PreviewRequest{
		EntityType: entityType,
		Headers:    table.Headers,
		Rows:       table.Rows,
		Mapping:    mapping,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	entityType, fileName, payload, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	mapping, err := parseMappingField(r.FormValue("mapping"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	table, err := ParseSheet(fileName, payload)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Commit(r.Context(), CommitRequest{
		EntityType: entityType,
		Headers:    table.Headers,
		Rows:       table.Rows,
		Mapping:    mapping,
		FileName:   fileName,
		UserID:     userID,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, err := auth.RequireUserID(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	jobs, err := h.service.ListJobs(r.Context(), userID, limit, offset)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, jobs)
}

// readUpload pulls the multipart file and entity type out of the
// request. On failure it writes the error response itself.
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) (entityType, fileName string, payload []byte, ok bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return "", "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return "", "", nil, false
	}
	defer closeUpload(file)

	entityType = strings.TrimSpace(r.FormValue("entityType"))
	if entityType == "" {
		http.Error(w, "entityType is required", http.StatusBadRequest)
		return "", "", nil, false
	}

	payload, err = io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return "", "", nil, false
	}

	return entityType, header.Filename, payload, true
}

func closeUpload(file multipart.File) {
	_ = file.Close()
}

func parseMappingField(raw string) (ColumnMapping, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ColumnMapping{}, nil
	}
	var mapping ColumnMapping
	if err := json.Unmarshal([]byte(raw), &mapping); err != nil {
		return nil, fmt.Errorf("invalid mapping: %w", err)
	}
	return mapping, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
