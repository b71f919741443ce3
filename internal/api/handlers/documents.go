package handlers

import (
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/mkataria09/sealdrop/internal/api/middleware"
	"github.com/mkataria09/sealdrop/internal/envelope"
	"github.com/mkataria09/sealdrop/internal/utils"
)

const maxUploadSize = 100 << 20 // 100 MB

type DocumentHandler struct {
	manager *envelope.Manager
}

func NewDocumentHandler(manager *envelope.Manager) *DocumentHandler {
	return &DocumentHandler{manager: manager}
}

// POST /api/v1/documents
// Multipart form: "file" holds the content, "filepath" optionally overrides
// the stored path, "recipients" (repeatable, comma-splittable) grants initial
// access.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Invalid file upload form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, "Failed to read file")
		return
	}

	path := r.FormValue("filepath")
	if path == "" {
		path = header.Filename
	}

	res, err := h.manager.Upload(r.Context(), middleware.UserID(r), path, content, splitIDs(r.Form["recipients"]))
	if err != nil {
		writeError(w, err)
		return
	}

	status, message := http.StatusCreated, "Document uploaded"
	if res.Existing {
		status, message = http.StatusOK, "Document already uploaded"
	}
	utils.Respond(w, status, message, map[string]any{
		"document":   res.Document,
		"accessList": res.AccessList,
		"existing":   res.Existing,
	})
}

// GET /api/v1/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.manager.ListForUser(r.Context(), middleware.UserID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "Documents fetched", docs)
}

// GET /api/v1/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	doc, err := h.manager.GetDocument(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	access, err := h.manager.AccessList(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "Document fetched", map[string]any{
		"document":   doc,
		"accessList": access,
	})
}

// GET /api/v1/documents/{id}/download
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	res, err := h.manager.Download(r.Context(), r.PathValue("id"), middleware.UserID(r), middleware.PrivateKey(r))
	if err != nil {
		writeError(w, err)
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{
		"filename": filepath.Base(res.Filepath),
	})
	w.Header().Set("Content-Disposition", disposition)
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Content)
}

// POST /api/v1/documents/{id}/share
func (h *DocumentHandler) Share(w http.ResponseWriter, r *http.Request) {
	userIDs, ok := decodeUserIDs(w, r)
	if !ok {
		return
	}

	res, err := h.manager.Share(r.Context(), r.PathValue("id"), middleware.UserID(r), middleware.PrivateKey(r), userIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "Document shared", map[string]any{
		"granted":       res.Granted,
		"alreadyShared": res.AlreadyShared,
		"accessList":    res.AccessList,
	})
}

// POST /api/v1/documents/{id}/revoke
func (h *DocumentHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	userIDs, ok := decodeUserIDs(w, r)
	if !ok {
		return
	}

	access, err := h.manager.Revoke(r.Context(), r.PathValue("id"), middleware.UserID(r), middleware.PrivateKey(r), userIDs)
	if err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "Access revoked", map[string]any{"accessList": access})
}

// DELETE /api/v1/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Delete(r.Context(), r.PathValue("id"), middleware.UserID(r)); err != nil {
		writeError(w, err)
		return
	}

	utils.Respond(w, http.StatusOK, "Document deleted", nil)
}

func decodeUserIDs(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	type Input struct {
		UserIDs []string `json:"userIds"`
	}

	var input Input
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil || len(input.UserIDs) == 0 {
		utils.RespondError(w, http.StatusBadRequest, "Invalid input")
		return nil, false
	}
	return input.UserIDs, true
}

func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
