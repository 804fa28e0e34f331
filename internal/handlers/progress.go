package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/api/middleware"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// hijaiyahLetters is the set of letter identifiers the learning screens use.
var hijaiyahLetters = map[string]bool{
	"alif": true, "ba": true, "ta": true, "tsa": true, "jim": true,
	"ha": true, "kha": true, "dal": true, "dzal": true, "ra": true,
	"zay": true, "sin": true, "syin": true, "shad": true, "dhad": true,
	"tha": true, "zha": true, "ain": true, "ghain": true, "fa": true,
	"qaf": true, "kaf": true, "lam": true, "mim": true, "nun": true,
	"waw": true, "haa": true, "ya": true,
}

// UpsertProgressRequest represents the progress update body.
type UpsertProgressRequest struct {
	Status string `json:"status" validate:"required,oneof=belum belajar selesai"`
}

// ProgressListResponse represents a user's per-letter progress.
type ProgressListResponse struct {
	Progress []models.LetterProgress `json:"progress"`
}

// UpsertProgress records the caller's learning status for one letter.
// Writing the same letter again overwrites the previous status.
func (h *Handler) UpsertProgress(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	letter := strings.ToLower(chi.URLParam(r, "letter"))
	if !hijaiyahLetters[letter] {
		h.Error(w, http.StatusBadRequest, "unknown letter")
		return
	}

	var req UpsertProgressRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	progress, err := h.db.UpsertProgress(r.Context(), user.ID, letter, req.Status)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, progress)
}

// ListProgress returns the caller's progress for every letter touched so far.
func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	progress, err := h.db.ListProgress(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, ProgressListResponse{Progress: progress})
}
