package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/api/middleware"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// UpsertScoreRequest represents the test score submission body.
type UpsertScoreRequest struct {
	Score *int `json:"score" validate:"required,min=0,max=100"`
}

// ScoreListResponse represents a user's test scores.
type ScoreListResponse struct {
	Scores []models.TestScore `json:"scores"`
}

// UpsertScore records a test result for one letter. Only the best score is
// kept; submitting a lower score changes nothing.
func (h *Handler) UpsertScore(w http.ResponseWriter, r *http.Request) {
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

	var req UpsertScoreRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	score, err := h.db.UpsertScore(r.Context(), user.ID, letter, *req.Score)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, score)
}

// ListScores returns the caller's recorded test scores.
func (h *Handler) ListScores(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	scores, err := h.db.ListScores(r.Context(), user.ID)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, ScoreListResponse{Scores: scores})
}
