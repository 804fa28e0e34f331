package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/auth"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/messaging"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/store"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db            store.DataStore
	redis         *store.RedisStore
	messages      *messaging.Service
	tokens        *auth.TokenManager
	validate      *validator.Validate
	secureCookies bool
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(db store.DataStore, redis *store.RedisStore, messages *messaging.Service, tokens *auth.TokenManager, secureCookies bool) *Handler {
	return &Handler{
		db:            db,
		redis:         redis,
		messages:      messages,
		tokens:        tokens,
		validate:      validator.New(),
		secureCookies: secureCookies,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// DomainError maps messaging domain errors onto HTTP status codes.
// Anything unrecognized is a storage failure and becomes a 500.
func (h *Handler) DomainError(w http.ResponseWriter, err error) {
	var (
		validationErr *messaging.ValidationError
		notFoundErr   *messaging.NotFoundError
		forbiddenErr  *messaging.ForbiddenError
	)
	switch {
	case errors.As(err, &validationErr):
		h.Error(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		h.Error(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &forbiddenErr):
		h.Error(w, http.StatusForbidden, forbiddenErr.Error())
	default:
		h.Error(w, http.StatusInternalServerError, "database error")
	}
}

// decodeAndValidate decodes a JSON body into dst and runs struct validation.
// Returns false after writing the error response when the payload is bad.
func (h *Handler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}
