package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/api/middleware"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// SendMessageRequest represents the send message request body.
type SendMessageRequest struct {
	Body string `json:"body" validate:"required,max=4096"`
}

// ThreadResponse represents a conversation thread.
type ThreadResponse struct {
	Messages []models.Message `json:"messages"`
}

// ConversationsResponse represents the inbox listing.
type ConversationsResponse struct {
	Conversations []models.ConversationSummary `json:"conversations"`
}

// UnreadCountResponse represents the unread counter.
type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// MarkConversationReadResponse reports how many messages were updated.
type MarkConversationReadResponse struct {
	UpdatedCount int64 `json:"updated_count"`
}

// SendMessage handles sending a direct message to the user in the URL.
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sender := middleware.GetUserFromContext(r.Context())
	if sender == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	receiverID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid recipient ID format")
		return
	}

	var req SendMessageRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	msg, err := h.messages.Send(r.Context(), sender.ID, receiverID, req.Body)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusCreated, msg)
}

// GetThread returns every message between the caller and the user in the
// URL, oldest first. Fetching a thread does not mark anything read.
func (h *Handler) GetThread(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	otherID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	messages, err := h.messages.Thread(r.Context(), user.ID, otherID)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, ThreadResponse{Messages: messages})
}

// ListConversations returns the caller's inbox summaries.
func (h *Handler) ListConversations(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	conversations, err := h.messages.Conversations(r.Context(), user.ID)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, ConversationsResponse{Conversations: conversations})
}

// UnreadCount returns the caller's total unread message count.
func (h *Handler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	count, err := h.messages.UnreadCount(r.Context(), user.ID)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, UnreadCountResponse{UnreadCount: count})
}

// MarkMessageRead marks a single message as read. Only the receiver may.
func (h *Handler) MarkMessageRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	messageID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid message ID format")
		return
	}

	msg, err := h.messages.MarkRead(r.Context(), messageID, user.ID)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, msg)
}

// MarkConversationRead marks every unread message from the user in the URL
// to the caller as read.
func (h *Handler) MarkConversationRead(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	if user == nil {
		h.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	otherID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	updated, err := h.messages.MarkConversationRead(r.Context(), user.ID, otherID)
	if err != nil {
		h.DomainError(w, err)
		return
	}

	h.JSON(w, http.StatusOK, MarkConversationReadResponse{UpdatedCount: updated})
}
