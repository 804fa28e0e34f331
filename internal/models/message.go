package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a directed text message between two users.
// The numeric ID is assigned by the database sequence and doubles as the
// tie-break when two messages share a created_at timestamp.
type Message struct {
	ID         int64     `json:"id"`
	SenderID   uuid.UUID `json:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id"`
	Body       string    `json:"body"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// ConversationSummary is one inbox row: the correspondent plus a preview of
// the most recent message exchanged with them. Conversations are derived from
// messages, never stored.
type ConversationSummary struct {
	PartnerID     uuid.UUID `json:"partner_id"`
	PartnerName   string    `json:"partner_name"`
	PartnerEmail  string    `json:"partner_email"`
	PartnerRole   string    `json:"partner_role"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
}
