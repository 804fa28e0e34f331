package messaging

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/metrics"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/store"
)

// MaxBodyBytes caps a message body.
const MaxBodyBytes = 4096

// Store is the persistence the service needs. *store.PostgresStore and
// *store.SQLiteStore satisfy it.
type Store interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, body string) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListThread(ctx context.Context, userA, userB uuid.UUID) ([]models.Message, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error)
	MarkMessageRead(ctx context.Context, id int64) (*models.Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
}

// Service wires the message store, the conversation aggregation queries and
// the read-state transition behind one API. All state lives in the store;
// every method is a request-scoped call with no coordination between them.
type Service struct {
	store  Store
	cache  *store.RedisStore // optional, may be nil
	logger zerolog.Logger
}

// NewService creates a messaging service. cache may be nil; unread counts
// are then always recounted from the store.
func NewService(s Store, cache *store.RedisStore, logger zerolog.Logger) *Service {
	return &Service{store: s, cache: cache, logger: logger}
}

// Send validates and stores a new message. The message starts unread.
func (s *Service) Send(ctx context.Context, senderID, receiverID uuid.UUID, body string) (*models.Message, error) {
	if strings.TrimSpace(body) == "" {
		return nil, &ValidationError{Reason: "body is required"}
	}
	if len(body) > MaxBodyBytes {
		return nil, &ValidationError{Reason: "body too long"}
	}
	if receiverID == uuid.Nil {
		return nil, &ValidationError{Reason: "recipient is required"}
	}
	if senderID == receiverID {
		return nil, &ValidationError{Reason: "cannot send a message to yourself"}
	}

	receiver, err := s.store.GetUserByID(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, &NotFoundError{Resource: "recipient"}
	}

	msg, err := s.store.CreateMessage(ctx, senderID, receiverID, body)
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()
	s.invalidateUnread(ctx, receiverID)

	s.logger.Debug().
		Int64("message_id", msg.ID).
		Str("sender", senderID.String()).
		Str("receiver", receiverID.String()).
		Msg("message sent")

	return msg, nil
}

// Thread returns every message between the two users, oldest first.
// Retrieval never changes read state; marking read is a separate call.
func (s *Service) Thread(ctx context.Context, userID, otherID uuid.UUID) ([]models.Message, error) {
	return s.store.ListThread(ctx, userID, otherID)
}

// Conversations returns the user's inbox: one summary per correspondent,
// newest conversation first.
func (s *Service) Conversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	return s.store.ListConversations(ctx, userID)
}

// UnreadCount returns how many messages addressed to the user are unread.
// Served from the short-lived cache when available.
func (s *Service) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	if s.cache != nil {
		if count, ok := s.cache.GetCachedUnread(ctx, userID); ok {
			return count, nil
		}
	}

	count, err := s.store.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		s.cache.SetCachedUnread(ctx, userID, count)
	}
	return count, nil
}

// MarkRead transitions a single message to read. Only the receiver may do
// this. Marking an already-read message is a no-op success; the transition
// is one-way, a read message never becomes unread again.
func (s *Service) MarkRead(ctx context.Context, messageID int64, callerID uuid.UUID) (*models.Message, error) {
	msg, err := s.store.GetMessageByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, &NotFoundError{Resource: "message"}
	}
	if msg.ReceiverID != callerID {
		return nil, &ForbiddenError{Reason: "only the receiver may mark a message read"}
	}
	if msg.IsRead {
		return msg, nil
	}

	updated, err := s.store.MarkMessageRead(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Resource: "message"}
	}

	metrics.MessagesRead.Inc()
	s.invalidateUnread(ctx, callerID)
	return updated, nil
}

// MarkConversationRead marks all unread messages from otherID to receiverID
// as read and returns the number updated (zero is fine). The handler
// boundary guarantees receiverID is the authenticated caller. Racing calls
// for the same pair converge: the bulk update only touches unread rows.
func (s *Service) MarkConversationRead(ctx context.Context, receiverID, otherID uuid.UUID) (int64, error) {
	updated, err := s.store.MarkConversationRead(ctx, receiverID, otherID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		metrics.MessagesRead.Add(float64(updated))
		s.invalidateUnread(ctx, receiverID)
	}
	return updated, nil
}

func (s *Service) invalidateUnread(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		s.cache.InvalidateUnread(ctx, userID)
	}
}
