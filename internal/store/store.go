package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// DataStore defines the interface for persistent storage.
// Both PostgresStore and SQLiteStore implement this interface.
// Lookup methods return (nil, nil) when the row does not exist.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, name, email, passwordHash, role string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Message operations
	CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, body string) (*models.Message, error)
	GetMessageByID(ctx context.Context, id int64) (*models.Message, error)
	ListThread(ctx context.Context, userA, userB uuid.UUID) ([]models.Message, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error)
	MarkMessageRead(ctx context.Context, id int64) (*models.Message, error)
	MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error)
	CountMessages(ctx context.Context) (int64, error)

	// Room operations
	CreateRoom(ctx context.Context, name, joinCode string, teacherID uuid.UUID) (*models.Room, error)
	GetRoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetRoomByJoinCode(ctx context.Context, code string) (*models.Room, error)
	AddRoomMember(ctx context.Context, roomID, userID uuid.UUID) error
	IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error)
	ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.Room, error)
	ListRoomMembers(ctx context.Context, roomID uuid.UUID) ([]models.User, error)
	CountRooms(ctx context.Context) (int64, error)

	// Progress and score operations
	UpsertProgress(ctx context.Context, userID uuid.UUID, letter, status string) (*models.LetterProgress, error)
	ListProgress(ctx context.Context, userID uuid.UUID) ([]models.LetterProgress, error)
	UpsertScore(ctx context.Context, userID uuid.UUID, letter string, score int) (*models.TestScore, error)
	ListScores(ctx context.Context, userID uuid.UUID) ([]models.TestScore, error)
}
