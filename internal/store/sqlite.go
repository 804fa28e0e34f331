package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// SQLiteStore handles SQLite database operations. It implements the same
// DataStore interface as PostgresStore and is used for local development
// and tests.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/signquran.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/signquran.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('guru', 'murid')),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sender_id TEXT NOT NULL REFERENCES users(id),
		receiver_id TEXT NOT NULL REFERENCES users(id),
		body TEXT NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		CHECK (sender_id <> receiver_id)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_pair
		ON messages (sender_id, receiver_id, created_at);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		join_code TEXT UNIQUE NOT NULL,
		teacher_id TEXT NOT NULL REFERENCES users(id),
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS room_members (
		room_id TEXT NOT NULL REFERENCES rooms(id),
		user_id TEXT NOT NULL REFERENCES users(id),
		joined_at DATETIME NOT NULL,
		PRIMARY KEY (room_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS letter_progress (
		user_id TEXT NOT NULL REFERENCES users(id),
		letter TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('belum', 'belajar', 'selesai')),
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, letter)
	);

	CREATE TABLE IF NOT EXISTS test_scores (
		user_id TEXT NOT NULL REFERENCES users(id),
		letter TEXT NOT NULL,
		score INTEGER NOT NULL CHECK (score BETWEEN 0 AND 100),
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (user_id, letter)
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, name, email, passwordHash, role string) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	user.UpdatedAt = user.CreatedAt

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, user.ID.String(), user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE id = ?
	`, id.String())
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE email = ?
	`, email)
}

func (s *SQLiteStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CreateMessage inserts a new unread message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, body string) (*models.Message, error) {
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (sender_id, receiver_id, body, is_read, created_at)
		VALUES (?, ?, ?, 0, ?)
	`, senderID.String(), receiverID.String(), body, now)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.Message{
		ID:         id,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		IsRead:     false,
		CreatedAt:  now,
	}, nil
}

// GetMessageByID retrieves a single message.
func (s *SQLiteStore) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg := &models.Message{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, sender_id, receiver_id, body, is_read, created_at
		FROM messages WHERE id = ?
	`, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Body,
		&msg.IsRead,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// ListThread retrieves every message between the two users, oldest first.
func (s *SQLiteStore) ListThread(ctx context.Context, userA, userB uuid.UUID) ([]models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sender_id, receiver_id, body, is_read, created_at
		FROM messages
		WHERE (sender_id = ? AND receiver_id = ?)
		   OR (sender_id = ? AND receiver_id = ?)
		ORDER BY created_at ASC, id ASC
	`, userA.String(), userB.String(), userB.String(), userA.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(
			&msg.ID,
			&msg.SenderID,
			&msg.ReceiverID,
			&msg.Body,
			&msg.IsRead,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// CountUnread returns the number of unread messages addressed to the user.
func (s *SQLiteStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = ? AND NOT is_read
	`, userID.String()).Scan(&count)
	return count, err
}

// ListConversations produces one summary row per distinct correspondent.
// See PostgresStore.ListConversations for the contract.
func (s *SQLiteStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	uid := userID.String()
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.role,
		       last.body, last.created_at,
		       (SELECT COUNT(*) FROM messages x
		        WHERE x.sender_id = u.id AND x.receiver_id = ? AND NOT x.is_read)
		FROM users u
		JOIN messages last ON last.id = (
			SELECT m.id FROM messages m
			WHERE (m.sender_id = ? AND m.receiver_id = u.id)
			   OR (m.sender_id = u.id AND m.receiver_id = ?)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT 1
		)
		ORDER BY last.created_at DESC, last.id DESC
	`, uid, uid, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := []models.ConversationSummary{}
	for rows.Next() {
		var c models.ConversationSummary
		err := rows.Scan(
			&c.PartnerID,
			&c.PartnerName,
			&c.PartnerEmail,
			&c.PartnerRole,
			&c.LastMessage,
			&c.LastMessageAt,
			&c.UnreadCount,
		)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, c)
	}
	return summaries, rows.Err()
}

// MarkMessageRead flips a message to read and returns the updated row.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id int64) (*models.Message, error) {
	_, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1 WHERE id = ?
	`, id)
	if err != nil {
		return nil, err
	}
	return s.GetMessageByID(ctx, id)
}

// MarkConversationRead marks every unread message from senderID to receiverID
// as read and returns how many rows changed.
func (s *SQLiteStore) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE messages SET is_read = 1
		WHERE sender_id = ? AND receiver_id = ? AND NOT is_read
	`, senderID.String(), receiverID.String())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountMessages returns the total number of stored messages.
func (s *SQLiteStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// CreateRoom creates a new room.
func (s *SQLiteStore) CreateRoom(ctx context.Context, name, joinCode string, teacherID uuid.UUID) (*models.Room, error) {
	room := &models.Room{
		ID:        uuid.New(),
		Name:      name,
		JoinCode:  joinCode,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, join_code, teacher_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, room.ID.String(), room.Name, room.JoinCode, room.TeacherID.String(), room.CreatedAt)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoomByID retrieves a room by ID.
func (s *SQLiteStore) GetRoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return s.getRoom(ctx, `
		SELECT id, name, join_code, teacher_id, created_at
		FROM rooms WHERE id = ?
	`, id.String())
}

// GetRoomByJoinCode retrieves a room by its join code.
func (s *SQLiteStore) GetRoomByJoinCode(ctx context.Context, code string) (*models.Room, error) {
	return s.getRoom(ctx, `
		SELECT id, name, join_code, teacher_id, created_at
		FROM rooms WHERE join_code = ?
	`, code)
}

func (s *SQLiteStore) getRoom(ctx context.Context, query string, arg any) (*models.Room, error) {
	room := &models.Room{}
	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&room.ID,
		&room.Name,
		&room.JoinCode,
		&room.TeacherID,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// AddRoomMember enrolls a user in a room. Re-joining is a no-op.
func (s *SQLiteStore) AddRoomMember(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO room_members (room_id, user_id, joined_at)
		VALUES (?, ?, ?)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, roomID.String(), userID.String(), time.Now().UTC())
	return err
}

// IsRoomMember reports whether the user is enrolled in or teaches the room.
func (s *SQLiteStore) IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?
			UNION ALL
			SELECT 1 FROM rooms WHERE id = ? AND teacher_id = ?
		)
	`, roomID.String(), userID.String(), roomID.String(), userID.String()).Scan(&exists)
	return exists, err
}

// ListRoomsForUser returns rooms the user teaches or is enrolled in.
func (s *SQLiteStore) ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.Room, error) {
	uid := userID.String()
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.join_code, r.teacher_id, r.created_at
		FROM rooms r
		WHERE r.teacher_id = ?
		   OR EXISTS (SELECT 1 FROM room_members m WHERE m.room_id = r.id AND m.user_id = ?)
		ORDER BY r.created_at DESC
	`, uid, uid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rooms := []models.Room{}
	for rows.Next() {
		var room models.Room
		err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.JoinCode,
			&room.TeacherID,
			&room.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// ListRoomMembers returns the enrolled students of a room.
func (s *SQLiteStore) ListRoomMembers(ctx context.Context, roomID uuid.UUID) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at, u.updated_at
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = ?
		ORDER BY u.name, u.id
	`, roomID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Email,
			&user.PasswordHash,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// CountRooms returns the total number of rooms.
func (s *SQLiteStore) CountRooms(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	return count, err
}

// UpsertProgress records the user's learning status for a letter.
func (s *SQLiteStore) UpsertProgress(ctx context.Context, userID uuid.UUID, letter, status string) (*models.LetterProgress, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO letter_progress (user_id, letter, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, letter)
		DO UPDATE SET status = excluded.status, updated_at = excluded.updated_at
	`, userID.String(), letter, status, now)
	if err != nil {
		return nil, err
	}
	return &models.LetterProgress{UserID: userID, Letter: letter, Status: status, UpdatedAt: now}, nil
}

// ListProgress returns the user's per-letter learning statuses.
func (s *SQLiteStore) ListProgress(ctx context.Context, userID uuid.UUID) ([]models.LetterProgress, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, letter, status, updated_at
		FROM letter_progress WHERE user_id = ?
		ORDER BY letter
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	progress := []models.LetterProgress{}
	for rows.Next() {
		var p models.LetterProgress
		if err := rows.Scan(&p.UserID, &p.Letter, &p.Status, &p.UpdatedAt); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// UpsertScore records a test score for a letter, keeping the best result.
func (s *SQLiteStore) UpsertScore(ctx context.Context, userID uuid.UUID, letter string, score int) (*models.TestScore, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO test_scores (user_id, letter, score, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, letter)
		DO UPDATE SET score = MAX(test_scores.score, excluded.score), updated_at = excluded.updated_at
	`, userID.String(), letter, score, now)
	if err != nil {
		return nil, err
	}

	ts := &models.TestScore{}
	err = s.db.QueryRowContext(ctx, `
		SELECT user_id, letter, score, updated_at
		FROM test_scores WHERE user_id = ? AND letter = ?
	`, userID.String(), letter).Scan(&ts.UserID, &ts.Letter, &ts.Score, &ts.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// ListScores returns the user's test scores.
func (s *SQLiteStore) ListScores(ctx context.Context, userID uuid.UUID) ([]models.TestScore, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id, letter, score, updated_at
		FROM test_scores WHERE user_id = ?
		ORDER BY letter
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := []models.TestScore{}
	for rows.Next() {
		var ts models.TestScore
		if err := rows.Scan(&ts.UserID, &ts.Letter, &ts.Score, &ts.UpdatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, ts)
	}
	return scores, rows.Err()
}
