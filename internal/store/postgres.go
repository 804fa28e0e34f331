package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash, role string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (name, email, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, email, password_hash, role, created_at, updated_at
	`, name, email, passwordHash, role).Scan(
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
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE id = $1
	`, id)
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `
		SELECT id, name, email, password_hash, role, created_at, updated_at
		FROM users WHERE email = $1
	`, email)
}

func (s *PostgresStore) getUser(ctx context.Context, query string, arg any) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// CreateMessage inserts a new unread message.
func (s *PostgresStore) CreateMessage(ctx context.Context, senderID, receiverID uuid.UUID, body string) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO messages (sender_id, receiver_id, body)
		VALUES ($1, $2, $3)
		RETURNING id, sender_id, receiver_id, body, is_read, created_at
	`, senderID, receiverID, body).Scan(
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
	return msg, nil
}

// GetMessageByID retrieves a single message.
func (s *PostgresStore) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, sender_id, receiver_id, body, is_read, created_at
		FROM messages WHERE id = $1
	`, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Body,
		&msg.IsRead,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// ListThread retrieves every message between the two users, oldest first.
// Ties on created_at fall back to insertion order via id.
func (s *PostgresStore) ListThread(ctx context.Context, userA, userB uuid.UUID) ([]models.Message, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, sender_id, receiver_id, body, is_read, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at ASC, id ASC
	`, userA, userB)
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
func (s *PostgresStore) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE receiver_id = $1 AND NOT is_read
	`, userID).Scan(&count)
	return count, err
}

// ListConversations produces one summary row per distinct correspondent of
// the user: their profile, the newest message exchanged with them, and how
// many of their messages the user has not read yet. Newest conversations
// come first.
func (s *PostgresStore) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.role,
		       last.body, last.created_at,
		       (SELECT COUNT(*) FROM messages x
		        WHERE x.sender_id = u.id AND x.receiver_id = $1 AND NOT x.is_read)
		FROM (
			SELECT DISTINCT CASE WHEN sender_id = $1 THEN receiver_id ELSE sender_id END AS partner_id
			FROM messages
			WHERE sender_id = $1 OR receiver_id = $1
		) p
		JOIN users u ON u.id = p.partner_id
		JOIN LATERAL (
			SELECT id, body, created_at FROM messages
			WHERE (sender_id = $1 AND receiver_id = u.id)
			   OR (sender_id = u.id AND receiver_id = $1)
			ORDER BY created_at DESC, id DESC
			LIMIT 1
		) last ON TRUE
		ORDER BY last.created_at DESC, last.id DESC
	`, userID)
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
// Already-read messages are returned unchanged.
func (s *PostgresStore) MarkMessageRead(ctx context.Context, id int64) (*models.Message, error) {
	msg := &models.Message{}
	err := s.pool.QueryRow(ctx, `
		UPDATE messages SET is_read = TRUE WHERE id = $1
		RETURNING id, sender_id, receiver_id, body, is_read, created_at
	`, id).Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&msg.Body,
		&msg.IsRead,
		&msg.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return msg, nil
}

// MarkConversationRead marks every unread message from senderID to receiverID
// as read and returns how many rows changed. Concurrent calls race safely:
// the transition is one-way, so they converge on the same state.
func (s *PostgresStore) MarkConversationRead(ctx context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE sender_id = $1 AND receiver_id = $2 AND NOT is_read
	`, senderID, receiverID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountMessages returns the total number of stored messages.
func (s *PostgresStore) CountMessages(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count)
	return count, err
}

// CreateRoom creates a new room.
func (s *PostgresStore) CreateRoom(ctx context.Context, name, joinCode string, teacherID uuid.UUID) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO rooms (name, join_code, teacher_id)
		VALUES ($1, $2, $3)
		RETURNING id, name, join_code, teacher_id, created_at
	`, name, joinCode, teacherID).Scan(
		&room.ID,
		&room.Name,
		&room.JoinCode,
		&room.TeacherID,
		&room.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// GetRoomByID retrieves a room by ID.
func (s *PostgresStore) GetRoomByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	return s.getRoom(ctx, `
		SELECT id, name, join_code, teacher_id, created_at
		FROM rooms WHERE id = $1
	`, id)
}

// GetRoomByJoinCode retrieves a room by its join code.
func (s *PostgresStore) GetRoomByJoinCode(ctx context.Context, code string) (*models.Room, error) {
	return s.getRoom(ctx, `
		SELECT id, name, join_code, teacher_id, created_at
		FROM rooms WHERE join_code = $1
	`, code)
}

func (s *PostgresStore) getRoom(ctx context.Context, query string, arg any) (*models.Room, error) {
	room := &models.Room{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&room.ID,
		&room.Name,
		&room.JoinCode,
		&room.TeacherID,
		&room.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return room, nil
}

// AddRoomMember enrolls a user in a room. Re-joining is a no-op.
func (s *PostgresStore) AddRoomMember(ctx context.Context, roomID, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (room_id, user_id) DO NOTHING
	`, roomID, userID)
	return err
}

// IsRoomMember reports whether the user is enrolled in or teaches the room.
func (s *PostgresStore) IsRoomMember(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2
			UNION ALL
			SELECT 1 FROM rooms WHERE id = $1 AND teacher_id = $2
		)
	`, roomID, userID).Scan(&exists)
	return exists, err
}

// ListRoomsForUser returns rooms the user teaches or is enrolled in.
func (s *PostgresStore) ListRoomsForUser(ctx context.Context, userID uuid.UUID) ([]models.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT r.id, r.name, r.join_code, r.teacher_id, r.created_at
		FROM rooms r
		WHERE r.teacher_id = $1
		   OR EXISTS (SELECT 1 FROM room_members m WHERE m.room_id = r.id AND m.user_id = $1)
		ORDER BY r.created_at DESC
	`, userID)
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
func (s *PostgresStore) ListRoomMembers(ctx context.Context, roomID uuid.UUID) ([]models.User, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.password_hash, u.role, u.created_at, u.updated_at
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY u.name, u.id
	`, roomID)
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
func (s *PostgresStore) CountRooms(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count)
	return count, err
}

// UpsertProgress records the user's learning status for a letter,
// overwriting any previous status.
func (s *PostgresStore) UpsertProgress(ctx context.Context, userID uuid.UUID, letter, status string) (*models.LetterProgress, error) {
	p := &models.LetterProgress{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO letter_progress (user_id, letter, status)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, letter)
		DO UPDATE SET status = EXCLUDED.status, updated_at = NOW()
		RETURNING user_id, letter, status, updated_at
	`, userID, letter, status).Scan(
		&p.UserID,
		&p.Letter,
		&p.Status,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProgress returns the user's per-letter learning statuses.
func (s *PostgresStore) ListProgress(ctx context.Context, userID uuid.UUID) ([]models.LetterProgress, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, letter, status, updated_at
		FROM letter_progress WHERE user_id = $1
		ORDER BY letter
	`, userID)
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
func (s *PostgresStore) UpsertScore(ctx context.Context, userID uuid.UUID, letter string, score int) (*models.TestScore, error) {
	ts := &models.TestScore{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO test_scores (user_id, letter, score)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, letter)
		DO UPDATE SET score = GREATEST(test_scores.score, EXCLUDED.score), updated_at = NOW()
		RETURNING user_id, letter, score, updated_at
	`, userID, letter, score).Scan(
		&ts.UserID,
		&ts.Letter,
		&ts.Score,
		&ts.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// ListScores returns the user's test scores.
func (s *PostgresStore) ListScores(ctx context.Context, userID uuid.UUID) ([]models.TestScore, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, letter, score, updated_at
		FROM test_scores WHERE user_id = $1
		ORDER BY letter
	`, userID)
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
