package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func createTestUser(t *testing.T, s *SQLiteStore, name, role string) *models.User {
	t.Helper()
	user, err := s.CreateUser(context.Background(), name, name+"@example.com", "hash", role)
	require.NoError(t, err)
	return user
}

func TestUserLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := createTestUser(t, s, "bu-ana", models.RoleGuru)

	byID, err := s.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, created.Email, byID.Email)
	assert.Equal(t, models.RoleGuru, byID.Role)

	byEmail, err := s.GetUserByEmail(ctx, created.Email)
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, created.ID, byEmail.ID)

	missing, err := s.GetUserByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSelfMessageRejectedBySchema(t *testing.T) {
	s := newTestStore(t)
	user := createTestUser(t, s, "dito", models.RoleMurid)

	_, err := s.CreateMessage(context.Background(), user.ID, user.ID, "test")
	assert.Error(t, err)
}

func TestThreadOrderingAndSymmetry(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	murid := createTestUser(t, s, "dito", models.RoleMurid)
	other := createTestUser(t, s, "siti", models.RoleMurid)

	first, err := s.CreateMessage(ctx, guru.ID, murid.ID, "halo")
	require.NoError(t, err)
	second, err := s.CreateMessage(ctx, murid.ID, guru.ID, "halo bu")
	require.NoError(t, err)
	// Message with a third user must not leak into the pair's thread
	_, err = s.CreateMessage(ctx, other.ID, guru.ID, "permisi")
	require.NoError(t, err)

	ab, err := s.ListThread(ctx, guru.ID, murid.ID)
	require.NoError(t, err)
	ba, err := s.ListThread(ctx, murid.ID, guru.ID)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	require.Len(t, ab, 2)
	assert.Equal(t, first.ID, ab[0].ID)
	assert.Equal(t, second.ID, ab[1].ID)
	assert.False(t, ab[0].IsRead)
}

func TestThreadEmptyPair(t *testing.T) {
	s := newTestStore(t)
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	thread, err := s.ListThread(context.Background(), guru.ID, murid.ID)
	require.NoError(t, err)
	assert.Empty(t, thread)
}

func TestMarkMessageRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	msg, err := s.CreateMessage(ctx, guru.ID, murid.ID, "halo")
	require.NoError(t, err)
	require.False(t, msg.IsRead)

	updated, err := s.MarkMessageRead(ctx, msg.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.True(t, updated.IsRead)

	// Marking again keeps the terminal state
	again, err := s.MarkMessageRead(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)

	missing, err := s.MarkMessageRead(ctx, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMarkConversationRead(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	_, err := s.CreateMessage(ctx, guru.ID, murid.ID, "satu")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, guru.ID, murid.ID, "dua")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, murid.ID, guru.ID, "balas")
	require.NoError(t, err)

	updated, err := s.MarkConversationRead(ctx, murid.ID, guru.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// Converges: nothing left to update
	updated, err = s.MarkConversationRead(ctx, murid.ID, guru.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	// The reverse direction is untouched
	count, err := s.CountUnread(ctx, guru.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = s.CountUnread(ctx, murid.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestListConversations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	dito := createTestUser(t, s, "dito", models.RoleMurid)
	siti := createTestUser(t, s, "siti", models.RoleMurid)
	// A user with no shared messages never appears
	createTestUser(t, s, "uninvolved", models.RoleMurid)

	_, err := s.CreateMessage(ctx, dito.ID, guru.ID, "pertanyaan")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, guru.ID, dito.ID, "jawaban")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, siti.ID, guru.ID, "halo bu")
	require.NoError(t, err)
	_, err = s.CreateMessage(ctx, siti.ID, guru.ID, "sudah selesai alif")
	require.NoError(t, err)

	conversations, err := s.ListConversations(ctx, guru.ID)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Newest last-message first; tie on timestamp resolved by message id
	assert.Equal(t, siti.ID, conversations[0].PartnerID)
	assert.Equal(t, "sudah selesai alif", conversations[0].LastMessage)
	assert.Equal(t, int64(2), conversations[0].UnreadCount)
	// Role comes from the partner's stored row
	assert.Equal(t, models.RoleMurid, conversations[0].PartnerRole)
	assert.Equal(t, "siti", conversations[0].PartnerName)

	assert.Equal(t, dito.ID, conversations[1].PartnerID)
	assert.Equal(t, "jawaban", conversations[1].LastMessage)
	assert.Equal(t, int64(1), conversations[1].UnreadCount)

	// Each correspondent appears exactly once
	seen := map[uuid.UUID]int{}
	for _, c := range conversations {
		seen[c.PartnerID]++
	}
	for partner, n := range seen {
		assert.Equal(t, 1, n, "partner %s listed %d times", partner, n)
	}

	// Total unread equals the sum over the conversation rows
	total, err := s.CountUnread(ctx, guru.ID)
	require.NoError(t, err)
	var sum int64
	for _, c := range conversations {
		sum += c.UnreadCount
	}
	assert.Equal(t, sum, total)

	// The student's own view: one conversation with guru, nothing unread
	// after reading the reply
	_, err = s.MarkConversationRead(ctx, dito.ID, guru.ID)
	require.NoError(t, err)
	ditoView, err := s.ListConversations(ctx, dito.ID)
	require.NoError(t, err)
	require.Len(t, ditoView, 1)
	assert.Equal(t, guru.ID, ditoView[0].PartnerID)
	assert.Equal(t, models.RoleGuru, ditoView[0].PartnerRole)
	assert.Equal(t, int64(0), ditoView[0].UnreadCount)
}

func TestListConversationsEmpty(t *testing.T) {
	s := newTestStore(t)
	fresh := createTestUser(t, s, "baru", models.RoleMurid)

	conversations, err := s.ListConversations(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Empty(t, conversations)

	count, err := s.CountUnread(context.Background(), fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestRooms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	room, err := s.CreateRoom(ctx, "Kelas Hijaiyah A", "ABC123", guru.ID)
	require.NoError(t, err)

	byCode, err := s.GetRoomByJoinCode(ctx, "ABC123")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, room.ID, byCode.ID)

	missing, err := s.GetRoomByJoinCode(ctx, "ZZZZZZ")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Enrolling twice is a no-op
	require.NoError(t, s.AddRoomMember(ctx, room.ID, murid.ID))
	require.NoError(t, s.AddRoomMember(ctx, room.ID, murid.ID))

	members, err := s.ListRoomMembers(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, murid.ID, members[0].ID)

	// Both the teacher and the student see the room
	forGuru, err := s.ListRoomsForUser(ctx, guru.ID)
	require.NoError(t, err)
	require.Len(t, forGuru, 1)
	forMurid, err := s.ListRoomsForUser(ctx, murid.ID)
	require.NoError(t, err)
	require.Len(t, forMurid, 1)

	isMember, err := s.IsRoomMember(ctx, room.ID, murid.ID)
	require.NoError(t, err)
	assert.True(t, isMember)
	isMember, err = s.IsRoomMember(ctx, room.ID, guru.ID)
	require.NoError(t, err)
	assert.True(t, isMember)

	outsider := createTestUser(t, s, "siti", models.RoleMurid)
	isMember, err = s.IsRoomMember(ctx, room.ID, outsider.ID)
	require.NoError(t, err)
	assert.False(t, isMember)
}

func TestProgressUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	p, err := s.UpsertProgress(ctx, murid.ID, "alif", models.StatusBelajar)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBelajar, p.Status)

	// Overwrites the previous status for the same letter
	p, err = s.UpsertProgress(ctx, murid.ID, "alif", models.StatusSelesai)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSelesai, p.Status)

	_, err = s.UpsertProgress(ctx, murid.ID, "ba", models.StatusBelum)
	require.NoError(t, err)

	progress, err := s.ListProgress(ctx, murid.ID)
	require.NoError(t, err)
	require.Len(t, progress, 2)
	assert.Equal(t, "alif", progress[0].Letter)
	assert.Equal(t, models.StatusSelesai, progress[0].Status)
}

func TestScoreKeepsBest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	ts, err := s.UpsertScore(ctx, murid.ID, "alif", 70)
	require.NoError(t, err)
	assert.Equal(t, 70, ts.Score)

	ts, err = s.UpsertScore(ctx, murid.ID, "alif", 90)
	require.NoError(t, err)
	assert.Equal(t, 90, ts.Score)

	// A lower result never replaces the best score
	ts, err = s.UpsertScore(ctx, murid.ID, "alif", 60)
	require.NoError(t, err)
	assert.Equal(t, 90, ts.Score)

	scores, err := s.ListScores(ctx, murid.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 90, scores[0].Score)
}

func TestCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	guru := createTestUser(t, s, "bu-ana", models.RoleGuru)
	murid := createTestUser(t, s, "dito", models.RoleMurid)

	_, err := s.CreateMessage(ctx, guru.ID, murid.ID, "halo")
	require.NoError(t, err)
	_, err = s.CreateRoom(ctx, "Kelas A", "ABC123", guru.ID)
	require.NoError(t, err)

	users, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), users)

	messages, err := s.CountMessages(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), messages)

	rooms, err := s.CountRooms(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rooms)
}
