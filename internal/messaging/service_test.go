package messaging

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
)

// fakeStore is an in-memory Store for service tests. Timestamps are
// strictly increasing so ordering assertions are deterministic.
type fakeStore struct {
	users    map[uuid.UUID]*models.User
	messages []*models.Message
	nextID   int64
	now      time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[uuid.UUID]*models.User),
		now:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) addUser(name, role string) uuid.UUID {
	id := uuid.New()
	f.users[id] = &models.User{ID: id, Name: name, Email: name + "@example.com", Role: role}
	return id
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	return user, nil
}

func (f *fakeStore) CreateMessage(_ context.Context, senderID, receiverID uuid.UUID, body string) (*models.Message, error) {
	f.nextID++
	f.now = f.now.Add(time.Millisecond)
	msg := &models.Message{
		ID:         f.nextID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Body:       body,
		CreatedAt:  f.now,
	}
	f.messages = append(f.messages, msg)
	return msg, nil
}

func (f *fakeStore) GetMessageByID(_ context.Context, id int64) (*models.Message, error) {
	for _, msg := range f.messages {
		if msg.ID == id {
			return msg, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListThread(_ context.Context, userA, userB uuid.UUID) ([]models.Message, error) {
	thread := []models.Message{}
	for _, msg := range f.messages {
		if (msg.SenderID == userA && msg.ReceiverID == userB) ||
			(msg.SenderID == userB && msg.ReceiverID == userA) {
			thread = append(thread, *msg)
		}
	}
	sort.Slice(thread, func(i, j int) bool {
		if thread[i].CreatedAt.Equal(thread[j].CreatedAt) {
			return thread[i].ID < thread[j].ID
		}
		return thread[i].CreatedAt.Before(thread[j].CreatedAt)
	})
	return thread, nil
}

func (f *fakeStore) CountUnread(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, msg := range f.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) ListConversations(_ context.Context, userID uuid.UUID) ([]models.ConversationSummary, error) {
	type agg struct {
		last   *models.Message
		unread int64
	}
	byPartner := make(map[uuid.UUID]*agg)
	for _, msg := range f.messages {
		var partner uuid.UUID
		switch userID {
		case msg.SenderID:
			partner = msg.ReceiverID
		case msg.ReceiverID:
			partner = msg.SenderID
		default:
			continue
		}
		a := byPartner[partner]
		if a == nil {
			a = &agg{}
			byPartner[partner] = a
		}
		if a.last == nil || msg.CreatedAt.After(a.last.CreatedAt) {
			a.last = msg
		}
		if msg.SenderID == partner && !msg.IsRead {
			a.unread++
		}
	}

	summaries := []models.ConversationSummary{}
	for partnerID, a := range byPartner {
		partner := f.users[partnerID]
		summaries = append(summaries, models.ConversationSummary{
			PartnerID:     partnerID,
			PartnerName:   partner.Name,
			PartnerEmail:  partner.Email,
			PartnerRole:   partner.Role,
			LastMessage:   a.last.Body,
			LastMessageAt: a.last.CreatedAt,
			UnreadCount:   a.unread,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastMessageAt.After(summaries[j].LastMessageAt)
	})
	return summaries, nil
}

func (f *fakeStore) MarkMessageRead(_ context.Context, id int64) (*models.Message, error) {
	for _, msg := range f.messages {
		if msg.ID == id {
			msg.IsRead = true
			return msg, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) MarkConversationRead(_ context.Context, receiverID, senderID uuid.UUID) (int64, error) {
	var updated int64
	for _, msg := range f.messages {
		if msg.SenderID == senderID && msg.ReceiverID == receiverID && !msg.IsRead {
			msg.IsRead = true
			updated++
		}
	}
	return updated, nil
}

func newTestService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()
	fs := newFakeStore()
	return NewService(fs, nil, zerolog.Nop()), fs
}

func TestSendValidation(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)

	var validationErr *ValidationError

	_, err := svc.Send(ctx, guru, murid, "")
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Send(ctx, guru, murid, "   ")
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Send(ctx, guru, uuid.Nil, "halo")
	require.ErrorAs(t, err, &validationErr)

	// Messaging yourself is rejected for every user
	_, err = svc.Send(ctx, guru, guru, "test")
	require.ErrorAs(t, err, &validationErr)
	_, err = svc.Send(ctx, murid, murid, "test")
	require.ErrorAs(t, err, &validationErr)
}

func TestSendUnknownRecipient(t *testing.T) {
	svc, fs := newTestService(t)
	guru := fs.addUser("bu-ana", models.RoleGuru)

	var notFoundErr *NotFoundError
	_, err := svc.Send(context.Background(), guru, uuid.New(), "halo")
	require.ErrorAs(t, err, &notFoundErr)
}

func TestSendCreatesUnreadMessage(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)

	msg, err := svc.Send(ctx, guru, murid, "Halo")
	require.NoError(t, err)
	assert.Equal(t, guru, msg.SenderID)
	assert.Equal(t, murid, msg.ReceiverID)
	assert.Equal(t, "Halo", msg.Body)
	assert.False(t, msg.IsRead)

	count, err := svc.UnreadCount(ctx, murid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestThreadSymmetry(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)

	_, err := svc.Send(ctx, guru, murid, "halo dito")
	require.NoError(t, err)
	_, err = svc.Send(ctx, murid, guru, "halo bu")
	require.NoError(t, err)
	_, err = svc.Send(ctx, guru, murid, "sudah belajar?")
	require.NoError(t, err)

	ab, err := svc.Thread(ctx, guru, murid)
	require.NoError(t, err)
	ba, err := svc.Thread(ctx, murid, guru)
	require.NoError(t, err)

	assert.Equal(t, ab, ba)
	require.Len(t, ab, 3)
	assert.Equal(t, "halo dito", ab[0].Body)
	assert.Equal(t, "halo bu", ab[1].Body)
	assert.Equal(t, "sudah belajar?", ab[2].Body)
}

func TestThreadDoesNotMarkRead(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)

	_, err := svc.Send(ctx, guru, murid, "halo")
	require.NoError(t, err)

	thread, err := svc.Thread(ctx, murid, guru)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.False(t, thread[0].IsRead)

	count, err := svc.UnreadCount(ctx, murid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkReadAuthorization(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)
	other := fs.addUser("siti", models.RoleMurid)

	msg, err := svc.Send(ctx, guru, murid, "halo")
	require.NoError(t, err)

	var forbiddenErr *ForbiddenError

	// The sender may not mark their own sent message read
	_, err = svc.MarkRead(ctx, msg.ID, guru)
	require.ErrorAs(t, err, &forbiddenErr)

	// Neither may an uninvolved user
	_, err = svc.MarkRead(ctx, msg.ID, other)
	require.ErrorAs(t, err, &forbiddenErr)

	// The receiver may
	updated, err := svc.MarkRead(ctx, msg.ID, murid)
	require.NoError(t, err)
	assert.True(t, updated.IsRead)
}

func TestMarkReadIdempotent(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)

	msg, err := svc.Send(ctx, guru, murid, "halo")
	require.NoError(t, err)

	first, err := svc.MarkRead(ctx, msg.ID, murid)
	require.NoError(t, err)
	assert.True(t, first.IsRead)

	// Second call is a no-op success, not an error
	second, err := svc.MarkRead(ctx, msg.ID, murid)
	require.NoError(t, err)
	assert.True(t, second.IsRead)
	assert.Equal(t, first.ID, second.ID)
}

func TestMarkReadMissingMessage(t *testing.T) {
	svc, fs := newTestService(t)
	murid := fs.addUser("dito", models.RoleMurid)

	var notFoundErr *NotFoundError
	_, err := svc.MarkRead(context.Background(), 9999, murid)
	require.ErrorAs(t, err, &notFoundErr)
}

func TestMarkConversationRead(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	murid := fs.addUser("dito", models.RoleMurid)

	_, err := svc.Send(ctx, guru, murid, "satu")
	require.NoError(t, err)
	_, err = svc.Send(ctx, guru, murid, "dua")
	require.NoError(t, err)
	_, err = svc.Send(ctx, murid, guru, "balas")
	require.NoError(t, err)

	// Murid marks everything from guru as read
	updated, err := svc.MarkConversationRead(ctx, murid, guru)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	// Running it again converges to zero updates
	updated, err = svc.MarkConversationRead(ctx, murid, guru)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)

	// The reply from murid to guru is untouched
	count, err := svc.UnreadCount(ctx, guru)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestConversationsEmpty(t *testing.T) {
	svc, fs := newTestService(t)
	fresh := fs.addUser("baru", models.RoleMurid)

	conversations, err := svc.Conversations(context.Background(), fresh)
	require.NoError(t, err)
	assert.Empty(t, conversations)

	count, err := svc.UnreadCount(context.Background(), fresh)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestConversationsAggregation(t *testing.T) {
	svc, fs := newTestService(t)
	ctx := context.Background()
	guru := fs.addUser("bu-ana", models.RoleGuru)
	dito := fs.addUser("dito", models.RoleMurid)
	siti := fs.addUser("siti", models.RoleMurid)

	_, err := svc.Send(ctx, dito, guru, "pertanyaan")
	require.NoError(t, err)
	_, err = svc.Send(ctx, guru, dito, "jawaban")
	require.NoError(t, err)
	_, err = svc.Send(ctx, siti, guru, "halo bu")
	require.NoError(t, err)
	_, err = svc.Send(ctx, siti, guru, "sudah selesai alif")
	require.NoError(t, err)

	conversations, err := svc.Conversations(ctx, guru)
	require.NoError(t, err)
	require.Len(t, conversations, 2)

	// Newest conversation first: siti wrote last
	assert.Equal(t, siti, conversations[0].PartnerID)
	assert.Equal(t, "sudah selesai alif", conversations[0].LastMessage)
	assert.Equal(t, int64(2), conversations[0].UnreadCount)
	assert.Equal(t, models.RoleMurid, conversations[0].PartnerRole)

	assert.Equal(t, dito, conversations[1].PartnerID)
	assert.Equal(t, "jawaban", conversations[1].LastMessage)
	assert.Equal(t, int64(1), conversations[1].UnreadCount)

	// Total unread equals the sum over conversations
	total, err := svc.UnreadCount(ctx, guru)
	require.NoError(t, err)
	var sum int64
	for _, c := range conversations {
		sum += c.UnreadCount
	}
	assert.Equal(t, sum, total)
}
