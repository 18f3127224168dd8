package storage

import (
	"context"
	"testing"
	"time"

	"duochat/internal/chat"

	"github.com/stretchr/testify/require"
)

func TestMemoryUserRoundTrip(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	_, err := m.UserByID(ctx, "alice")
	require.ErrorIs(t, err, chat.ErrUserNotExist)

	now := time.Now()
	require.NoError(t, m.SaveUser(ctx, chat.User{ID: "alice", FirstName: "Alice", LastSeen: &now}))

	u, err := m.UserByID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alice", u.FirstName)

	// SaveUser is an upsert
	require.NoError(t, m.SaveUser(ctx, chat.User{ID: "alice", FirstName: "Alicia"}))
	u, err = m.UserByID(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "Alicia", u.FirstName)
}

func TestMemoryChatByParticipantsUnordered(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-1", SenderID: "alice", RecipientID: "bob"}))

	c, err := m.ChatByParticipants(ctx, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, "chat-1", c.ID)

	c, err = m.ChatByParticipants(ctx, "bob", "alice")
	require.NoError(t, err)
	require.Equal(t, "chat-1", c.ID)

	_, err = m.ChatByParticipants(ctx, "alice", "carol")
	require.ErrorIs(t, err, chat.ErrChatNotExist)
}

func TestMemoryChatsByUserID(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-1", SenderID: "alice", RecipientID: "bob"}))
	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-2", SenderID: "carol", RecipientID: "alice"}))
	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-3", SenderID: "bob", RecipientID: "carol"}))

	chats, err := m.ChatsByUserID(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, chats, 2)
}

func TestMemorySaveMessageUnknownChat(t *testing.T) {
	t.Parallel()

	m := NewMemory()

	_, err := m.SaveMessage(context.Background(), &chat.Message{ChatID: "missing"})
	require.ErrorIs(t, err, chat.ErrChatNotExist)
}

func TestMemoryMessagesKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-1", SenderID: "alice", RecipientID: "bob"}))

	for i := 0; i < 3; i++ {
		_, err := m.SaveMessage(ctx, &chat.Message{ChatID: "chat-1", SenderID: "alice", ReceiverID: "bob", State: chat.StateSent})
		require.NoError(t, err)
	}

	msgs, err := m.MessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, msg := range msgs {
		require.Equal(t, int64(i+1), msg.ID)
	}
}

func TestMemorySetMessagesStateByChatID(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-1", SenderID: "alice", RecipientID: "bob"}))
	require.NoError(t, m.SaveChat(ctx, chat.Chat{ID: "chat-2", SenderID: "alice", RecipientID: "carol"}))

	_, err := m.SaveMessage(ctx, &chat.Message{ChatID: "chat-1", State: chat.StateSent})
	require.NoError(t, err)
	_, err = m.SaveMessage(ctx, &chat.Message{ChatID: "chat-2", State: chat.StateSent})
	require.NoError(t, err)

	require.NoError(t, m.SetMessagesStateByChatID(ctx, "chat-1", chat.StateSeen))

	// only the targeted chat is touched
	msgs, err := m.MessagesByChatID(ctx, "chat-1")
	require.NoError(t, err)
	require.Equal(t, chat.StateSeen, msgs[0].State)

	msgs, err = m.MessagesByChatID(ctx, "chat-2")
	require.NoError(t, err)
	require.Equal(t, chat.StateSent, msgs[0].State)
}
