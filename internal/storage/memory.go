package storage

import (
	"context"
	"sync"

	"duochat/internal/chat"
)

// Memory is a mutex-guarded in-memory implementation of the store
// capabilities. It backs the unit tests and lets the server run without a
// database.
type Memory struct {
	mu       sync.RWMutex
	users    map[string]chat.User
	chats    map[string]chat.Chat
	messages map[string][]chat.Message // chat id -> messages in insertion order
	nextID   int64
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    make(map[string]chat.User),
		chats:    make(map[string]chat.Chat),
		messages: make(map[string][]chat.Message),
	}
}

func (m *Memory) UserByID(_ context.Context, id string) (*chat.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, chat.ErrUserNotExist
	}
	return &u, nil
}

func (m *Memory) SaveUser(_ context.Context, u chat.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.users[u.ID] = u
	return nil
}

func (m *Memory) ChatByID(_ context.Context, id string) (*chat.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.chats[id]
	if !ok {
		return nil, chat.ErrChatNotExist
	}
	return &c, nil
}

func (m *Memory) ChatByParticipants(_ context.Context, a, b string) (*chat.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.chats {
		if (c.SenderID == a && c.RecipientID == b) || (c.SenderID == b && c.RecipientID == a) {
			c := c
			return &c, nil
		}
	}
	return nil, chat.ErrChatNotExist
}

func (m *Memory) ChatsByUserID(_ context.Context, userID string) ([]chat.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var chats []chat.Chat
	for _, c := range m.chats {
		if c.SenderID == userID || c.RecipientID == userID {
			chats = append(chats, c)
		}
	}
	return chats, nil
}

func (m *Memory) SaveChat(_ context.Context, c chat.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.chats[c.ID] = c
	return nil
}

func (m *Memory) SaveMessage(_ context.Context, msg *chat.Message) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.chats[msg.ChatID]; !ok {
		return 0, chat.ErrChatNotExist
	}

	m.nextID++
	msg.ID = m.nextID
	m.messages[msg.ChatID] = append(m.messages[msg.ChatID], *msg)
	return msg.ID, nil
}

func (m *Memory) MessagesByChatID(_ context.Context, chatID string) ([]chat.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	msgs := m.messages[chatID]
	out := make([]chat.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// SetMessagesStateByChatID swaps the chat's message slice in one critical
// section, so readers see either the old states or the new ones, never a
// mix.
func (m *Memory) SetMessagesStateByChatID(_ context.Context, chatID string, state chat.MessageState) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[chatID]
	updated := make([]chat.Message, len(msgs))
	for i, msg := range msgs {
		msg.State = state
		updated[i] = msg
	}
	m.messages[chatID] = updated
	return nil
}
