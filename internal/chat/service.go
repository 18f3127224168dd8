package chat

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrUserNotExist      = errors.New("user does not exist")
	ErrChatNotExist      = errors.New("chat does not exist")
	ErrSameParticipants  = errors.New("chat participants must be distinct")
	ErrUnknownAttachment = errors.New("attachment matches no message kind")
)

// UserStore is the user lookup capability the core needs.
type UserStore interface {
	UserByID(ctx context.Context, id string) (*User, error)
	SaveUser(ctx context.Context, u User) error
}

// ChatStore persists chats. ChatByParticipants treats the pair as unordered.
type ChatStore interface {
	ChatByID(ctx context.Context, id string) (*Chat, error)
	ChatByParticipants(ctx context.Context, a, b string) (*Chat, error)
	ChatsByUserID(ctx context.Context, userID string) ([]Chat, error)
	SaveChat(ctx context.Context, c Chat) error
}

// MessageStore persists messages. MessagesByChatID returns messages in
// ascending creation order. SetMessagesStateByChatID is a single atomic bulk
// update scoped to the chat; a reader never observes it half-applied.
type MessageStore interface {
	SaveMessage(ctx context.Context, m *Message) (int64, error)
	MessagesByChatID(ctx context.Context, chatID string) ([]Message, error)
	SetMessagesStateByChatID(ctx context.Context, chatID string, state MessageState) error
}

// FileStore stores raw media bytes and hands back an opaque path.
type FileStore interface {
	Save(data []byte, ownerID string) (string, error)
	Read(path string) ([]byte, error)
}

// SendMessageRequest carries the fields of a plain text send.
type SendMessageRequest struct {
	ChatID     string
	SenderID   string
	ReceiverID string
	Content    string
}

// Service wires the message lifecycle to its collaborators: stores for
// persistence, a file store for media and a dispatcher for live push.
type Service struct {
	logger     *zap.SugaredLogger
	users      UserStore
	chats      ChatStore
	messages   MessageStore
	files      FileStore
	dispatcher *Dispatcher
}

// NewService returns a Service operating on the provided collaborators.
func NewService(logger *zap.SugaredLogger, users UserStore, chats ChatStore, messages MessageStore, files FileStore, dispatcher *Dispatcher) *Service {
	return &Service{
		logger:     logger,
		users:      users,
		chats:      chats,
		messages:   messages,
		files:      files,
		dispatcher: dispatcher,
	}
}

// SyncUser upserts a user from identity-provider token claims and returns
// the stored profile with the derived online flag.
func (s *Service) SyncUser(ctx context.Context, claims Claims) (UserResponse, error) {
	u := UserFromClaims(claims, time.Now())

	if err := s.users.SaveUser(ctx, u); err != nil {
		return UserResponse{}, err
	}

	s.logger.Debugf("Synced user (id: %s)", u.ID)

	return toUserResponse(&u), nil
}

// GetOrCreateChat returns the id of the chat between the two users, creating
// it when no chat exists for the pair yet. At most one chat exists per
// unordered participant pair; the lookup-before-create keeps it that way.
func (s *Service) GetOrCreateChat(ctx context.Context, senderID, receiverID string) (string, error) {
	if senderID == receiverID {
		return "", ErrSameParticipants
	}

	existing, err := s.chats.ChatByParticipants(ctx, senderID, receiverID)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, ErrChatNotExist) {
		return "", err
	}

	if _, err := s.users.UserByID(ctx, senderID); err != nil {
		return "", err
	}
	if _, err := s.users.UserByID(ctx, receiverID); err != nil {
		return "", err
	}

	c := Chat{
		ID:          uuid.New().String(),
		SenderID:    senderID,
		RecipientID: receiverID,
		CreatedAt:   time.Now(),
	}
	if err := s.chats.SaveChat(ctx, c); err != nil {
		return "", err
	}

	s.logger.Debugf("Created chat (id: %s) between users (%s, %s)", c.ID, senderID, receiverID)

	return c.ID, nil
}

// ChatsForUser builds viewer-facing chat summaries: display name and unread
// count relative to the viewer, presence of the structural recipient, last
// message preview. Ordered by last message recency, newest first.
func (s *Service) ChatsForUser(ctx context.Context, viewerID string) ([]ChatResponse, error) {
	if _, err := s.users.UserByID(ctx, viewerID); err != nil {
		return nil, err
	}

	chats, err := s.chats.ChatsByUserID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	responses := make([]ChatResponse, 0, len(chats))
	for i := range chats {
		c := &chats[i]

		other, err := s.users.UserByID(ctx, c.OtherPartyID(viewerID))
		if err != nil {
			return nil, err
		}
		recipient, err := s.users.UserByID(ctx, c.RecipientID)
		if err != nil {
			return nil, err
		}

		messages, err := s.messages.MessagesByChatID(ctx, c.ID)
		if err != nil {
			return nil, err
		}

		resp := ChatResponse{
			ID:              c.ID,
			Name:            other.FullName(),
			UnreadCount:     UnreadCount(messages, viewerID),
			RecipientOnline: recipient.Online(),
			SenderID:        c.SenderID,
			ReceiverID:      c.RecipientID,
		}
		if len(messages) > 0 {
			last := messages[len(messages)-1]
			resp.LastMessage = lastMessagePreview(&last)
			resp.LastMessageTime = &last.CreatedAt
		}

		responses = append(responses, resp)
	}

	sort.SliceStable(responses, func(i, j int) bool {
		ti, tj := responses[i].LastMessageTime, responses[j].LastMessageTime
		if ti == nil || tj == nil {
			return tj == nil && ti != nil
		}
		return ti.After(*tj)
	})

	s.logger.Debugf("Built %d chat summaries for user (id: %s)", len(responses), viewerID)

	return responses, nil
}

// SendMessage persists a text message at SENT and pushes a MESSAGE
// notification to the receiver. The chat name in the notification is
// computed relative to the message sender. Dispatch failure does not fail
// the send.
func (s *Service) SendMessage(ctx context.Context, req SendMessageRequest) (int64, error) {
	c, err := s.chats.ChatByID(ctx, req.ChatID)
	if err != nil {
		return 0, err
	}

	other, err := s.users.UserByID(ctx, c.OtherPartyID(req.SenderID))
	if err != nil {
		return 0, err
	}

	m := Message{
		ChatID:     c.ID,
		SenderID:   req.SenderID,
		ReceiverID: req.ReceiverID,
		Content:    req.Content,
		Type:       TypeText,
		State:      StateSent,
		CreatedAt:  time.Now(),
	}
	id, err := s.messages.SaveMessage(ctx, &m)
	if err != nil {
		return 0, err
	}

	s.dispatcher.Dispatch(req.ReceiverID, Notification{
		ChatID:      c.ID,
		Type:        NotifyMessage,
		MessageType: TypeText,
		SenderID:    req.SenderID,
		ReceiverID:  req.ReceiverID,
		Content:     req.Content,
		ChatName:    other.FullName(),
	})

	return id, nil
}

// MessagesByChat returns the chat's messages in ascending creation order,
// loading media bytes back from the file store for media messages.
func (s *Service) MessagesByChat(ctx context.Context, chatID string) ([]MessageResponse, error) {
	if _, err := s.chats.ChatByID(ctx, chatID); err != nil {
		return nil, err
	}

	messages, err := s.messages.MessagesByChatID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	responses := make([]MessageResponse, 0, len(messages))
	for i := range messages {
		m := &messages[i]
		resp := MessageResponse{
			ID:         m.ID,
			Content:    m.Content,
			Type:       m.Type,
			State:      m.State,
			SenderID:   m.SenderID,
			ReceiverID: m.ReceiverID,
			CreatedAt:  m.CreatedAt,
		}
		if m.MediaPath != "" {
			media, err := s.files.Read(m.MediaPath)
			if err != nil {
				return nil, err
			}
			resp.Media = media
		}
		responses = append(responses, resp)
	}

	return responses, nil
}

// MarkSeen advances every message in the chat to SEEN in one atomic bulk
// update and pushes a SEEN notification to the other party. The notification
// sender is the viewer who performed the mark, resolved against the chat's
// roles, not the chat's structural sender.
func (s *Service) MarkSeen(ctx context.Context, chatID, viewerID string) error {
	c, err := s.chats.ChatByID(ctx, chatID)
	if err != nil {
		return err
	}

	mover := c.SelfPartyID(viewerID)
	other := c.OtherPartyID(viewerID)

	if err := s.messages.SetMessagesStateByChatID(ctx, chatID, StateSeen); err != nil {
		return err
	}

	s.logger.Debugf("Marked chat (id: %s) as seen by user (id: %s)", chatID, viewerID)

	s.dispatcher.Dispatch(other, Notification{
		ChatID:     c.ID,
		Type:       NotifySeen,
		SenderID:   mover,
		ReceiverID: other,
	})

	return nil
}

// UploadMedia classifies the attachment, stores its bytes, persists a media
// message at SENT and pushes the classified notification with the media
// bytes read back from the file store. An attachment matching no message
// kind is rejected before anything is written.
func (s *Service) UploadMedia(ctx context.Context, chatID, uploaderID, filename, contentType string, data []byte) (int64, error) {
	c, err := s.chats.ChatByID(ctx, chatID)
	if err != nil {
		return 0, err
	}

	senderID := c.SelfPartyID(uploaderID)
	receiverID := c.OtherPartyID(uploaderID)

	msgType, ok := MessageTypeOf(contentType, filename)
	if !ok {
		return 0, ErrUnknownAttachment
	}

	receiver, err := s.users.UserByID(ctx, receiverID)
	if err != nil {
		return 0, err
	}

	path, err := s.files.Save(data, senderID)
	if err != nil {
		return 0, err
	}

	m := Message{
		ChatID:     c.ID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Type:       msgType,
		State:      StateSent,
		MediaPath:  path,
		CreatedAt:  time.Now(),
	}
	id, err := s.messages.SaveMessage(ctx, &m)
	if err != nil {
		return 0, err
	}

	media, err := s.files.Read(path)
	if err != nil {
		// the message is already persisted, push the event without bytes
		s.logger.Warnf("reading media back from %s: %v", path, err)
		media = nil
	}

	s.dispatcher.Dispatch(receiverID, Notification{
		ChatID:      c.ID,
		Type:        NotificationTypeOf(contentType, filename),
		MessageType: msgType,
		SenderID:    senderID,
		ReceiverID:  receiverID,
		Media:       media,
		ChatName:    receiver.FullName(),
	})

	return id, nil
}

// lastMessagePreview is what a chat summary shows for the latest message.
func lastMessagePreview(m *Message) string {
	if m.Type == TypeText {
		return m.Content
	}
	return "Attachment"
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		LastSeen:  u.LastSeen,
		Online:    u.Online(),
	}
}
