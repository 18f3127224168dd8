package chat

import "time"

// MessageState tracks delivery progress of a message. States only move
// forward: SENT -> DELIVERED -> SEEN.
type MessageState string

const (
	StateSent      MessageState = "SENT"
	StateDelivered MessageState = "DELIVERED"
	StateSeen      MessageState = "SEEN"
)

// MessageType is the kind of content a message carries.
type MessageType string

const (
	TypeText     MessageType = "TEXT"
	TypeImage    MessageType = "IMAGE"
	TypeAudio    MessageType = "AUDIO"
	TypeVideo    MessageType = "VIDEO"
	TypeDocument MessageType = "DOCUMENT"
)

// NotificationType is the kind of live event pushed to a recipient.
type NotificationType string

const (
	NotifyMessage NotificationType = "MESSAGE"
	NotifySeen    NotificationType = "SEEN"
	NotifyImage   NotificationType = "IMAGE"
	NotifyAudio   NotificationType = "AUDIO"
	NotifyVideo   NotificationType = "VIDEO"
)

// User holds profile fields plus the last activity timestamp.
// Online-ness is always derived from LastSeen, never stored.
type User struct {
	ID        string
	FirstName string
	LastName  string
	Email     string
	LastSeen  *time.Time
}

// FullName joins first and last name for display purposes.
func (u *User) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Chat is a two-party conversation. SenderID and RecipientID are structural
// roles fixed at creation; they say who initiated the chat, not who is
// viewing it now.
type Chat struct {
	ID          string
	SenderID    string
	RecipientID string
	CreatedAt   time.Time
}

// Message belongs to exactly one chat. SenderID/ReceiverID are carried
// redundantly so a message can be addressed without a chat role lookup.
// Content may be empty for pure media messages; MediaPath may be empty for
// text ones.
type Message struct {
	ID         int64
	ChatID     string
	SenderID   string
	ReceiverID string
	Content    string
	Type       MessageType
	State      MessageState
	MediaPath  string
	CreatedAt  time.Time
}

// Notification is an ephemeral addressed event. It lives only for the
// duration of a dispatch and is never persisted.
type Notification struct {
	ChatID      string           `json:"chatId"`
	Type        NotificationType `json:"type"`
	MessageType MessageType      `json:"messageType,omitempty"`
	SenderID    string           `json:"senderId"`
	ReceiverID  string           `json:"receiverId"`
	Content     string           `json:"content,omitempty"`
	Media       []byte           `json:"media,omitempty"`
	ChatName    string           `json:"chatName,omitempty"`
}

// ChatResponse is the viewer-facing summary of a chat. Name and UnreadCount
// are derived relative to the viewer on every call.
type ChatResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	UnreadCount     int64      `json:"unreadCount"`
	LastMessage     string     `json:"lastMessage,omitempty"`
	LastMessageTime *time.Time `json:"lastMessageTime,omitempty"`
	RecipientOnline bool       `json:"isRecipientOnline"`
	SenderID        string     `json:"senderId"`
	ReceiverID      string     `json:"receiverId"`
}

// MessageResponse is the wire form of a message. Media carries the raw bytes
// loaded back from the file store for media messages.
type MessageResponse struct {
	ID         int64        `json:"id"`
	Content    string       `json:"content,omitempty"`
	Type       MessageType  `json:"type"`
	State      MessageState `json:"state"`
	SenderID   string       `json:"senderId"`
	ReceiverID string       `json:"receiverId"`
	CreatedAt  time.Time    `json:"createdAt"`
	Media      []byte       `json:"media,omitempty"`
}

// UserResponse is the wire form of a user with the derived online flag.
type UserResponse struct {
	ID        string     `json:"id"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Email     string     `json:"email,omitempty"`
	LastSeen  *time.Time `json:"lastSeen,omitempty"`
	Online    bool       `json:"online"`
}
