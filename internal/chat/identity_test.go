package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOtherPartyID(t *testing.T) {
	t.Parallel()

	c := &Chat{ID: "c1", SenderID: "alice", RecipientID: "bob"}

	require.Equal(t, "bob", c.OtherPartyID("alice"))
	require.Equal(t, "alice", c.OtherPartyID("bob"))
}

func TestOtherPartyIDUnrecognizedViewer(t *testing.T) {
	t.Parallel()

	c := &Chat{ID: "c1", SenderID: "alice", RecipientID: "bob"}

	// an unrecognized viewer is treated as the sender
	require.Equal(t, "bob", c.OtherPartyID("mallory"))
	require.Equal(t, "alice", c.SelfPartyID("mallory"))
}

func TestSelfPartyID(t *testing.T) {
	t.Parallel()

	c := &Chat{ID: "c1", SenderID: "alice", RecipientID: "bob"}

	require.Equal(t, "alice", c.SelfPartyID("alice"))
	require.Equal(t, "bob", c.SelfPartyID("bob"))
}

func TestUnreadCount(t *testing.T) {
	t.Parallel()

	messages := []Message{
		{ID: 1, ReceiverID: "bob", State: StateSent},
		{ID: 2, ReceiverID: "bob", State: StateDelivered},
		{ID: 3, ReceiverID: "bob", State: StateSeen},
		{ID: 4, ReceiverID: "alice", State: StateSent},
	}

	require.Equal(t, int64(2), UnreadCount(messages, "bob"))
	require.Equal(t, int64(1), UnreadCount(messages, "alice"))
	require.Equal(t, int64(0), UnreadCount(nil, "bob"))
}
