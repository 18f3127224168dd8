package chat

// Viewer-relative identity. A chat's sender/recipient roles are fixed at
// creation, so anything shown to a viewer has to re-derive which party is
// "me" and which is "them" instead of trusting the role labels.

// OtherPartyID returns the participant who is not the viewer. A viewer
// matching neither participant resolves to the recipient role, as if the
// viewer were the sender; this is a permissive fallback, not an
// authorization check.
func (c *Chat) OtherPartyID(viewerID string) string {
	if c.RecipientID == viewerID {
		return c.SenderID
	}
	return c.RecipientID
}

// SelfPartyID returns the participant the viewer acts as: the matching role,
// or the sender role for a viewer matching neither participant.
func (c *Chat) SelfPartyID(viewerID string) string {
	if c.RecipientID == viewerID {
		return c.RecipientID
	}
	return c.SenderID
}

// UnreadCount counts messages addressed to the viewer that have not been
// seen yet.
func UnreadCount(messages []Message, viewerID string) int64 {
	var n int64
	for i := range messages {
		m := &messages[i]
		if m.ReceiverID == viewerID && m.State != StateSeen {
			n++
		}
	}
	return n
}
