package chat

import (
	"encoding/json"

	"go.uber.org/zap"
)

// Transport pushes a payload to a user's live connection. Send reports
// whether the payload was handed to a connection; absence of a connection is
// an ordinary false, never an error.
type Transport interface {
	Send(userID string, payload []byte) bool
}

// Dispatcher addresses notifications to a single recipient and attempts
// best-effort delivery over the transport. At most once, no retry, no queue.
type Dispatcher struct {
	logger    *zap.SugaredLogger
	transport Transport
}

// NewDispatcher returns a Dispatcher pushing over the provided transport.
func NewDispatcher(logger *zap.SugaredLogger, transport Transport) *Dispatcher {
	return &Dispatcher{
		logger:    logger,
		transport: transport,
	}
}

// Dispatch delivers the notification to the recipient's live connection if
// one is registered. A recipient without a connection is a no-op; the
// triggering operation already succeeded and stays successful.
func (d *Dispatcher) Dispatch(recipientID string, n Notification) bool {
	payload, err := json.Marshal(n)
	if err != nil {
		d.logger.Errorf("marshaling %s notification for user (id: %s): %v", n.Type, recipientID, err)
		return false
	}

	delivered := d.transport.Send(recipientID, payload)
	if !delivered {
		d.logger.Debugf("no live connection for user (id: %s), dropping %s notification", recipientID, n.Type)
	}

	return delivered
}
