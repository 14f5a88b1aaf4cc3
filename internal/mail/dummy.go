package mail

import (
	"context"
	"fmt"
	"sync"
)

// Dummy records messages instead of sending them.
type Dummy struct {
	cfg Config

	mu   sync.Mutex
	sent []Message
}

func NewDummy(cfg Config) (*Dummy, error) {
	if err := cfg.normalize(false); err != nil {
		return nil, err
	}
	return &Dummy{cfg: cfg}, nil
}

func (d *Dummy) Send(_ context.Context, msg Message) (*Result, error) {
	if !d.cfg.Enabled {
		return nil, nil
	}
	if err := msg.validate(); err != nil {
		return nil, err
	}
	if msg.Sender == "" {
		msg.Sender = d.cfg.DefaultSender
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, msg)
	return &Result{ID: fmt.Sprintf("<dummy-%d>", len(d.sent)), Message: "Queued. Thank you."}, nil
}

// Sent returns a copy of the recorded messages.
func (d *Dummy) Sent() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Message, len(d.sent))
	copy(out, d.sent)
	return out
}
