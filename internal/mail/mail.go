// Package mail sends transactional email through Mailgun, or records it in
// memory when no real delivery is wanted.
package mail

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrNoContent      = errors.New("mail: template or body is required")
	ErrNoRecipient    = errors.New("mail: at least one recipient is required")
	ErrMissingSetting = errors.New("mail: missing required setting")
	ErrUnknownImpl    = errors.New("mail: unknown mailer implementation")
)

// Message is one outgoing email. Template takes precedence over Body;
// Variables are only sent along with a template.
type Message struct {
	To        []string
	Subject   string
	Body      string
	Sender    string
	Template  string
	Variables map[string]string
}

func (m Message) validate() error {
	if len(m.To) == 0 {
		return ErrNoRecipient
	}
	if m.Template == "" && m.Body == "" {
		return ErrNoContent
	}
	return nil
}

// Result is the provider's acknowledgement.
type Result struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// Mailer sends messages. A disabled mailer returns a nil Result and no error.
type Mailer interface {
	Send(ctx context.Context, msg Message) (*Result, error)
}

// Impl names a Mailer implementation.
type Impl string

const (
	ImplMailgun Impl = "mailgun"
	ImplDummy   Impl = "dummy"
)

// New builds the mailer named by impl.
func New(impl Impl, cfg Config) (Mailer, error) {
	switch impl {
	case ImplMailgun:
		return NewMailgun(cfg)
	case ImplDummy:
		return NewDummy(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownImpl, impl)
	}
}
