package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the Mailgun API root used when Config leaves it unset.
const DefaultBaseURL = "https://api.mailgun.net/v3"

// Config holds mailer settings. SupportEmail and, for Mailgun, APIKey are
// required; DefaultSender falls back to SupportEmail.
type Config struct {
	BaseURL       string
	Enabled       bool
	SupportEmail  string
	APIKey        string
	DefaultSender string
	Timeout       time.Duration
}

func (c *Config) normalize(needKey bool) error {
	if c.SupportEmail == "" {
		return fmt.Errorf("%w: support email", ErrMissingSetting)
	}
	if needKey && c.APIKey == "" {
		return fmt.Errorf("%w: api key", ErrMissingSetting)
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.DefaultSender == "" {
		c.DefaultSender = c.SupportEmail
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	return nil
}

// Mailgun sends through the Mailgun messages API.
type Mailgun struct {
	cfg    Config
	client *resty.Client
}

func NewMailgun(cfg Config) (*Mailgun, error) {
	if err := cfg.normalize(true); err != nil {
		return nil, err
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetBasicAuth("api", cfg.APIKey).
		SetHeader("Accept", "application/json")
	return &Mailgun{cfg: cfg, client: client}, nil
}

// Config returns the normalized settings.
func (m *Mailgun) Config() Config {
	return m.cfg
}

func (m *Mailgun) form(msg Message) (url.Values, error) {
	sender := msg.Sender
	if sender == "" {
		sender = m.cfg.DefaultSender
	}

	form := url.Values{}
	form.Set("from", sender)
	for _, to := range msg.To {
		form.Add("to", to)
	}
	form.Set("subject", msg.Subject)

	if msg.Template != "" {
		form.Set("template", msg.Template)
		if len(msg.Variables) > 0 {
			vars, err := json.Marshal(msg.Variables)
			if err != nil {
				return nil, err
			}
			form.Set("h:X-Mailgun-Variables", string(vars))
		}
	} else {
		form.Set("text", msg.Body)
	}
	return form, nil
}

// Send posts msg. When sending is disabled it does nothing.
func (m *Mailgun) Send(ctx context.Context, msg Message) (*Result, error) {
	if !m.cfg.Enabled {
		return nil, nil
	}
	if err := msg.validate(); err != nil {
		return nil, err
	}
	form, err := m.form(msg)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	resp, err := m.client.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		SetResult(result).
		Post("/messages")
	if err != nil {
		return nil, fmt.Errorf("mailgun request: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mailgun: %s: %s", resp.Status(), strings.TrimSpace(resp.String()))
	}
	return result, nil
}
