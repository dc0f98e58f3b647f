// Package mail delivers account e-mails.
package mail

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
)

// Verification is the content of an address-confirmation e-mail.
type Verification struct {
	To       string
	UserName string
	Link     string
}

// Sender delivers e-mails. Implementations must be safe for concurrent use.
type Sender interface {
	SendVerification(ctx context.Context, v Verification) error
}

// LogSender writes e-mails to the log instead of delivering them. It is the
// default when no mail relay is configured.
type LogSender struct {
	logger logging.Logger
}

func NewLogSender(logger logging.Logger) *LogSender {
	return &LogSender{logger: logger.With("module", "mail")}
}

func (s *LogSender) SendVerification(ctx context.Context, v Verification) error {
	s.logger.Info(ctx, "verification e-mail", "to", v.To, "username", v.UserName, "link", v.Link)
	return nil
}

// Outbox keeps sent e-mails in memory.
type Outbox struct {
	mu   sync.Mutex
	sent []Verification
	Err  error
}

func (o *Outbox) SendVerification(_ context.Context, v Verification) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.sent = append(o.sent, v)
	return nil
}

// Sent returns a copy of everything delivered so far.
func (o *Outbox) Sent() []Verification {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Verification(nil), o.sent...)
}
