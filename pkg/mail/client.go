package mail

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go/v3"

	"github.com/medbasket/medbasket-backend/pkg/config"
	pkgerrors "github.com/medbasket/medbasket-backend/pkg/errors"
	"github.com/medbasket/medbasket-backend/pkg/logger"
)

// Sender delivers transactional email.
type Sender interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Client sends transactional email through Resend.
type Client struct {
	resend *resend.Client
	from   string
	logger *logger.Logger
}

// NewClient builds a mail client. An empty API key yields a disabled client
// that reports every send as a dependency error, keeping the workflow's
// fire-and-forget semantics intact in environments without email.
func NewClient(cfg config.ResendConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errors.New("mail logger is required")
	}
	c := &Client{
		from:   cfg.DefaultFrom,
		logger: logg,
	}
	if strings.TrimSpace(cfg.APIKey) != "" {
		c.resend = resend.NewClient(cfg.APIKey)
	}
	return c, nil
}

// Send delivers a single HTML email.
func (c *Client) Send(ctx context.Context, to, subject, html string) error {
	if c.resend == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "email sending is not configured")
	}
	if strings.TrimSpace(to) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "recipient email required")
	}

	params := &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	sent, err := c.resend.Emails.SendWithContext(ctx, params)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send email")
	}

	logCtx := c.logger.WithFields(ctx, map[string]any{"email_id": sent.Id, "to": to})
	c.logger.Info(logCtx, "email dispatched")
	return nil
}
