package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/lezzdif22/payslip/internal/fileutils"
	"github.com/lezzdif22/payslip/internal/logging"
)

// SMTPSender sends messages through an SMTP relay, one connection per
// message.
type SMTPSender struct {
	settings Settings
	logger   logging.Logger
}

// NewSMTPSender validates settings and returns a sender. Credentials are
// required.
func NewSMTPSender(settings Settings, logger logging.Logger) (*SMTPSender, error) {
	settings = settings.Resolve()
	if settings.User == "" || settings.Password == "" {
		return nil, errors.New("SMTP user and password must be set")
	}
	if settings.From == "" {
		return nil, errors.New("SMTP sender address must be set")
	}
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &SMTPSender{settings: settings, logger: logger}, nil
}

// Settings returns the resolved settings.
func (s *SMTPSender) Settings() Settings { return s.settings }

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m, err := s.buildMessage(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(s.settings.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.settings.User),
		mail.WithPassword(s.settings.Password),
		mail.WithTimeout(30 * time.Second),
	}
	if s.settings.UseSSL {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	client, err := mail.NewClient(s.settings.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send to %s: %w", msg.To, err)
	}

	s.logger.Info("Payslip sent",
		logging.Field{Key: logging.FieldRecipient, Value: msg.To},
		logging.Field{Key: logging.FieldCount, Value: len(msg.Attachments)})
	return nil
}

func (s *SMTPSender) buildMessage(msg Message) (*mail.Msg, error) {
	if msg.To == "" {
		return nil, ErrNoRecipient
	}

	m := mail.NewMsg()
	var err error
	if s.settings.FromName != "" {
		err = m.FromFormat(s.settings.FromName, s.settings.From)
	} else {
		err = m.From(s.settings.From)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	if len(s.settings.BCC) > 0 {
		if err := m.Bcc(s.settings.BCC...); err != nil {
			return nil, fmt.Errorf("invalid bcc address: %w", err)
		}
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)

	for _, path := range msg.Attachments {
		if !fileutils.FileExists(path) {
			return nil, fmt.Errorf("attachment %s: %w", path, ErrMissingAttachment)
		}
		m.AttachFile(path)
	}
	return m, nil
}
