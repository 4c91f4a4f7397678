package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/noah-isme/alumni-network-api/pkg/config"
)

// Attachment is a file carried with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is a single outbound email with a plain-text body and an optional HTML alternative.
type Message struct {
	To          string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Sender delivers one message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Dialer opens an authenticated SMTP session. *gomail.Dialer satisfies it.
type Dialer interface {
	Dial() (gomail.SendCloser, error)
}

// SMTPMailer sends mail over a bounded pool of reusable SMTP sessions. At most
// PoolSize sessions are open at once; idle sessions are kept for the next send.
type SMTPMailer struct {
	dialer   Dialer
	from     string
	fromName string
	logger   *zap.Logger

	slots chan struct{}
	idle  chan gomail.SendCloser
}

// NewSMTPMailer builds a mailer from configuration.
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return NewSMTPMailerWithDialer(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, logger)
}

// NewSMTPMailerWithDialer is NewSMTPMailer with an explicit dialer.
func NewSMTPMailerWithDialer(dialer Dialer, cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	size := cfg.PoolSize
	if size <= 0 {
		size = 1
	}
	return &SMTPMailer{
		dialer:   dialer,
		from:     cfg.FromEmail,
		fromName: cfg.FromName,
		logger:   logger,
		slots:    make(chan struct{}, size),
		idle:     make(chan gomail.SendCloser, size),
	}
}

// Send delivers msg, waiting for a free session slot. A pooled session that
// fails is discarded and the send is retried once on a fresh session.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if strings.TrimSpace(msg.To) == "" {
		return errors.New("mail: recipient required")
	}
	select {
	case m.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-m.slots }()

	gm := m.compose(msg)

	sc, pooled, err := m.acquire()
	if err != nil {
		return fmt.Errorf("mail: dial: %w", err)
	}
	err = gomail.Send(sc, gm)
	if err != nil && pooled {
		_ = sc.Close()
		m.logger.Debug("pooled smtp session failed, redialing", zap.Error(err))
		if sc, err = m.dialer.Dial(); err != nil {
			return fmt.Errorf("mail: dial: %w", err)
		}
		err = gomail.Send(sc, gm)
	}
	if err != nil {
		_ = sc.Close()
		return fmt.Errorf("mail: send to %s: %w", msg.To, err)
	}
	m.release(sc)
	return nil
}

// Close shuts every idle session.
func (m *SMTPMailer) Close() error {
	var errs []error
	for {
		select {
		case sc := <-m.idle:
			if err := sc.Close(); err != nil {
				errs = append(errs, err)
			}
		default:
			return errors.Join(errs...)
		}
	}
}

func (m *SMTPMailer) acquire() (gomail.SendCloser, bool, error) {
	select {
	case sc := <-m.idle:
		return sc, true, nil
	default:
	}
	sc, err := m.dialer.Dial()
	return sc, false, err
}

func (m *SMTPMailer) release(sc gomail.SendCloser) {
	select {
	case m.idle <- sc:
	default:
		_ = sc.Close()
	}
}

func (m *SMTPMailer) compose(msg Message) *gomail.Message {
	gm := gomail.NewMessage()
	if m.fromName != "" {
		gm.SetAddressHeader("From", m.from, m.fromName)
	} else {
		gm.SetHeader("From", m.from)
	}
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		gm.AddAlternative("text/html", msg.HTML)
	}
	for _, a := range msg.Attachments {
		data := a.Data
		settings := []gomail.FileSetting{
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(data)
				return err
			}),
		}
		if a.ContentType != "" {
			settings = append(settings, gomail.SetHeader(map[string][]string{"Content-Type": {a.ContentType}}))
		}
		gm.Attach(a.Filename, settings...)
	}
	return gm
}
