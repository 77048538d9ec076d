// Package mailer sends transactional emails (booking confirmations,
// appointment reminders) over SMTP.
package mailer

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"-"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

func (c Config) Enabled() bool {
	return c.Host != "" && c.From != ""
}

type Attachment struct {
	Name string
	Data []byte
}

type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	TextBody    string
	Attachments []Attachment
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPSender struct {
	cfg    Config
	dialer *gomail.Dialer
}

func NewSMTPSender(cfg Config) *SMTPSender {
	return &SMTPSender{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(s.build(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

func (s *SMTPSender) build(msg Message) *gomail.Message {
	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	m.SetAddressHeader("From", s.cfg.From, s.cfg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	for _, a := range msg.Attachments {
		data := a.Data
		m.Attach(a.Name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}
	return m
}

// LogSender only logs messages; used when SMTP is not configured
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("attachments", len(msg.Attachments)).
		Msg("smtp disabled, email not sent")
	return nil
}

// New returns an SMTP sender when cfg is complete, a LogSender otherwise
func New(cfg Config, logger zerolog.Logger) Sender {
	if cfg.Enabled() {
		return NewSMTPSender(cfg)
	}
	return LogSender{Logger: logger}
}
