package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"
)

var ErrNotConfigured = errors.New("email not configured: set SMTP_HOST, SMTP_USER, SMTP_PASSWORD")

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Timeout  time.Duration
}

func (c SMTPConfig) Configured() bool {
	return c.Host != "" && c.User != "" && c.Password != ""
}

func (c SMTPConfig) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.User
}

// SMTPTransport отправляет письма через SMTP с STARTTLS, если сервер его поддерживает
type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) client() (*mail.Client, error) {
	if !t.cfg.Configured() {
		return nil, ErrNotConfigured
	}
	return mail.NewClient(t.cfg.Host,
		mail.WithPort(t.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(t.cfg.User),
		mail.WithPassword(t.cfg.Password),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(t.cfg.Timeout),
	)
}

// Send возвращает Message-ID отправленного письма
func (t *SMTPTransport) Send(ctx context.Context, to, subject, htmlBody string) (string, error) {
	c, err := t.client()
	if err != nil {
		return "", err
	}

	from := t.cfg.sender()
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return "", fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := m.To(to); err != nil {
		return "", fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	messageID := uuid.NewString() + "@" + domainOf(from)
	m.SetMessageIDWithValue(messageID)

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		return "", fmt.Errorf("cannot send email via %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
	}
	return "<" + messageID + ">", nil
}

// Verify проверяет соединение и авторизацию на SMTP-сервере
func (t *SMTPTransport) Verify(ctx context.Context) error {
	c, err := t.client()
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("cannot connect to SMTP server %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
	}
	return c.Close()
}

// Config возвращает настройки с применёнными значениями по умолчанию
func (t *SMTPTransport) Config() SMTPConfig { return t.cfg }

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return strings.TrimRight(addr[i+1:], ">")
	}
	return "localhost"
}
