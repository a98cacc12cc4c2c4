// Package mail provides a fluent mailer with pluggable transports (SMTP,
// log, in-memory fake).
//
//	mail.To("sophie@example.com").
//	    WithSubject("Bienvenue dans le Cercle Diamant Rouge").
//	    Template("newsletter_welcome.html", data).
//	    Send(ctx)
package mail

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"mime"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"github.com/diamantrouge/maison/config"
	"github.com/diamantrouge/maison/pkg/logger"
)

// SMTP holds connection settings.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

func defaultSMTP() SMTP {
	return SMTP{
		Host:     config.MailHost(),
		Port:     config.MailPort(),
		Username: config.MailUsername(),
		Password: config.MailPassword(),
		From:     config.MailFrom(),
	}
}

// Message is a fluent builder for an email.
type Message struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool
	err     error
}

// To starts a message for the given recipients.
func To(addresses ...string) *Message {
	return &Message{To: addresses, IsHTML: true}
}

func (m *Message) CC(addresses ...string) *Message {
	m.Cc = append(m.Cc, addresses...)
	return m
}

func (m *Message) BCC(addresses ...string) *Message {
	m.Bcc = append(m.Bcc, addresses...)
	return m
}

func (m *Message) WithSubject(s string) *Message {
	m.Subject = s
	return m
}

// HTML sets an HTML body.
func (m *Message) HTML(html string) *Message {
	m.Body = html
	m.IsHTML = true
	return m
}

// Text sets a plain-text body.
func (m *Message) Text(text string) *Message {
	m.Body = text
	m.IsHTML = false
	return m
}

// Template renders one of the templates registered with UseTemplates.
// A render failure is reported by Send.
func (m *Message) Template(name string, data any) *Message {
	tmplMu.RLock()
	t := templates
	tmplMu.RUnlock()
	if t == nil {
		m.err = fmt.Errorf("mail: no templates registered")
		return m
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, name, data); err != nil {
		m.err = fmt.Errorf("mail: render %s: %w", name, err)
		return m
	}
	m.Body = buf.String()
	m.IsHTML = true
	return m
}

// Send delivers the message through the active transport.
func (m *Message) Send(ctx context.Context) error {
	if m.err != nil {
		return m.err
	}
	if len(m.To) == 0 {
		return errors.New("mail: no recipients")
	}
	return current().Send(ctx, m)
}

// ─── Templates ────────────────────────────────────────────────────────────────

var (
	tmplMu    sync.RWMutex
	templates *template.Template
)

// UseTemplates parses every *.html file of fsys as a named template.
func UseTemplates(fsys fs.FS, pattern string) error {
	t, err := template.New("mail").ParseFS(fsys, pattern)
	if err != nil {
		return fmt.Errorf("mail: parse templates: %w", err)
	}
	tmplMu.Lock()
	templates = t
	tmplMu.Unlock()
	return nil
}

// ─── Transports ───────────────────────────────────────────────────────────────

// Transport delivers a fully built message.
type Transport interface {
	Send(ctx context.Context, m *Message) error
}

var (
	transportMu sync.RWMutex
	transport   Transport
)

// SetTransport replaces the active transport.
func SetTransport(t Transport) {
	transportMu.Lock()
	transport = t
	transportMu.Unlock()
}

func current() Transport {
	transportMu.RLock()
	t := transport
	transportMu.RUnlock()
	if t != nil {
		return t
	}
	if config.Get("MAIL_DRIVER", "smtp") == "log" {
		return LogTransport{}
	}
	return &SMTPTransport{Config: defaultSMTP()}
}

// LogTransport writes messages to the logger instead of sending them.
type LogTransport struct{}

func (LogTransport) Send(ctx context.Context, m *Message) error {
	logger.WithCtx(ctx).Info("mail: logged",
		"to", strings.Join(m.To, ","),
		"subject", m.Subject,
		"bytes", len(m.Body),
	)
	return nil
}

// SMTPTransport delivers over SMTP. Port 465 uses implicit TLS; other ports
// use STARTTLS when the server offers it. Auth is skipped without a username
// (local catchers such as MailHog).
type SMTPTransport struct {
	Config SMTP
}

func (t *SMTPTransport) Send(ctx context.Context, m *Message) error {
	cfg := t.Config
	raw := m.Raw(cfg.From)
	rcpts := append(append(append([]string{}, m.To...), m.Cc...), m.Bcc...)

	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}

	addr := cfg.Host + ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		if cfg.Port == "465" {
			errCh <- sendTLS(addr, auth, envelopeFrom(cfg.From), rcpts, raw, cfg.Host)
			return
		}
		errCh <- smtp.SendMail(addr, auth, envelopeFrom(cfg.From), rcpts, raw)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mail: smtp send: %w", err)
		}
		return nil
	}
}

func sendTLS(addr string, auth smtp.Auth, from string, to []string, raw []byte, host string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: host})
	if err != nil {
		return fmt.Errorf("mail: TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return err
	}
	return w.Close()
}

// envelopeFrom extracts the bare address from `"Name" <addr>`.
func envelopeFrom(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		return strings.TrimSuffix(from[i+1:], ">")
	}
	return from
}

// Raw renders the RFC 5322 message.
func (m *Message) Raw(from string) []byte {
	contentType := "text/plain"
	if m.IsHTML {
		contentType = "text/html"
	}

	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(m.To, ", ") + "\r\n")
	if len(m.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(m.Cc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", m.Subject) + "\r\n")
	b.WriteString("Date: " + time.Now().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString(fmt.Sprintf("Content-Type: %s; charset=\"UTF-8\"\r\n", contentType))
	b.WriteString("\r\n")
	b.WriteString(m.Body)
	return []byte(b.String())
}

// ─── Fake ─────────────────────────────────────────────────────────────────────

// Fake records messages in memory. Install it with SetTransport in tests.
type Fake struct {
	mu   sync.Mutex
	sent []Message
	Err  error
}

func (f *Fake) Send(_ context.Context, m *Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	f.sent = append(f.sent, *m)
	return nil
}

// Sent returns a copy of every recorded message.
func (f *Fake) Sent() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Message(nil), f.sent...)
}

// SentTo returns the recorded messages addressed to addr.
func (f *Fake) SentTo(addr string) []Message {
	var out []Message
	for _, m := range f.Sent() {
		for _, to := range m.To {
			if strings.EqualFold(to, addr) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}
