// Package mailer sends transactional email over SMTP.
//
// Local dev points at Mailpit (localhost:1025, no auth); production
// points at a real relay with credentials. Email delivery is best
// effort: callers that must not block on the relay use SendAsync.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Email is a single outbound message. HTMLBody is optional; when both
// bodies are present the message goes out as multipart/alternative.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer holds SMTP relay settings.
type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
	log  *zap.Logger
}

// New builds a Mailer. Empty user/pass means an unauthenticated relay
// (Mailpit and friends).
func New(host string, port int, user, pass, from string, log *zap.Logger) *Mailer {
	return &Mailer{host: host, port: port, user: user, pass: pass, from: from, log: log}
}

// Send delivers the message synchronously.
func (m *Mailer) Send(e Email) error {
	if e.To == "" {
		return fmt.Errorf("email has no recipient")
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	msg := m.buildMessage(e)
	if err := smtp.SendMail(addr, auth, m.from, []string{e.To}, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", e.To, err)
	}
	return nil
}

// SendAsync delivers the message on a goroutine and logs failures.
// Welcome and receipt emails ride this path so a slow relay never
// delays the request.
func (m *Mailer) SendAsync(e Email) {
	go func() {
		if err := m.Send(e); err != nil {
			m.log.Warn("async email send failed",
				zap.String("to", e.To),
				zap.String("subject", e.Subject),
				zap.Error(err))
		}
	}()
}

const multipartBoundary = "attendease-alt-boundary"

func (m *Mailer) buildMessage(e Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", e.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", e.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	switch {
	case e.HTMLBody != "" && e.TextBody != "":
		fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", multipartBoundary)
		fmt.Fprintf(&b, "--%s\r\n", multipartBoundary)
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(e.TextBody)
		fmt.Fprintf(&b, "\r\n--%s\r\n", multipartBoundary)
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(e.HTMLBody)
		fmt.Fprintf(&b, "\r\n--%s--\r\n", multipartBoundary)
	case e.HTMLBody != "":
		b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
		b.WriteString(e.HTMLBody)
	default:
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n\r\n")
		b.WriteString(e.TextBody)
	}
	return []byte(b.String())
}
