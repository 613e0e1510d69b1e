package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// EmailTransport delivers digests over authenticated SMTP with STARTTLS.
type EmailTransport struct {
	host     string
	port     int
	from     string
	password string

	// DialTimeout bounds the TCP connect. The SMTP exchange itself is not
	// context-aware; the caller's context applies at connect time only.
	DialTimeout time.Duration
}

func NewEmailTransport(host string, port int, from, password string) *EmailTransport {
	return &EmailTransport{
		host:        host,
		port:        port,
		from:        from,
		password:    password,
		DialTimeout: 15 * time.Second,
	}
}

func (t *EmailTransport) Name() string { return "email" }

func (t *EmailTransport) Send(ctx context.Context, address, subject, body string) error {
	if t.from == "" || t.password == "" {
		return fmt.Errorf("smtp credentials are not configured")
	}

	addr := net.JoinHostPort(t.host, fmt.Sprint(t.port))

	dialer := net.Dialer{Timeout: t.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, t.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake with %s: %w", addr, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: t.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	auth := smtp.PlainAuth("", t.from, t.password, t.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}

	if err := client.Mail(t.from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(address); err != nil {
		return fmt.Errorf("rcpt to %s: %w", address, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write([]byte(buildMessage(t.from, address, subject, body))); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message: %w", err)
	}

	return client.Quit()
}

func buildMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}
