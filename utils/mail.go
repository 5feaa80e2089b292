package utils

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

const defaultMailTimeout = 30 * time.Second

// SMTPConfig holds the outgoing mail server. An incomplete config means mail is disabled.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	FromName string `yaml:"from_name"`
	// Timeout bounds one whole delivery, dial included. Zero means 30s.
	Timeout time.Duration `yaml:"timeout"`
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port != "" && c.Username != "" && c.Password != ""
}

// Mail is a multipart/alternative message.
type Mail struct {
	To      []string
	Subject string
	Plain   string
	HTML    string
}

const mailBoundary = "----=_RAGEROOM_MAIL_BOUNDARY"

func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(strings.TrimSpace(s))
}

// Render builds the RFC 5322 message sent by SendMail.
func (c SMTPConfig) Render(m Mail) []byte {
	var sb strings.Builder
	fmt.Fprintf(&sb, "From: %s <%s>\r\n", headerSafe(c.FromName), c.Username)
	fmt.Fprintf(&sb, "To: %s\r\n", headerSafe(strings.Join(m.To, ", ")))
	fmt.Fprintf(&sb, "Subject: %s\r\n", headerSafe(m.Subject))
	sb.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&sb, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", mailBoundary)

	fmt.Fprintf(&sb, "--%s\r\n", mailBoundary)
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(m.Plain + "\r\n")

	fmt.Fprintf(&sb, "--%s\r\n", mailBoundary)
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(m.HTML + "\r\n")

	fmt.Fprintf(&sb, "--%s--\r\n", mailBoundary)
	return []byte(sb.String())
}

func (c SMTPConfig) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return defaultMailTimeout
}

// SendMail delivers m the way smtp.SendMail does (STARTTLS when offered, then PLAIN auth)
// but gives up once the timeout elapses.
func (c SMTPConfig) SendMail(m Mail) error {
	timeout := c.timeout()
	addr := net.JoinHostPort(c.Host, c.Port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	defer conn.Close()
	if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}

	client, err := smtp.NewClient(conn, c.Host)
	if err != nil {
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: c.Host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if ok, _ := client.Extension("AUTH"); ok {
		if err := client.Auth(smtp.PlainAuth("", c.Username, c.Password, c.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(c.Username); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, to := range m.To {
		if err := client.Rcpt(to); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", to, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(c.Render(m)); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return client.Quit()
}
