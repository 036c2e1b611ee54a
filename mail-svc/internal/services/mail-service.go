package services

import (
	"bytes"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Sender delivers one RFC 5322 message.
type Sender interface {
	Send(to string, msg []byte) error
}

type MailService struct {
	sender       Sender
	mailFrom     string
	mailFromName string
	loginURL     string
	log          *zap.Logger
}

func NewMailService(sender Sender, mailFrom, mailFromName, loginURL string, log *zap.Logger) *MailService {
	return &MailService{
		sender:       sender,
		mailFrom:     mailFrom,
		mailFromName: mailFromName,
		loginURL:     loginURL,
		log:          log,
	}
}

func (s *MailService) SendVerified(to, name string, membershipID uint) error {
	return s.send(to, "Your membership has been verified", "verified.html", map[string]any{
		"Name":         name,
		"MembershipID": membershipID,
		"LoginURL":     s.loginURL,
	})
}

func (s *MailService) SendRejected(to, name string) error {
	return s.send(to, "Your membership registration", "rejected.html", map[string]any{
		"Name": name,
	})
}

func (s *MailService) SendRequestDecided(to, name, requestType, status, comments string) error {
	return s.send(to, fmt.Sprintf("Your %s request was %s", strings.ToLower(requestType), strings.ToLower(status)),
		"request-decided.html", map[string]any{
			"Name":        name,
			"RequestType": strings.ToLower(requestType),
			"Approved":    status == "VERIFIED",
			"Comments":    comments,
		})
}

func (s *MailService) send(to, subject, tmpl string, data map[string]any) error {
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, tmpl, data); err != nil {
		return err
	}

	msg := strings.Join([]string{
		fmt.Sprintf("From: %s <%s>", s.mailFromName, s.mailFrom),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		body.String(),
	}, "\r\n")

	if err := s.sender.Send(to, []byte(msg)); err != nil {
		return err
	}
	s.log.Info("mail sent", zap.String("to", to), zap.String("template", tmpl))
	return nil
}

// SMTPSender speaks SMTP with STARTTLS and PLAIN auth.
type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func (s SMTPSender) Send(to string, msg []byte) error {
	addr := net.JoinHostPort(s.Host, fmt.Sprint(s.Port))

	conn, err := net.DialTimeout("tcp", addr, 8*time.Second)
	if err != nil {
		return err
	}
	// bound the whole exchange so a stuck server cannot block the consumer
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	c, err := smtp.NewClient(conn, s.Host)
	if err != nil {
		_ = conn.Close()
		return err
	}
	defer func() { _ = c.Quit() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.Host}); err != nil {
			return err
		}
	}
	if err := c.Auth(smtp.PlainAuth("", s.User, s.Password, s.Host)); err != nil {
		return err
	}

	if err := c.Mail(s.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}

	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
