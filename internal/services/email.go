package services

import (
	"fmt"
	"html"
	"net/smtp"
	"strings"

	"github.com/zarenu/zare-api/internal/config"
	"github.com/zarenu/zare-api/internal/models"
)

type EmailService struct {
	cfg config.SMTPConfig
}

func NewEmailService(cfg config.SMTPConfig) *EmailService {
	return &EmailService{cfg: cfg}
}

func (s *EmailService) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.From != ""
}

// Send is a no-op when SMTP is not configured.
func (s *EmailService) Send(to, subject, body string) error {
	if !s.IsConfigured() || to == "" {
		return nil
	}

	addr := fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(buildMessage(s.cfg.From, to, subject, body)))
}

var headerSanitizer = strings.NewReplacer("\r", "", "\n", " ")

func buildMessage(from, to, subject, body string) string {
	subject = headerSanitizer.Replace(subject)
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		from, to, subject, body)
}

func contactNotificationBody(c *models.ContactSubmission) string {
	return fmt.Sprintf(`
		<html>
		<body>
			<h2>New contact submission</h2>
			<p><strong>From:</strong> %s %s &lt;%s&gt;</p>
			<p>%s</p>
		</body>
		</html>
	`, html.EscapeString(c.FirstName), html.EscapeString(c.LastName),
		html.EscapeString(c.Email), html.EscapeString(c.Message))
}

// SendContactNotification tells staff about a new contact form submission.
func (s *EmailService) SendContactNotification(to string, c *models.ContactSubmission) error {
	subject := fmt.Sprintf("Contact form: %s %s", c.FirstName, c.LastName)
	return s.Send(to, subject, contactNotificationBody(c))
}
