package helpers

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// EmailSender delivers transactional mail. The SMTP implementation is used in
// production; a nil-safe no-op keeps local setups working without credentials.
type EmailSender interface {
	Send(to string, subject string, body string) error
}

type smtpSender struct {
	host string
	port string
	user string
	pass string
	from string
}

// NewEmailSender reads SMTP_* from the environment. When SMTP_HOST is unset it
// returns a sender that only logs, so order flows never block on mail config.
func NewEmailSender() EmailSender {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return logSender{}
	}
	return &smtpSender{
		host: host,
		port: os.Getenv("SMTP_PORT"),
		user: os.Getenv("SMTP_USER"),
		pass: os.Getenv("SMTP_PASS"),
		from: os.Getenv("SMTP_FROM"),
	}
}

func (s *smtpSender) Send(to string, subject string, body string) error {
	msg := []byte("From: " + s.from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body)
	auth := smtp.PlainAuth("", s.user, s.pass, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	return smtp.SendMail(addr, auth, s.from, []string{to}, msg)
}

type logSender struct{}

func (logSender) Send(to string, subject string, body string) error {
	log.Printf("email disabled, would send %q to %s", subject, to)
	return nil
}

// OrderReceiptBody renders the payment confirmation mail.
func OrderReceiptBody(orderId string, amount float64) string {
	return fmt.Sprintf(
		"<h2>Thanks for your order!</h2><p>Order <b>%s</b> is confirmed. Amount paid: %.2f.</p><p>You can track your delivery live from the app.</p>",
		orderId, amount)
}
