package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"movie-ticket/pkg/utils"

	"go.uber.org/zap"
)

// Mailer sends transactional emails. Implementations must be safe for
// concurrent use.
type Mailer interface {
	SendInvoice(to, name string, invoice Invoice) error
	SendPasswordReset(to, name, resetURL string) error
}

// Invoice is the data rendered into the booking confirmation email.
type Invoice struct {
	OrderID     string
	MovieTitle  string
	ShowTime    string
	RoomName    string
	Seats       []string
	TotalAmount float64
}

type smtpMailer struct {
	config utils.EmailConfig
	log    *zap.Logger
}

func NewSMTPMailer(config utils.EmailConfig, log *zap.Logger) Mailer {
	return &smtpMailer{
		config: config,
		log:    log.With(zap.String("adapter", "mailer")),
	}
}

func (m *smtpMailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.config.Host, m.config.Port)
	auth := smtp.PlainAuth("", m.config.User, m.config.Password, m.config.Host)

	msg := strings.Join([]string{
		"From: " + m.config.From,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(addr, auth, m.config.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}

	m.log.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func (m *smtpMailer) SendInvoice(to, name string, invoice Invoice) error {
	subject := fmt.Sprintf("Your tickets for %s (%s)", invoice.MovieTitle, invoice.OrderID)
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"Thank you for your booking. Here are your ticket details:\n\n"+
			"Order ID   : %s\n"+
			"Movie      : %s\n"+
			"Show time  : %s\n"+
			"Room       : %s\n"+
			"Seats      : %s\n"+
			"Total paid : %.0f VND\n\n"+
			"Please show this email at the entrance.\n",
		name, invoice.OrderID, invoice.MovieTitle, invoice.ShowTime,
		invoice.RoomName, strings.Join(invoice.Seats, ", "), invoice.TotalAmount)

	return m.send(to, subject, body)
}

func (m *smtpMailer) SendPasswordReset(to, name, resetURL string) error {
	subject := "Password reset request"
	body := fmt.Sprintf(
		"Hi %s,\n\n"+
			"We received a request to reset your password. Open the link below to continue:\n\n"+
			"%s\n\n"+
			"If you did not request this, you can ignore this email.\n",
		name, resetURL)

	return m.send(to, subject, body)
}
