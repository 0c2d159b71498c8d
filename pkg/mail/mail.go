package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

type Mailer interface {
	SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error
	SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error
}

type SMTPMailService struct {
	smtpHost     string
	smtpPort     string
	smtpUsername string
	smtpPassword string
	senderEmail  string
}

func NewSMTPMailService(host, port, username, password, from string) *SMTPMailService {
	return &SMTPMailService{
		smtpHost:     host,
		smtpPort:     port,
		smtpUsername: username,
		smtpPassword: password,
		senderEmail:  from,
	}
}

func (s *SMTPMailService) send(recipientEmail string, headers []string, body string) error {
	msg := []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)

	var auth smtp.Auth
	if s.smtpUsername != "" {
		auth = smtp.PlainAuth("", s.smtpUsername, s.smtpPassword, s.smtpHost)
	}
	return smtp.SendMail(
		fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort),
		auth,
		s.senderEmail,
		[]string{recipientEmail},
		msg,
	)
}

func (s *SMTPMailService) SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error {
	headers := []string{
		"From: " + s.senderEmail,
		"To: " + recipientEmail,
		"Subject: " + subject,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.send(recipientEmail, headers, body)
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SMTPMailService) SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error {
	headers := []string{
		"From: " + s.senderEmail,
		"To: " + recipientEmail,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=\"utf-8\"",
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.send(recipientEmail, headers, htmlBody)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("failed to send HTML email: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("email sending canceled: %w", ctx.Err())
	}
}
