package mail

import (
	"context"
	"log"
)

// LogMailService swallows outbound mail and logs it; used by tests and by
// the stub API when no SMTP host is configured.
type LogMailService struct{}

func NewLogMailService() *LogMailService {
	return &LogMailService{}
}

func (s *LogMailService) SendPlainTextEmail(ctx context.Context, recipientEmail, subject, body string) error {
	log.Printf("mail (plain) to=%s subject=%q body=%q", recipientEmail, subject, body)
	return nil
}

func (s *LogMailService) SendHTMLEmail(ctx context.Context, recipientEmail, subject, htmlBody string) error {
	log.Printf("mail (html) to=%s subject=%q", recipientEmail, subject)
	return nil
}
