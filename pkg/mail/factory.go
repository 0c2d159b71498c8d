package mail

import (
	"log"

	"github.com/advocaid/auth-client/internal/configs"
)

func NewMailerService(cfg *configs.Config) Mailer {
	switch cfg.Env.CurrentEnv {
	case "production":
		log.Println("INFO: Initializing Resend Mail Service for production environment.")
		return NewResendMailService(cfg.Mail.EmailAPIKey, cfg.Mail.SenderEmail)
	case "development":
		if cfg.Mail.SMTPHost == "" {
			log.Println("INFO: No SMTP host configured, mail goes to the log.")
			return NewLogMailService()
		}
		log.Println("INFO: Initializing SMTP Mail Service for development environment.")
		return NewSMTPMailService(
			cfg.Mail.SMTPHost,
			cfg.Mail.SMTPPort,
			cfg.Mail.SMTPUsername,
			cfg.Mail.SMTPPassword,
			cfg.Mail.SenderEmail,
		)
	default:
		return NewLogMailService()
	}
}
