package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"fleetledger-backend/internal/config"
	"fleetledger-backend/internal/domain"
	"fleetledger-backend/internal/logger"
)

type emailService struct {
	client  *sendgrid.Client
	from    *mail.Email
	adminTo *mail.Email
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	return &emailService{
		client:  sendgrid.NewSendClient(cfg.APIKey),
		from:    mail.NewEmail(cfg.FromName, cfg.FromEmail),
		adminTo: mail.NewEmail("Fleet Admin", cfg.AdminEmail),
	}
}

func (s *emailService) SendReminderEmail(ctx context.Context, toEmail, toName string, reminder *domain.Reminder) error {
	to := s.adminTo
	if toEmail != "" {
		to = mail.NewEmail(toName, toEmail)
	}

	subject := fmt.Sprintf("[%s] %s", reminder.Severity, reminder.Title)
	plain := fmt.Sprintf("%s\n\nDue: %s", reminder.Message, reminder.DueOn.Format("2 Jan 2006"))
	html := fmt.Sprintf("<p>%s</p><p><strong>Due:</strong> %s</p>", reminder.Message, reminder.DueOn.Format("2 Jan 2006"))

	return s.send(mail.NewSingleEmail(s.from, subject, to, plain, html))
}

func (s *emailService) SendAdminNotification(ctx context.Context, subject, message string) error {
	return s.send(mail.NewSingleEmail(s.from, subject, s.adminTo, message, fmt.Sprintf("<p>%s</p>", message)))
}

func (s *emailService) send(message *mail.SGMailV3) error {
	resp, err := s.client.Send(message)
	if err != nil {
		logger.Error("sendgrid send failed", "error", err)
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 400 {
		logger.Error("sendgrid rejected message", "status", resp.StatusCode, "body", resp.Body)
		return fmt.Errorf("send email: sendgrid status %d", resp.StatusCode)
	}
	return nil
}
