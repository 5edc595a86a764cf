// Package email sends transactional mail through SendGrid, or logs it when no API key is configured.
package email

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"halal-directory/internal/config"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const sendEndpoint = "/v3/mail/send"

// ClaimVerification is the content of a business claim verification email
type ClaimVerification struct {
	ToEmail      string
	ToName       string
	BusinessName string
	ClaimantName string
	VerifyURL    string
}

// Service handles email sending
type Service struct {
	fromEmail string
	fromName  string
	client    *sendgrid.Client
	logger    *zap.Logger
}

// NewService creates a SendGrid-backed service when an API key is set,
// otherwise a console-only service for development.
func NewService(cfg config.EmailConfig, logger *zap.Logger) *Service {
	return newService(cfg, "", logger)
}

func newService(cfg config.EmailConfig, host string, logger *zap.Logger) *Service {
	s := &Service{
		fromEmail: cfg.FromAddress,
		fromName:  cfg.FromName,
		logger:    logger,
	}

	if cfg.SendGridAPIKey == "" {
		logger.Warn("Email service in console-only mode; set EMAIL_SENDGRID_API_KEY to send mail")
		return s
	}

	req := sendgrid.GetRequest(cfg.SendGridAPIKey, sendEndpoint, host)
	req.Method = "POST"
	s.client = &sendgrid.Client{Request: req}
	logger.Info("Email service initialized with SendGrid")
	return s
}

// claimVerificationHTML escapes every field; names come from untrusted claim input
var claimVerificationHTML = template.Must(template.New("claim").Parse(`
		<html>
		<body>
			<h2>Business claim request</h2>
			<p>Hello,</p>
			<p>{{.ClaimantName}} has asked to manage the listing for <strong>{{.BusinessName}}</strong>.</p>
			<p>If this request is legitimate, confirm it by following the link below:</p>
			<p><a href="{{.VerifyURL}}">{{.VerifyURL}}</a></p>
			<p>If you did not expect this request, you can safely ignore this email.</p>
		</body>
		</html>
`))

// SendClaimVerification mails the verification link to the listing's on-file address
func (s *Service) SendClaimVerification(ctx context.Context, msg ClaimVerification) error {
	subject := fmt.Sprintf("Verify your claim for %s", msg.BusinessName)

	var html strings.Builder
	if err := claimVerificationHTML.Execute(&html, msg); err != nil {
		return fmt.Errorf("failed to render claim email: %w", err)
	}

	plain := fmt.Sprintf(`Hello,

%s has asked to manage the listing for %s.

If this request is legitimate, confirm it by following the link below:

%s

If you did not expect this request, you can safely ignore this email.
`, msg.ClaimantName, msg.BusinessName, msg.VerifyURL)

	if s.client == nil {
		s.logger.Info("Email not sent (console mode)",
			zap.String("to", msg.ToEmail),
			zap.String("subject", subject),
			zap.String("action_url", msg.VerifyURL),
		)
		return nil
	}

	return s.send(ctx, msg.ToEmail, msg.ToName, subject, html.String(), plain)
}

func (s *Service) send(ctx context.Context, toEmail, toName, subject, htmlBody, plainBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainBody, htmlBody)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	if response.StatusCode >= 400 {
		s.logger.Error("SendGrid rejected email",
			zap.Int("status", response.StatusCode),
			zap.String("body", response.Body),
		)
		return fmt.Errorf("sendgrid returned error status: %d", response.StatusCode)
	}

	s.logger.Info("Email sent", zap.String("to", toEmail), zap.Int("status", response.StatusCode))
	return nil
}
