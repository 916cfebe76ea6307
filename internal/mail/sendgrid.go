package mail

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers transactional email. The only message the storefront sends
// itself is the sign-in code; everything else is the payment processor's job.
type Mailer interface {
	Send(toEmail, subject, textContent, htmlContent string) error
}

type SendGridMailer struct {
	APIKey   string
	FromName string
	FromAddr string
}

func (m *SendGridMailer) Send(toEmail, subject, textContent, htmlContent string) error {
	if m.APIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is not set")
	}

	from := mail.NewEmail(m.FromName, m.FromAddr)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, textContent, htmlContent)

	client := sendgrid.NewSendClient(m.APIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", toEmail, err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("send mail to %s: status %d: %s", toEmail, response.StatusCode, response.Body)
	}
	return nil
}
