// Package services - invitation email for provisioned dashboard accounts.
// File: services/mailer.go
package services

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"athproof/logger"
	"athproof/models"
)

// Mailer delivers the one-time credentials to a freshly provisioned admin.
type Mailer interface {
	SendInvite(ctx context.Context, acct models.AdminAccount, tempPassword string) error
}

// ResendMailer sends invitations through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewResendMailer builds a mailer with the given API key and sender address.
func NewResendMailer(apiKey, from string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

// SendInvite emails the account code and temporary password.
func (m *ResendMailer) SendInvite(ctx context.Context, acct models.AdminAccount, tempPassword string) error {
	html := fmt.Sprintf(
		`<p>Hello %s,</p>
<p>An ATH-PROOF dashboard account has been created for you.</p>
<p>Access code: <strong>%s</strong><br>
Temporary password: <strong>%s</strong></p>
<p>Sign in with your email address and change the password on first use.</p>`,
		acct.Name, acct.Code, tempPassword)

	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{acct.Email},
		Subject: "Your ATH-PROOF dashboard access",
		Html:    html,
	})
	if err != nil {
		logger.Error.Printf("[SendInvite] Delivery failed for %s: %v", acct.Email, err)
		return fmt.Errorf("send invite: %w", err)
	}
	logger.Info.Printf("[SendInvite] Invitation %s sent to %s", sent.Id, acct.Email)
	return nil
}

// NoopMailer is used when no API key is configured; the credentials are only
// shown on the provisioning screen.
type NoopMailer struct{}

// SendInvite logs and drops the invitation.
func (NoopMailer) SendInvite(_ context.Context, acct models.AdminAccount, _ string) error {
	logger.Warn.Printf("[SendInvite] Mailer disabled; invitation for %s not sent", acct.Email)
	return nil
}
