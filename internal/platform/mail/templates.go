package mail

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/phrazzld/cardhub-api/internal/domain"
	"github.com/phrazzld/cardhub-api/internal/service/verification"
)

type message struct {
	subject string
	tmpl    *template.Template
}

var messages = map[domain.Purpose]message{
	domain.PurposePasswordReset: {
		subject: "Password Reset Verification Code - CardHub",
		tmpl: template.Must(template.New("password_reset").Parse(`Dear {{.Username}},

You have requested to reset your password at CardHub.

Your verification code is: {{.Code}}

This code will expire in {{.Minutes}} minutes (at {{.ExpiresAt}}).

If you didn't request this, please ignore this email or contact our support.

Best regards,
CardHub Team
`)),
	},
	domain.PurposeRegistration: {
		subject: "Email Verification - CardHub",
		tmpl: template.Must(template.New("register").Parse(`Welcome to CardHub, {{.Username}}!

Your email verification code is: {{.Code}}

This code will expire in {{.Minutes}} minutes (at {{.ExpiresAt}}).

Best regards,
CardHub Team
`)),
	},
	domain.PurposeWithdrawal: {
		subject: "Withdrawal Verification Code - CardHub",
		tmpl: template.Must(template.New("withdrawal").Parse(`Dear {{.Username}},

You have requested a withdrawal from your CardHub account.

Your verification code is: {{.Code}}

This code will expire in {{.Minutes}} minutes (at {{.ExpiresAt}}).

If you didn't initiate this withdrawal, please contact our support immediately.

Best regards,
CardHub Team
`)),
	},
}

var fallback = message{
	subject: "Verification Code - CardHub",
	tmpl: template.Must(template.New("fallback").Parse(`Your verification code is: {{.Code}}

This code will expire in {{.Minutes}} minutes (at {{.ExpiresAt}}).

Best regards,
CardHub Team
`)),
}

// Render returns the subject and plain-text body for n.
func Render(n verification.Notification) (string, string, error) {
	m, ok := messages[n.Purpose]
	if !ok {
		m = fallback
	}

	username := n.Username
	if username == "" {
		username = "user"
	}

	data := struct {
		Username  string
		Code      string
		Minutes   int
		ExpiresAt string
	}{
		Username:  username,
		Code:      n.Code,
		Minutes:   int(domain.CodeLifetime / time.Minute),
		ExpiresAt: n.ExpiresAt.UTC().Format("15:04:05 MST"),
	}

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template: %w", err)
	}
	return m.subject, body.String(), nil
}
