// Package notify delivers user-facing messages such as password reset codes.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"
)

const KindOTP = "password_reset_otp"

type Message struct {
	Kind     string
	To       string
	Username string
	Subject  string
	HTML     string
}

type Sender interface {
	Deliver(ctx context.Context, msg Message) error
}

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
  <body>
    <p>Hello {{.Username}},</p>
    <p>Your one-time code to reset your quiz password is <strong>{{.Code}}</strong>.</p>
    <p>The code expires at {{.Expires}}. If you did not ask for a reset, ignore this email.</p>
  </body>
</html>
`))

// OTPMessage renders the password reset email for username.
func OTPMessage(to, username string, code int, expiresAt time.Time) (Message, error) {
	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, struct {
		Username string
		Code     int
		Expires  string
	}{
		Username: username,
		Code:     code,
		Expires:  expiresAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return Message{}, fmt.Errorf("render otp message: %w", err)
	}

	return Message{
		Kind:     KindOTP,
		To:       to,
		Username: username,
		Subject:  "Password reset code",
		HTML:     buf.String(),
	}, nil
}
