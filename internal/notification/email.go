package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"
	"strconv"
	"text/template"
	"time"

	"github.com/dajohi/goemail"
)

// EmailConfig holds SMTP settings for outgoing mail.
type EmailConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	From       string
	FromName   string
	SkipVerify bool
}

type mailSender interface {
	Send(msg *goemail.Message) error
}

// EmailService delivers password recovery codes over SMTPS.
type EmailService struct {
	client   mailSender
	from     string
	fromName string
}

// NewEmailService validates the sender address and prepares the SMTP client.
// No connection is made until the first send.
func NewEmailService(config EmailConfig) (*EmailService, error) {
	from, err := mail.ParseAddress(config.From)
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	host := config.Host
	if config.Port > 0 {
		host = config.Host + ":" + strconv.Itoa(config.Port)
	}
	u := &url.URL{Scheme: "smtps", Host: host}
	if config.User != "" {
		u.User = url.UserPassword(config.User, config.Password)
	}

	tlsConfig := &tls.Config{ServerName: config.Host}
	if config.SkipVerify {
		tlsConfig.InsecureSkipVerify = true
	}

	client, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	name := config.FromName
	if name == "" {
		name = from.Name
	}
	return &EmailService{client: client, from: from.Address, fromName: name}, nil
}

var otpTemplate = template.Must(template.New("otp_email").Parse(otpEmailText))

const otpEmailText = `Assalamu alaikum,

Your password reset code is:

    {{.Code}}

The code expires in {{.Minutes}} minutes. If you did not ask to reset your
password, you can ignore this email.
`

const otpSubject = "Your password reset code"

// SendOTP mails a one-time recovery code to the address.
func (s *EmailService) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body, err := renderOTPBody(code, ttl)
	if err != nil {
		return err
	}

	msg := goemail.NewMessage(s.from, otpSubject, body)
	msg.SetName(s.fromName)
	msg.AddTo(to)
	return s.client.Send(msg)
}

func renderOTPBody(code string, ttl time.Duration) (string, error) {
	data := struct {
		Code    string
		Minutes int
	}{
		Code:    code,
		Minutes: int(ttl.Round(time.Minute) / time.Minute),
	}

	var b bytes.Buffer
	if err := otpTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render otp email: %w", err)
	}
	return b.String(), nil
}
