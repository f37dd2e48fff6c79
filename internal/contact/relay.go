package contact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// Ack is the relay's acknowledgment. Its contents are opaque.
type Ack struct {
	Text string
}

// Relay delivers a validated form to its destination.
type Relay interface {
	Send(ctx context.Context, f Form) (Ack, error)
}

// RelayFunc adapts a function to Relay.
type RelayFunc func(ctx context.Context, f Form) (Ack, error)

func (fn RelayFunc) Send(ctx context.Context, f Form) (Ack, error) { return fn(ctx, f) }

// EmailJSEndpoint is the EmailJS REST send endpoint.
const EmailJSEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// EmailJSRelay posts the form to EmailJS, which renders it into the
// configured template and mails it out.
type EmailJSRelay struct {
	Endpoint   string
	ServiceID  string
	TemplateID string
	PublicKey  string
	Client     *http.Client
}

type emailJSRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	TemplateParams map[string]string `json:"template_params"`
}

func (r *EmailJSRelay) Send(ctx context.Context, f Form) (Ack, error) {
	if r.ServiceID == "" || r.TemplateID == "" || r.PublicKey == "" {
		return Ack{}, fmt.Errorf("emailjs: service, template and public key must be configured")
	}
	payload, err := json.Marshal(emailJSRequest{
		ServiceID:  r.ServiceID,
		TemplateID: r.TemplateID,
		UserID:     r.PublicKey,
		TemplateParams: map[string]string{
			"from_name":  f.Name,
			"from_email": f.Email,
			"message":    f.Message,
		},
	})
	if err != nil {
		return Ack{}, fmt.Errorf("emailjs: encoding request: %w", err)
	}

	endpoint := r.Endpoint
	if endpoint == "" {
		endpoint = EmailJSEndpoint
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Ack{}, fmt.Errorf("emailjs: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := r.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Ack{}, fmt.Errorf("emailjs: sending: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	text := strings.TrimSpace(string(body))
	if resp.StatusCode != http.StatusOK {
		return Ack{}, fmt.Errorf("emailjs: status %d: %s", resp.StatusCode, text)
	}
	return Ack{Text: text}, nil
}

// SMTPRelay mails the form through an authenticated SMTP server.
type SMTPRelay struct {
	Host     string
	Port     string
	Username string
	Password string
	To       string

	// send defaults to smtp.SendMail.
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (r *SMTPRelay) Send(ctx context.Context, f Form) (Ack, error) {
	if r.Username == "" || r.Password == "" {
		return Ack{}, fmt.Errorf("smtp: credentials not configured")
	}
	if err := ctx.Err(); err != nil {
		return Ack{}, err
	}

	send := r.send
	if send == nil {
		send = smtp.SendMail
	}
	auth := smtp.PlainAuth("", r.Username, r.Password, r.Host)
	msg := composeMail(r.Username, r.To, f)
	if err := send(r.Host+":"+r.Port, auth, r.Username, []string{r.To}, msg); err != nil {
		return Ack{}, fmt.Errorf("smtp: sending: %w", err)
	}
	return Ack{Text: "queued"}, nil
}

// composeMail renders the notification mail. Reply-To points at the visitor
// so a plain reply reaches them.
func composeMail(from, to string, f Form) []byte {
	subject := fmt.Sprintf("Portfolio Contact: %s", headerValue(f.Name))
	body := fmt.Sprintf(`
New contact form submission from your portfolio:

Name: %s
Email: %s
Message:
%s

---
Sent from your portfolio contact form
`, f.Name, f.Email, f.Message)

	return []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"Reply-To: " + headerValue(f.Email) + "\r\n" +
		"\r\n" +
		body + "\r\n")
}

var headerBreaks = strings.NewReplacer("\r", " ", "\n", " ")

// headerValue folds line breaks so a value cannot start a new header.
func headerValue(s string) string {
	return strings.TrimSpace(headerBreaks.Replace(s))
}

// LogRelay only logs submissions. Meant for local development.
type LogRelay struct{}

func (LogRelay) Send(ctx context.Context, f Form) (Ack, error) {
	log.Printf("contact: message from %s (%s): %d bytes", f.Name, f.Email, len(f.Message))
	return Ack{Text: "logged"}, nil
}
