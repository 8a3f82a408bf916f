package email

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/gomail.v2"
)

type Service interface {
	// SendReport mails a generated report with the HTML file attached.
	SendReport(ctx context.Context, r Report) error
	Enabled() bool
}

// Report is the notification for one generated report.
type Report struct {
	ReportID string
	Query    string
	HTMLPath string
	Summary  string
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       []string
}

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type smtpService struct {
	dialer dialer
	from   string
	to     []string
}

// NewService returns an SMTP sender, or a disabled one when no host or
// recipient is configured.
func NewService(cfg Config) Service {
	if cfg.Host == "" || len(cfg.To) == 0 {
		return Disabled{}
	}
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		to:     cfg.To,
	}
}

func (s *smtpService) Enabled() bool { return true }

func (s *smtpService) SendReport(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to...)
	m.SetHeader("Subject", fmt.Sprintf("Health report %s", r.ReportID))
	m.SetBody("text/plain", reportBody(r))
	if r.HTMLPath != "" {
		m.Attach(r.HTMLPath, gomail.Rename(filepath.Base(r.HTMLPath)))
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

func reportBody(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A new health report has been generated.\n\nReport ID: %s\nQuery: %s\n", r.ReportID, r.Query)
	if r.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Summary)
	}
	b.WriteString("\nThis report is not a medical diagnosis. Consult a qualified clinician about any concern.\n")
	return b.String()
}

// Disabled drops every message.
type Disabled struct{}

func (Disabled) SendReport(context.Context, Report) error { return nil }
func (Disabled) Enabled() bool                            { return false }
