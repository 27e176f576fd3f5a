package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultVerifyPath = "/api/verify"
	defaultSignInPath = "/signin"

	verificationSubject = "Verify Your Email Address"
	welcomeSubject      = "Welcome to Our App!"
)

// Message is a rendered email ready for a Transport.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Transport hands a message to a mail server.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds what the Sender needs to build links and headers.
type Config struct {
	BaseURL         string
	From            string
	VerifyPath      string
	SignInPath      string
	VerificationTTL time.Duration
}

// Sender composes the signup emails and dispatches them once, without retry.
type Sender struct {
	cfg       Config
	base      *url.URL
	transport Transport
	templates *template.Template
	log       *zap.Logger
}

// NewSender validates cfg and parses the embedded templates.
func NewSender(cfg Config, transport Transport, log *zap.Logger) (*Sender, error) {
	if transport == nil {
		return nil, errors.New("mail transport is required")
	}
	if cfg.From == "" {
		return nil, errors.New("sender address is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", cfg.BaseURL)
	}
	if cfg.VerifyPath == "" {
		cfg.VerifyPath = defaultVerifyPath
	}
	if cfg.SignInPath == "" {
		cfg.SignInPath = defaultSignInPath
	}
	if cfg.VerificationTTL <= 0 {
		cfg.VerificationTTL = 24 * time.Hour
	}
	tmpl, err := template.New("emails").Parse(emailTemplates)
	if err != nil {
		return nil, fmt.Errorf("parse email templates: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{cfg: cfg, base: base, transport: transport, templates: tmpl, log: log}, nil
}

// VerificationLink returns the absolute link that redeems token.
func (s *Sender) VerificationLink(token string) string {
	u := s.link(s.cfg.VerifyPath)
	u.RawQuery = url.Values{"token": {token}}.Encode()
	return u.String()
}

// SignInLink returns the absolute sign-in page link.
func (s *Sender) SignInLink() string {
	return s.link(s.cfg.SignInPath).String()
}

func (s *Sender) SendVerificationEmail(ctx context.Context, email, name, token string) error {
	body, err := s.render("verification", verificationData{
		Name:      name,
		Link:      s.VerificationLink(token),
		ExpiresIn: humanDuration(s.cfg.VerificationTTL),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, "verification", email, verificationSubject, body)
}

func (s *Sender) SendWelcomeEmail(ctx context.Context, email, name string) error {
	body, err := s.render("welcome", welcomeData{Name: name, Link: s.SignInLink()})
	if err != nil {
		return err
	}
	return s.send(ctx, "welcome", email, welcomeSubject, body)
}

func (s *Sender) send(ctx context.Context, kind, to, subject, body string) error {
	msg := Message{From: s.cfg.From, To: to, Subject: subject, HTML: body}
	if err := s.transport.Send(ctx, msg); err != nil {
		return &DeliveryError{Kind: kind, To: to, Err: err}
	}
	s.log.Debug("email sent", zap.String("kind", kind), zap.String("to", to))
	return nil
}

func (s *Sender) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (s *Sender) link(path string) *url.URL {
	u := *s.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return &u
}

func humanDuration(d time.Duration) string {
	if d%time.Hour == 0 {
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", h)
	}
	return d.String()
}
