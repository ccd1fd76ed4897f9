// 비밀번호 재설정 링크를 메일로 전송하는 클라이언트 정의
//
// 환경변수:
//   - SMTP_HOST, SMTP_PORT: SMTP 서버 주소
//   - SMTP_USER, SMTP_PASS: SMTP 인증 정보 (선택)
//   - SMTP_FROM: 발신자 주소
//   - RESET_EMAIL_SUBJECT, RESET_EMAIL_TEMPLATE: 메일 제목과 본문 템플릿
//
// SMTP_HOST가 비어 있으면 LogNotifier로 대체되어 링크를 로그로만 남김

package client

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/pdfdesk/backend/internal/config"
	"github.com/pdfdesk/backend/internal/template"
	"gopkg.in/gomail.v2"
)

// Mailer sends reset links over SMTP.
type Mailer struct {
	from       string
	subject    string
	body       string
	linkTTL    time.Duration
	configured bool

	// send는 테스트에서 교체 가능
	send func(m *gomail.Message) error
}

type MailerOption func(*Mailer)

// WithResetTemplate overrides the subject and body. Empty values keep the defaults.
func WithResetTemplate(subject, body string) MailerOption {
	return func(m *Mailer) {
		if subject != "" {
			m.subject = subject
		}
		if body != "" {
			m.body = body
		}
	}
}

// WithLinkLifetime sets the value rendered into {{reset.expires_in}}.
func WithLinkLifetime(ttl time.Duration) MailerOption {
	return func(m *Mailer) {
		m.linkTTL = ttl
	}
}

// Mailer 객체 생성
func NewMailer(cfg config.SMTPConfig, opts ...MailerOption) (*Mailer, error) {
	port := 587
	if cfg.Port != "" {
		p, err := strconv.Atoi(cfg.Port)
		if err != nil || p <= 0 {
			return nil, fmt.Errorf("invalid SMTP_PORT %q", cfg.Port)
		}
		port = p
	}

	dialer := gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Password)

	m := &Mailer{
		from:       cfg.From,
		subject:    "Reset your password",
		body:       template.DefaultResetEmail,
		configured: cfg.Host != "" && cfg.From != "",
		send: func(msg *gomail.Message) error {
			return dialer.DialAndSend(msg)
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Mailer에 SMTP 호스트와 발신자가 모두 설정되어 있는지 체크
func (m *Mailer) IsConfigured() bool {
	return m.configured
}

// Send composes the reset email and delivers it in one SMTP session.
func (m *Mailer) Send(ctx context.Context, email, resetLink string) error {
	if !m.IsConfigured() {
		return fmt.Errorf("smtp host or sender not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := m.send(m.compose(email, resetLink)); err != nil {
		return fmt.Errorf("failed to send reset email: %w", err)
	}
	return nil
}

func (m *Mailer) compose(email, resetLink string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", m.subject)
	msg.SetBody("text/html", template.RenderResetEmail(m.body, template.ResetData{
		Email:     email,
		Link:      resetLink,
		ExpiresIn: m.linkTTL,
	}))
	return msg
}

// LogNotifier records reset links in the log instead of mailing them.
// Local runs without SMTP use it.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(ctx context.Context, email, resetLink string) error {
	n.logger.WarnContext(ctx, "smtp not configured, reset link not mailed", "email", email, "reset_link", resetLink)
	return nil
}
