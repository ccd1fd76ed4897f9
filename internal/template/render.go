// Package template renders the password reset email body.
//
// 지원하는 변수 형식:
//
//	{{user.email}}, {{reset.link}}, {{reset.expires_in}}
package template

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// DefaultResetEmail - RESET_EMAIL_TEMPLATE이 비어 있을 때 사용하는 기본 본문
const DefaultResetEmail = `<div style="font-family: Arial, sans-serif; line-height: 1.5;">
  <p>Hello {{user.email}},</p>
  <p>We received a request to reset your password. The link below is valid for {{reset.expires_in}}.</p>
  <p><a href="{{reset.link}}">Reset your password</a></p>
  <p>If you did not request this, you can ignore this email.</p>
</div>`

// ResetData - 템플릿 렌더링에 사용할 reset 메일 데이터
type ResetData struct {
	Email     string
	Link      string
	ExpiresIn time.Duration
}

// RenderResetEmail - body 템플릿의 변수를 실제 값으로 치환
//
// 값은 HTML escape 후 삽입됩니다. body가 비어 있으면 DefaultResetEmail을 사용합니다.
func RenderResetEmail(body string, data ResetData) string {
	if strings.TrimSpace(body) == "" {
		body = DefaultResetEmail
	}
	return strings.NewReplacer(
		"{{user.email}}", html.EscapeString(data.Email),
		"{{reset.link}}", html.EscapeString(data.Link),
		"{{reset.expires_in}}", HumanizeDuration(data.ExpiresIn),
	).Replace(body)
}

// HumanizeDuration formats whole minutes and hours as "10 minutes", "1 hour".
func HumanizeDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return ""
	case d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return d.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
