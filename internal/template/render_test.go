package template

import (
	"strings"
	"testing"
	"time"
)

func TestRenderResetEmail(t *testing.T) {
	data := ResetData{
		Email:     "a@x.com",
		Link:      "https://app.test/reset?email=a%40x.com&token=abc",
		ExpiresIn: 10 * time.Minute,
	}

	got := RenderResetEmail("{{user.email}} | {{reset.link}} | {{reset.expires_in}} | {{unknown}}", data)
	want := "a@x.com | https://app.test/reset?email=a%40x.com&amp;token=abc | 10 minutes | {{unknown}}"
	if got != want {
		t.Fatalf("RenderResetEmail() = %q, want %q", got, want)
	}
}

func TestRenderResetEmail_DefaultBody(t *testing.T) {
	got := RenderResetEmail("  ", ResetData{Email: "a@x.com", Link: "https://app.test/r", ExpiresIn: time.Hour})

	for _, part := range []string{"Hello a@x.com", `href="https://app.test/r"`, "valid for 1 hour"} {
		if !strings.Contains(got, part) {
			t.Fatalf("default body missing %q:\n%s", part, got)
		}
	}
	if strings.Contains(got, "{{") {
		t.Fatalf("default body has unreplaced variables:\n%s", got)
	}
}

func TestHumanizeDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{10 * time.Minute, "10 minutes"},
		{time.Minute, "1 minute"},
		{2 * time.Hour, "2 hours"},
		{90 * time.Second, "1m30s"},
		{0, ""},
	}
	for _, tt := range tests {
		if got := HumanizeDuration(tt.in); got != tt.want {
			t.Fatalf("HumanizeDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
