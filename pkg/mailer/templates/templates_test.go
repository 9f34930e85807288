package templates

import (
	"strings"
	"testing"
	"time"
)

func TestRenderWelcome(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	subject, text, html, err := Render(Welcome, EmailData{
		Name:    "<Alice>",
		Email:   "alice@x.io",
		AppName: "users-api",
		TimeAt:  at,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if subject != "Welcome to users-api, <Alice>" {
		t.Errorf("subject = %q", subject)
	}
	if !strings.Contains(text, "alice@x.io") || !strings.Contains(text, "2024-05-01 09:30 UTC") {
		t.Errorf("text = %q", text)
	}
	if !strings.Contains(html, "&lt;Alice&gt;") {
		t.Errorf("html not escaped: %q", html)
	}
}

func TestRenderWelcome_Defaults(t *testing.T) {
	subject, _, _, err := Render(Welcome, EmailData{Email: "a@x.io"})
	if err != nil {
		t.Fatal(err)
	}
	if subject != "Welcome to Users API, there" {
		t.Errorf("subject = %q", subject)
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	if _, _, _, err := Render("nope", EmailData{}); err == nil {
		t.Error("expected error")
	}
}
