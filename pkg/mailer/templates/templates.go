package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names. Each name has <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl in FS.
const (
	Welcome = "welcome"
)

// EmailData is the data every email template receives.
type EmailData struct {
	Name    string
	Email   string
	AppName string
	TimeAt  time.Time
}

// orDefault supports {{ .Name | default "there" }}.
func orDefault(fallback, value string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func funcs() map[string]any {
	return map[string]any{
		"default":    orDefault,
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
	}
}

// Parsed at init; a broken template panics on startup.
var (
	textSet = texttpl.Must(texttpl.New("mail").Funcs(funcs()).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("mail").Funcs(funcs()).ParseFS(FS, "*.html.tmpl"))
)

func execText(name string, data EmailData) (string, error) {
	var buf bytes.Buffer
	if err := textSet.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func execHTML(name string, data EmailData) (string, error) {
	var buf bytes.Buffer
	if err := htmlSet.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces the subject, plain text and HTML bodies of the named email.
func Render(name string, data EmailData) (subject, text, html string, err error) {
	if subject, err = execText(name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execText(name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execHTML(name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
