// Package templates renders named notification templates for the mail and
// SMS channels from a directory tree.
package templates

import (
	"fmt"
	htmltemplate "html/template"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"
)

// Renderer loads mail (HTML) and SMS (plain text) templates from
// <dir>/mail/*.html and <dir>/sms/*.txt. Each channel has its own namespace;
// templates are addressed by file base name.
type Renderer struct {
	dir string

	mu   sync.RWMutex
	mail *htmltemplate.Template
	sms  *texttemplate.Template
}

// NewRenderer parses all templates under dir.
func NewRenderer(dir string) (*Renderer, error) {
	r := &Renderer{dir: dir}
	if err := r.Reload(); err != nil {
		return nil, err
	}

	return r, nil
}

// Reload re-parses the template tree. Safe for concurrent use with rendering.
func (r *Renderer) Reload() error {
	mail, err := htmltemplate.ParseGlob(filepath.Join(r.dir, "mail", "*.html"))
	if err != nil {
		return fmt.Errorf("parse mail templates: %w", err)
	}

	sms, err := texttemplate.ParseGlob(filepath.Join(r.dir, "sms", "*.txt"))
	if err != nil {
		return fmt.Errorf("parse sms templates: %w", err)
	}

	r.mu.Lock()
	r.mail = mail
	r.sms = sms
	r.mu.Unlock()

	return nil
}

// RenderMail executes the named mail template with data.
func (r *Renderer) RenderMail(name string, data any) (string, error) {
	r.mu.RLock()
	tmpl := r.mail
	r.mu.RUnlock()

	if tmpl == nil {
		return "", fmt.Errorf("mail templates not loaded")
	}

	var sb strings.Builder
	if err := tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render mail template %q: %w", name, err)
	}

	return sb.String(), nil
}

// RenderSMS executes the named SMS template with data and normalizes the
// result to trimmed lines, matching what the gateway expects.
func (r *Renderer) RenderSMS(name string, data any) (string, error) {
	r.mu.RLock()
	tmpl := r.sms
	r.mu.RUnlock()

	if tmpl == nil {
		return "", fmt.Errorf("sms templates not loaded")
	}

	var sb strings.Builder
	if err := tmpl.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render sms template %q: %w", name, err)
	}

	lines := strings.Split(strings.Trim(sb.String(), "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}

	return strings.TrimSpace(strings.Join(lines, "\n")), nil
}
