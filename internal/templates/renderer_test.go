package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemplateTree(t *testing.T, mailBody, smsBody string) string {
	t.Helper()

	dir := t.TempDir()
	for sub, content := range map[string]string{
		filepath.Join("mail", "greeting.html"): mailBody,
		filepath.Join("sms", "greeting.txt"):   smsBody,
	} {
		path := filepath.Join(dir, sub)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write template: %v", err)
		}
	}

	return dir
}

func TestRendererRenderMail(t *testing.T) {
	dir := writeTemplateTree(t, "<p>Hello {{.UserName}}</p>", "Hello {{.UserName}}")

	renderer, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	out, err := renderer.RenderMail("greeting.html", map[string]string{"UserName": "Amina"})
	if err != nil {
		t.Fatalf("RenderMail: %v", err)
	}
	if out != "<p>Hello Amina</p>" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRendererRenderMailEscapesHTML(t *testing.T) {
	dir := writeTemplateTree(t, "<p>{{.UserName}}</p>", "x")

	renderer, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	out, err := renderer.RenderMail("greeting.html", map[string]string{"UserName": "<script>"})
	if err != nil {
		t.Fatalf("RenderMail: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Errorf("mail output must escape HTML: %q", out)
	}
}

func TestRendererRenderSMSNormalizesWhitespace(t *testing.T) {
	dir := writeTemplateTree(t, "<p>x</p>", "\nHello {{.UserName}}   \nWelcome aboard\t\n\n")

	renderer, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	out, err := renderer.RenderSMS("greeting.txt", map[string]string{"UserName": "Amina"})
	if err != nil {
		t.Fatalf("RenderSMS: %v", err)
	}
	if out != "Hello Amina\nWelcome aboard" {
		t.Errorf("unexpected output: %q", out)
	}
}

func TestRendererUnknownTemplate(t *testing.T) {
	dir := writeTemplateTree(t, "<p>x</p>", "x")

	renderer, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	if _, err := renderer.RenderMail("missing.html", nil); err == nil {
		t.Error("expected an error for an unknown template")
	}
}

func TestRendererReloadPicksUpChanges(t *testing.T) {
	dir := writeTemplateTree(t, "<p>v1</p>", "v1")

	renderer, err := NewRenderer(dir)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	path := filepath.Join(dir, "mail", "greeting.html")
	if err := os.WriteFile(path, []byte("<p>v2</p>"), 0o644); err != nil {
		t.Fatalf("rewrite template: %v", err)
	}
	if err := renderer.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	out, err := renderer.RenderMail("greeting.html", nil)
	if err != nil {
		t.Fatalf("RenderMail: %v", err)
	}
	if out != "<p>v2</p>" {
		t.Errorf("expected reloaded content, got %q", out)
	}
}
