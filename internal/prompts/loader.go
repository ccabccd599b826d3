// Package prompts holds the embedded prompt templates for the design roles
// and the coordinator, plus the context builders that assemble each
// iteration's messages.
package prompts

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed *.md
var promptFS embed.FS

// Template is a named prompt template.
type Template struct {
	Name    string
	Content string
}

// Loader loads and renders the embedded prompt templates.
type Loader struct {
	templates map[string]*Template
}

// NewLoader reads every embedded template.
func NewLoader() (*Loader, error) {
	loader := &Loader{templates: make(map[string]*Template)}
	entries, err := promptFS.ReadDir(".")
	if err != nil {
		return nil, fmt.Errorf("read prompts directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".md") {
			continue
		}
		content, err := promptFS.ReadFile(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", entry.Name(), err)
		}
		name := strings.TrimSuffix(entry.Name(), ".md")
		loader.templates[name] = &Template{Name: name, Content: string(content)}
	}
	return loader, nil
}

// Get returns a template by name.
func (l *Loader) Get(name string) (*Template, error) {
	template, ok := l.templates[name]
	if !ok {
		return nil, fmt.Errorf("prompt template %q not found", name)
	}
	return template, nil
}

// Render substitutes {{key}} placeholders in the named template.
func (l *Loader) Render(name string, variables map[string]string) (string, error) {
	template, err := l.Get(name)
	if err != nil {
		return "", err
	}
	content := template.Content
	for key, value := range variables {
		content = strings.ReplaceAll(content, "{{"+key+"}}", value)
	}
	return strings.TrimSpace(content), nil
}

// List returns the available template names.
func (l *Loader) List() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	return names
}
