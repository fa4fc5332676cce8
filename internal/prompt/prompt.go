// Package prompt renders the prompts sent to the completion model.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// Data is the input to both prompt templates.
type Data struct {
	Question string
	Context  string
}

// Builder holds the parsed templates. It is safe for concurrent use.
type Builder struct {
	withContext *template.Template
	noContext   *template.Template
}

func NewBuilder() (*Builder, error) {
	withContext, err := parse("templates/with_context.txt")
	if err != nil {
		return nil, err
	}
	noContext, err := parse("templates/no_context.txt")
	if err != nil {
		return nil, err
	}
	return &Builder{withContext: withContext, noContext: noContext}, nil
}

func parse(name string) (*template.Template, error) {
	content, err := promptTemplates.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("template not found: %w", err)
	}
	tmpl, err := template.New(name).Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	return tmpl, nil
}

// Build renders the context prompt when found is true and the
// general-knowledge prompt otherwise.
func (b *Builder) Build(question, context string, found bool) (string, error) {
	tmpl := b.noContext
	if found {
		tmpl = b.withContext
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, Data{Question: question, Context: context}); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}
