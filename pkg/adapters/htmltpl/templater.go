// Package htmltpl implements the Templater port over html/template.
//
// Views resolve by template name. Locals are passed as the template data, so
// a view reaches the widget as {{.widget}}, composed children as
// {{.children}} and a layout's inner markup as {{.content}}.
package htmltpl

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"strings"
)

// Templater renders views from a parsed html/template set.
type Templater struct {
	tpl *template.Template
}

// funcMap is available to every parsed view.
func funcMap() template.FuncMap {
	return template.FuncMap{
		// raw marks pre-rendered markup (child fragments, layout content)
		// as safe so the composer output is not double-escaped.
		"raw": func(s string) template.HTML {
			return template.HTML(s)
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
	}
}

// New parses the given template sources, keyed by view name.
func New(views map[string]string) (*Templater, error) {
	root := template.New("").Funcs(funcMap())
	for name, src := range views {
		if _, err := root.New(name).Parse(src); err != nil {
			return nil, fmt.Errorf("failed to parse view %s: %w", name, err)
		}
	}
	return &Templater{tpl: root}, nil
}

// NewFromGlob parses all templates matching the pattern, e.g. "views/*.html".
// Views are addressed by base file name.
func NewFromGlob(pattern string) (*Templater, error) {
	tpl, err := template.New("").Funcs(funcMap()).ParseGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates from %s: %w", pattern, err)
	}
	return &Templater{tpl: tpl}, nil
}

// NewFromFS parses templates from a filesystem, typically an embed.FS.
func NewFromFS(fsys fs.FS, patterns ...string) (*Templater, error) {
	tpl, err := template.New("").Funcs(funcMap()).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates from fs: %w", err)
	}
	return &Templater{tpl: tpl}, nil
}

// RenderTemplate executes the named view with locals as data.
func (t *Templater) RenderTemplate(ctx context.Context, view string, locals map[string]any) (string, error) {
	if t.tpl.Lookup(view) == nil {
		return "", fmt.Errorf("view %s not found", view)
	}

	var sb strings.Builder
	if err := t.tpl.ExecuteTemplate(&sb, view, locals); err != nil {
		return "", fmt.Errorf("failed to execute view %s: %w", view, err)
	}
	return sb.String(), nil
}
