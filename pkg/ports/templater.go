package ports

import "context"

// Templater is the external templating collaborator. It turns a view name
// plus locals into a markup fragment and must be deterministic for given
// inputs within one render pass.
type Templater interface {
	RenderTemplate(ctx context.Context, view string, locals map[string]any) (string, error)
}

// TemplaterFunc adapts a function to the Templater interface.
type TemplaterFunc func(ctx context.Context, view string, locals map[string]any) (string, error)

// RenderTemplate calls f.
func (f TemplaterFunc) RenderTemplate(ctx context.Context, view string, locals map[string]any) (string, error) {
	return f(ctx, view, locals)
}
