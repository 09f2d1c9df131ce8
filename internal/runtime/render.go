package runtime

import (
	"context"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
)

// Render runs the render pipeline for the widget and wraps the outcome into
// a page update keyed by the widget's id.
//
// A widget that has never been invoked has no current state to resolve a
// view from; unless the caller short-circuits the pipeline or names a view
// explicitly, the render routes through the state machine first so the
// start state's handler produces the output.
//
// Resolution order, first match wins: script payload, raw payload, empty,
// templated fragment. Only the fragment path composes children and invokes
// the templating collaborator.
func (e *Engine) Render(ctx context.Context, w *domain.Widget, opts domain.RenderOptions) (*domain.PageUpdate, error) {
	if w.CurrentState == "" && opts.View == "" && opts.Script == "" && opts.Raw == "" && !opts.Empty {
		return e.Invoke(ctx, w, "")
	}

	opts = e.resolveOptions(opts)
	started := time.Now()

	var result domain.RenderedResult
	switch {
	case opts.Script != "":
		result = domain.NewScript(opts.Script)
	case opts.Raw != "":
		result = domain.NewRaw(opts.Raw)
	case opts.Empty:
		result = domain.EmptyResult()
	default:
		fragment, err := e.renderFragment(ctx, w, opts)
		if err != nil {
			return nil, err
		}
		result = fragment
	}

	mode := domain.ReplaceWhole
	if opts.ReplaceInner {
		mode = domain.ReplaceInner
	}
	update := &domain.PageUpdate{
		Mode:    mode,
		Target:  w.ID,
		Content: result,
	}

	w.Version++
	if e.hooks.OnRenderComplete != nil {
		e.hooks.OnRenderComplete(ctx, &domain.RenderEvent{
			Timestamp: started,
			WidgetID:  w.ID,
			Kind:      w.Kind.Name(),
			State:     w.CurrentState,
			Mode:      mode,
			Result:    result.Kind,
			Duration:  time.Since(started),
		})
	}
	return update, nil
}

// resolveOptions applies the engine defaults once, up front. ReplaceInner
// and the frame are mutually adjusting: inner replacement always ships
// unwrapped content.
func (e *Engine) resolveOptions(opts domain.RenderOptions) domain.RenderOptions {
	if opts.Frame == "" && !opts.NoFrame {
		opts.Frame = e.frameTag
	}
	if opts.ReplaceInner || opts.NoFrame {
		opts.Frame = ""
	}
	return opts
}

func (e *Engine) renderFragment(ctx context.Context, w *domain.Widget, opts domain.RenderOptions) (domain.RenderedResult, error) {
	locals := make(map[string]any, len(opts.Locals)+2)
	for k, v := range opts.Locals {
		locals[k] = v
	}
	locals[domain.LocalWidget] = w.ID

	if !opts.SkipChildren {
		children, err := e.composeChildren(ctx, w, opts.Invoke)
		if err != nil {
			return domain.RenderedResult{}, err
		}
		locals[domain.LocalChildren] = children
	}

	view := opts.View
	if view == "" {
		view = w.CurrentState
	}
	markup, err := e.templater.RenderTemplate(ctx, view, locals)
	if err != nil {
		return domain.RenderedResult{}, fmt.Errorf("widget %s: render view %s: %w", w.ID, view, err)
	}

	if opts.Layout != "" {
		layoutLocals := make(map[string]any, len(locals)+1)
		for k, v := range locals {
			layoutLocals[k] = v
		}
		layoutLocals[domain.LocalContent] = markup
		markup, err = e.templater.RenderTemplate(ctx, opts.Layout, layoutLocals)
		if err != nil {
			return domain.RenderedResult{}, fmt.Errorf("widget %s: render layout %s: %w", w.ID, opts.Layout, err)
		}
	}

	if opts.Frame != "" {
		markup = frame(opts.Frame, w.ID, opts.HTMLAttrs, markup)
	}
	return domain.NewFragment(markup), nil
}

// frame wraps a fragment in a container element. The widget id becomes the
// default id attribute unless the caller supplied one; remaining attributes
// render in sorted order for deterministic output.
func frame(tag, widgetID string, attrs map[string]string, content string) string {
	merged := make(map[string]string, len(attrs)+1)
	for k, v := range attrs {
		merged[k] = v
	}
	if _, ok := merged["id"]; !ok {
		merged["id"] = widgetID
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		if k == "id" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	b.WriteString(` id="`)
	b.WriteString(html.EscapeString(merged["id"]))
	b.WriteString(`"`)
	for _, k := range keys {
		b.WriteString(" ")
		b.WriteString(k)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(merged[k]))
		b.WriteString(`"`)
	}
	b.WriteString(">")
	b.WriteString(content)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return b.String()
}
