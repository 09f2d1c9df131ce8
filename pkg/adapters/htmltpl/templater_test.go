package htmltpl_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/htmltpl"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplater_RenderTemplate(t *testing.T) {
	tpl, err := htmltpl.New(map[string]string{
		"greet": `<p>Hello, {{.name}}!</p>`,
	})
	require.NoError(t, err)

	out, err := tpl.RenderTemplate(context.Background(), "greet", map[string]any{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "<p>Hello, world!</p>", out)
}

func TestTemplater_EscapesLocals(t *testing.T) {
	tpl, err := htmltpl.New(map[string]string{
		"show": `<p>{{.value}}</p>`,
	})
	require.NoError(t, err)

	out, err := tpl.RenderTemplate(context.Background(), "show", map[string]any{
		"value": `<script>alert("x")</script>`,
	})
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>", "untrusted locals must be escaped")
}

func TestTemplater_RawChildren(t *testing.T) {
	// The composer hands pre-rendered child markup through "children";
	// views opt in to embedding it verbatim with the raw helper.
	tpl, err := htmltpl.New(map[string]string{
		"panel": `<section>{{raw .children.Join}}</section>`,
	})
	require.NoError(t, err)

	children := domain.NewChildSet()
	children.Add("mouse", domain.NewFragment(`<div id="mouse">squeak</div>`))

	out, err := tpl.RenderTemplate(context.Background(), "panel", map[string]any{
		"children": children,
	})
	require.NoError(t, err)
	assert.Equal(t, `<section><div id="mouse">squeak</div></section>`, out)
}

func TestTemplater_ViewNotFound(t *testing.T) {
	tpl, err := htmltpl.New(map[string]string{"a": "x"})
	require.NoError(t, err)

	_, err = tpl.RenderTemplate(context.Background(), "missing", nil)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestTemplater_ParseError(t *testing.T) {
	_, err := htmltpl.New(map[string]string{"bad": `{{.unclosed`})
	assert.Error(t, err)
}
