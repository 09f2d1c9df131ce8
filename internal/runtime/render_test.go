package runtime_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func plainKind(t *testing.T, name string, opts domain.RenderOptions) *domain.Kind {
	t.Helper()
	k, err := domain.NewKind(name).
		State("show", func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
			return call.Render(ctx, opts)
		}).
		Start("show").
		Build()
	require.NoError(t, err)
	return k
}

func TestRender_ResolutionOrder(t *testing.T) {
	e := runtime.NewEngine(echoTemplater)
	ctx := context.Background()

	t.Run("ScriptWins", func(t *testing.T) {
		w, _ := domain.NewWidget("w", rodentKind(t))
		w.CurrentState = "idle"
		// Script beats raw, empty and templating; no children, no frame.
		update, err := e.Render(ctx, w, domain.RenderOptions{
			Script: "alert(1)",
			Raw:    "ignored",
			Empty:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultScript, update.Content.Kind)
		assert.Equal(t, "alert(1)", update.Content.Body)
	})

	t.Run("RawBeatsEmpty", func(t *testing.T) {
		w, _ := domain.NewWidget("w", rodentKind(t))
		update, err := e.Render(ctx, w, domain.RenderOptions{Raw: "payload", Empty: true})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultRaw, update.Content.Kind)
		assert.Equal(t, "payload", update.Content.Body)
	})

	t.Run("Empty", func(t *testing.T) {
		w, _ := domain.NewWidget("w", rodentKind(t))
		update, err := e.Render(ctx, w, domain.RenderOptions{Empty: true})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultEmpty, update.Content.Kind)
		assert.Empty(t, update.Content.Body)
	})

	t.Run("TemplatedFragment", func(t *testing.T) {
		w, _ := domain.NewWidget("w", rodentKind(t))
		w.CurrentState = "idle"
		update, err := e.Render(ctx, w, domain.RenderOptions{})
		require.NoError(t, err)
		assert.Equal(t, domain.ResultFragment, update.Content.Kind)
		assert.Equal(t, `<div id="w">idle[]</div>`, update.Content.Body)
	})
}

func TestRender_FrameReplaceExclusivity(t *testing.T) {
	e := runtime.NewEngine(echoTemplater)
	ctx := context.Background()

	t.Run("DefaultIsWholeReplaceWithFrame", func(t *testing.T) {
		w, _ := domain.NewWidget("cage", rodentKind(t))
		w.CurrentState = "idle"
		update, err := e.Render(ctx, w, domain.RenderOptions{SkipChildren: true})
		require.NoError(t, err)
		assert.Equal(t, domain.ReplaceWhole, update.Mode)
		assert.Equal(t, "cage", update.Target)
		assert.Equal(t, `<div id="cage">idle</div>`, update.Content.Body)
	})

	t.Run("ReplaceInnerForcesFrameOff", func(t *testing.T) {
		w, _ := domain.NewWidget("cage", rodentKind(t))
		w.CurrentState = "idle"
		update, err := e.Render(ctx, w, domain.RenderOptions{ReplaceInner: true, SkipChildren: true})
		require.NoError(t, err)
		assert.Equal(t, domain.ReplaceInner, update.Mode)
		assert.Equal(t, "idle", update.Content.Body, "inner replacement ships unwrapped content")
	})

	t.Run("CustomFrameAndAttrs", func(t *testing.T) {
		w, _ := domain.NewWidget("cage", rodentKind(t))
		w.CurrentState = "idle"
		update, err := e.Render(ctx, w, domain.RenderOptions{
			SkipChildren: true,
			Frame:        "section",
			HTMLAttrs:    map[string]string{"class": "pen", "data-role": "cage"},
		})
		require.NoError(t, err)
		assert.Equal(t, `<section id="cage" class="pen" data-role="cage">idle</section>`, update.Content.Body)
	})

	t.Run("ExplicitIDAttrWins", func(t *testing.T) {
		w, _ := domain.NewWidget("cage", rodentKind(t))
		w.CurrentState = "idle"
		update, err := e.Render(ctx, w, domain.RenderOptions{
			SkipChildren: true,
			HTMLAttrs:    map[string]string{"id": "custom"},
		})
		require.NoError(t, err)
		assert.Equal(t, `<div id="custom">idle</div>`, update.Content.Body)
	})
}

func TestRender_ViewAndLayout(t *testing.T) {
	templater := ports.TemplaterFunc(func(ctx context.Context, view string, locals map[string]any) (string, error) {
		if view == "chrome" {
			return fmt.Sprintf("<<%v>>", locals[domain.LocalContent]), nil
		}
		return view, nil
	})
	e := runtime.NewEngine(templater)
	w, _ := domain.NewWidget("w", rodentKind(t))
	w.CurrentState = "idle"

	update, err := e.Render(context.Background(), w, domain.RenderOptions{
		View:         "special",
		Layout:       "chrome",
		SkipChildren: true,
		NoFrame:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, "<<special>>", update.Content.Body)
}

func TestRender_TemplateErrorPassesThrough(t *testing.T) {
	boom := errors.New("boom")
	e := runtime.NewEngine(ports.TemplaterFunc(func(ctx context.Context, view string, locals map[string]any) (string, error) {
		return "", boom
	}))
	w, _ := domain.NewWidget("w", rodentKind(t))
	w.CurrentState = "idle"

	_, err := e.Render(context.Background(), w, domain.RenderOptions{SkipChildren: true})
	assert.ErrorIs(t, err, boom, "template failures propagate unchanged, no recovery")
}

func TestRender_FreshWidgetRunsStartState(t *testing.T) {
	e := runtime.NewEngine(echoTemplater)
	w, _ := domain.NewWidget("w", rodentKind(t))
	require.Empty(t, w.CurrentState)

	// Rendering a never-invoked widget resolves through the state machine:
	// the start state's handler runs and its view is templated, not "".
	update, err := e.Render(context.Background(), w, domain.RenderOptions{})
	require.NoError(t, err)
	assert.Equal(t, "idle", w.CurrentState)
	assert.Equal(t, "idle", update.Content.Body)
	assert.Equal(t, 1, w.Version)
}

func TestRender_VersionBump(t *testing.T) {
	e := runtime.NewEngine(echoTemplater)
	w, _ := domain.NewWidget("w", rodentKind(t))

	_, err := e.Invoke(context.Background(), w, "")
	require.NoError(t, err)
	assert.Equal(t, 1, w.Version)
}

func TestCompose_VisibilityAndOverrides(t *testing.T) {
	e := runtime.NewEngine(echoTemplater)
	kind := rodentKind(t)

	cage, _ := domain.NewWidget("cage", kind)
	mouse, _ := domain.NewWidget("mouse", kind)
	wheel, _ := domain.NewWidget("wheel", kind)
	food, _ := domain.NewWidget("food", kind, domain.Hidden())
	require.NoError(t, cage.AddChild(mouse))
	require.NoError(t, cage.AddChild(food))
	require.NoError(t, cage.AddChild(wheel))

	// Override precedence: "bored" beats mouse's own machine ("idle" first
	// run). Hidden food is excluded; unknown override ids are ignored.
	update, err := e.Render(context.Background(), cage, domain.RenderOptions{
		View:    "show",
		NoFrame: true,
		Invoke: map[string]string{
			"mouse": "bored",
			"ghost": "idle",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "show[boredidle]", update.Content.Body)
	assert.Equal(t, "bored", mouse.CurrentState)
	assert.Equal(t, "idle", wheel.CurrentState)
	assert.Empty(t, food.CurrentState, "hidden children are never invoked")
}

func TestRender_EndToEndScenario(t *testing.T) {
	// Root "cage" (start "show") with a visible "mouse" (start "idle") and a
	// hidden "food": the composed fragment contains exactly the mouse output,
	// wrapped as a whole-replace update targeting the cage.
	templater := ports.TemplaterFunc(func(ctx context.Context, view string, locals map[string]any) (string, error) {
		if cs, ok := locals[domain.LocalChildren].(*domain.ChildSet); ok {
			return fmt.Sprintf("<p>%s</p>%s", view, cs.Join()), nil
		}
		return fmt.Sprintf("<span>%s</span>", view), nil
	})
	e := runtime.NewEngine(templater)

	container, err := domain.NewKind("container").
		State("show", func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
			return call.Render(ctx, domain.RenderOptions{})
		}).
		Start("show").
		Build()
	require.NoError(t, err)

	rodent, err := domain.NewKind("rodent").
		State("idle", func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
			return call.Render(ctx, domain.RenderOptions{SkipChildren: true})
		}).
		Start("idle").
		Build()
	require.NoError(t, err)

	cage, _ := domain.NewWidget("cage", container)
	mouse, _ := domain.NewWidget("mouse", rodent)
	food, _ := domain.NewWidget("food", rodent, domain.Hidden())
	require.NoError(t, cage.AddChild(mouse))
	require.NoError(t, cage.AddChild(food))

	update, err := e.Invoke(context.Background(), cage, "")
	require.NoError(t, err)

	assert.Equal(t, domain.ReplaceWhole, update.Mode)
	assert.Equal(t, "cage", update.Target)
	assert.Equal(t, domain.ResultFragment, update.Content.Kind)
	assert.Equal(t,
		`<div id="cage"><p>show</p><div id="mouse"><span>idle</span></div></div>`,
		update.Content.Body)

	assert.Equal(t, "idle", mouse.CurrentState)
	assert.Empty(t, food.CurrentState)
	assert.Nil(t, cage.Find("nonexistent"))
	assert.Same(t, mouse, cage.Find("mouse"))
}
