package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKind(t *testing.T) *domain.Kind {
	t.Helper()
	k, err := domain.NewKind("panel").
		State("show", func(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
			return call.Render(ctx, domain.RenderOptions{Empty: true})
		}).
		Start("show").
		Build()
	require.NoError(t, err)
	return k
}

func TestNewWidget_Validation(t *testing.T) {
	kind := testKind(t)

	_, err := domain.NewWidget("", kind)
	assert.Error(t, err, "empty id must be rejected")

	_, err = domain.NewWidget("cage", nil)
	assert.Error(t, err, "nil kind must be rejected")

	w, err := domain.NewWidget("cage", kind)
	require.NoError(t, err)
	assert.Equal(t, "show", w.StartState())
	assert.True(t, w.IsVisible())
	assert.Empty(t, w.CurrentState)
}

func TestWidget_AddChild_Ownership(t *testing.T) {
	kind := testKind(t)
	root, _ := domain.NewWidget("cage", kind)
	mouse, _ := domain.NewWidget("mouse", kind)

	require.NoError(t, root.AddChild(mouse))
	assert.Same(t, root, mouse.Parent())

	// Exclusive ownership: a widget belongs to exactly one parent.
	other, _ := domain.NewWidget("other", kind)
	assert.Error(t, other.AddChild(mouse))

	// Sibling ids must be unique.
	mouse2, _ := domain.NewWidget("mouse", kind)
	err := root.AddChild(mouse2)
	assert.ErrorIs(t, err, domain.ErrWidgetExists)
}

func TestWidget_AddChild_CycleCheck(t *testing.T) {
	kind := testKind(t)
	root, _ := domain.NewWidget("cage", kind)
	child, _ := domain.NewWidget("mouse", kind)
	require.NoError(t, root.AddChild(child))

	// A widget may never become its own ancestor.
	err := child.AddChild(root)
	assert.ErrorIs(t, err, domain.ErrCycle)

	err = root.AddChild(root)
	assert.Error(t, err)
}

func TestWidget_RemoveChild(t *testing.T) {
	kind := testKind(t)
	root, _ := domain.NewWidget("cage", kind)
	mouse, _ := domain.NewWidget("mouse", kind)
	require.NoError(t, root.AddChild(mouse))

	assert.True(t, root.RemoveChild("mouse"))
	assert.Nil(t, mouse.Parent())
	assert.Empty(t, root.Children())
	assert.False(t, root.RemoveChild("mouse"))

	// A detached subtree can be re-attached elsewhere.
	other, _ := domain.NewWidget("other", kind)
	assert.NoError(t, other.AddChild(mouse))
}

func TestWidget_Find(t *testing.T) {
	kind := testKind(t)
	root, _ := domain.NewWidget("cage", kind)
	mouse, _ := domain.NewWidget("mouse", kind)
	food, _ := domain.NewWidget("food", kind, domain.Hidden())
	crumb, _ := domain.NewWidget("crumb", kind)
	require.NoError(t, root.AddChild(mouse))
	require.NoError(t, root.AddChild(food))
	require.NoError(t, food.AddChild(crumb))

	assert.Same(t, root, root.Find("cage"), "find includes the root itself")
	assert.Same(t, mouse, root.Find("mouse"))
	assert.Same(t, crumb, root.Find("crumb"), "hidden widgets stay addressable")
	assert.Nil(t, root.Find("nonexistent"))
}

func TestWidget_VisibleChildren_Order(t *testing.T) {
	kind := testKind(t)
	root, _ := domain.NewWidget("cage", kind)
	for _, id := range []string{"a", "b", "c"} {
		c, _ := domain.NewWidget(id, kind)
		require.NoError(t, root.AddChild(c))
	}
	hidden, _ := domain.NewWidget("h", kind, domain.Hidden())
	require.NoError(t, root.AddChild(hidden))

	visible := root.VisibleChildren()
	ids := make([]string, 0, len(visible))
	for _, c := range visible {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestWidget_Root(t *testing.T) {
	kind := testKind(t)
	root, _ := domain.NewWidget("cage", kind)
	mouse, _ := domain.NewWidget("mouse", kind)
	tail, _ := domain.NewWidget("tail", kind)
	require.NoError(t, root.AddChild(mouse))
	require.NoError(t, mouse.AddChild(tail))

	assert.Same(t, root, tail.Root())
	assert.Same(t, root, root.Root())
}
