package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emptyHandler(ctx context.Context, call *domain.Call) (*domain.PageUpdate, error) {
	return call.Render(ctx, domain.RenderOptions{Empty: true})
}

func TestKindBuilder_Build(t *testing.T) {
	k, err := domain.NewKind("mouse").
		State("idle", emptyHandler).
		State("eating", emptyHandler).
		Transition("idle", "eating").
		OnEvent("squeak", "idle").
		Start("idle").
		Build()
	require.NoError(t, err)

	assert.Equal(t, "mouse", k.Name())
	assert.Equal(t, []string{"idle"}, k.StartStates())
	assert.Equal(t, []string{"eating", "idle"}, k.States())

	next, ok := k.Next("idle")
	assert.True(t, ok)
	assert.Equal(t, "eating", next)

	_, ok = k.Next("eating")
	assert.False(t, ok, "missing entry signals fall back to start state")

	state, ok := k.EventState("squeak")
	assert.True(t, ok)
	assert.Equal(t, "idle", state)
	_, ok = k.EventState("roar")
	assert.False(t, ok)
}

func TestKindBuilder_Validation(t *testing.T) {
	cases := []struct {
		name  string
		build func() (*domain.Kind, error)
	}{
		{"no states", func() (*domain.Kind, error) {
			return domain.NewKind("x").Start("a").Build()
		}},
		{"no start state", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", emptyHandler).Build()
		}},
		{"unregistered start", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", emptyHandler).Start("b").Build()
		}},
		{"unregistered transition target", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", emptyHandler).Transition("a", "b").Start("a").Build()
		}},
		{"unregistered transition source", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", emptyHandler).Transition("b", "a").Start("a").Build()
		}},
		{"unregistered event target", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", emptyHandler).OnEvent("click", "b").Start("a").Build()
		}},
		{"duplicate state", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", emptyHandler).State("a", emptyHandler).Start("a").Build()
		}},
		{"nil handler", func() (*domain.Kind, error) {
			return domain.NewKind("x").State("a", nil).Start("a").Build()
		}},
		{"empty name", func() (*domain.Kind, error) {
			return domain.NewKind("").State("a", emptyHandler).Start("a").Build()
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			assert.Error(t, err)
		})
	}
}

func TestKind_NextIsDeterministic(t *testing.T) {
	k, err := domain.NewKind("m").
		State("a", emptyHandler).
		State("b", emptyHandler).
		Transition("a", "b").
		Start("a").
		Build()
	require.NoError(t, err)

	// No hidden state: repeated queries always yield the same value.
	for i := 0; i < 100; i++ {
		next, ok := k.Next("a")
		require.True(t, ok)
		require.Equal(t, "b", next)
	}
}
