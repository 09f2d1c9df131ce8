package domain_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/assert"
)

func TestNextState(t *testing.T) {
	kind, err := domain.NewKind("mouse").
		State("idle", emptyHandler).
		State("eating", emptyHandler).
		State("sleeping", emptyHandler).
		Transition("idle", "eating").
		Start("idle", "sleeping").
		Build()
	require.NoError(t, err)

	t.Run("NeverRan_ProposesFirstStartState", func(t *testing.T) {
		w, _ := domain.NewWidget("m", kind)
		assert.Equal(t, "idle", domain.NextState(w))
	})

	t.Run("TableLookup", func(t *testing.T) {
		w, _ := domain.NewWidget("m", kind)
		w.CurrentState = "idle"
		assert.Equal(t, "eating", domain.NextState(w))
	})

	t.Run("MissingEntry_FallsBackToStart", func(t *testing.T) {
		w, _ := domain.NewWidget("m", kind)
		w.CurrentState = "eating"
		assert.Equal(t, "idle", domain.NextState(w))
	})

	t.Run("Deterministic", func(t *testing.T) {
		w, _ := domain.NewWidget("m", kind)
		w.CurrentState = "idle"
		first := domain.NextState(w)
		for i := 0; i < 50; i++ {
			require.Equal(t, first, domain.NextState(w))
		}
	})
}
