package mirror

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdesfossez/gt1000ctl/internal/effect"
)

func TestGetStateReturnsIndependentCopy(t *testing.T) {
	m := New()
	m.replace("fx", []effect.State{{Category: "fx", Index: "1", Switch: true}}, 100)

	snap := m.GetState()
	snap.PerCategory["fx"][0].Switch = false

	again := m.GetState()
	assert.True(t, again.PerCategory["fx"][0].Switch, "mutating a snapshot must not affect the mirror")
}

func TestLastSyncTSReflectsReplace(t *testing.T) {
	m := New()
	assert.Equal(t, int64(0), m.LastSyncTS("eq"))

	m.replace("eq", nil, 42)
	assert.Equal(t, int64(42), m.LastSyncTS("eq"))
}

func TestApplyOptimisticMutatesMatchingIndex(t *testing.T) {
	m := New()
	m.replace("fx", []effect.State{
		{Category: "fx", Index: "1", Switch: false},
		{Category: "fx", Index: "2", Switch: false},
	}, 1)

	m.ApplyOptimistic("fx", "2", func(s *effect.State) { s.Switch = true })

	snap := m.GetState()
	assert.False(t, snap.PerCategory["fx"][0].Switch)
	assert.True(t, snap.PerCategory["fx"][1].Switch)
}

func TestApplyOptimisticIgnoresUnknownIndex(t *testing.T) {
	m := New()
	m.replace("fx", []effect.State{{Category: "fx", Index: "1"}}, 1)

	assert.NotPanics(t, func() {
		m.ApplyOptimistic("fx", "99", func(s *effect.State) { s.Switch = true })
	})
}
