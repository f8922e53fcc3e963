package facade

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jdesfossez/gt1000ctl/internal/config"
)

func TestResolvePortNamesFallsBackToSharedPrefix(t *testing.T) {
	in, out := resolvePortNames(config.TransportConfig{PortNamePrefix: "GT-1000"})
	assert.Equal(t, "GT-1000", in)
	assert.Equal(t, "GT-1000", out)
}

func TestResolvePortNamesPrefersExplicitPorts(t *testing.T) {
	in, out := resolvePortNames(config.TransportConfig{
		PortNamePrefix: "GT-1000",
		InPort:         "GT-1000 MIDI In",
		OutPort:        "GT-1000 MIDI Out",
	})
	assert.Equal(t, "GT-1000 MIDI In", in)
	assert.Equal(t, "GT-1000 MIDI Out", out)
}

func TestResolvePortNamesMixedOverride(t *testing.T) {
	in, out := resolvePortNames(config.TransportConfig{
		PortNamePrefix: "GT-1000",
		InPort:         "Custom In",
	})
	assert.Equal(t, "Custom In", in)
	assert.Equal(t, "GT-1000", out)
}

func TestIndexAsIntEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0, indexAsInt(""))
}

func TestIndexAsIntParsesDecimal(t *testing.T) {
	assert.Equal(t, 3, indexAsInt("3"))
}

func TestIndexAsIntNonNumericFallsBackToFirstByte(t *testing.T) {
	assert.Equal(t, int('A'), indexAsInt("A"))
	assert.Equal(t, int('B'), indexAsInt("B"))
}

func TestMarkOptimisticAdvancesMonotonically(t *testing.T) {
	f := &Facade{}
	first := f.markOptimistic()
	second := f.markOptimistic()
	assert.GreaterOrEqual(t, second, first)
	assert.Equal(t, second, f.categoryLastActionTS("fx"))
}

func TestCategoryLastActionTSIsGlobalNotPerCategory(t *testing.T) {
	f := &Facade{}
	ts := f.markOptimistic()
	assert.Equal(t, ts, f.categoryLastActionTS("fx"))
	assert.Equal(t, ts, f.categoryLastActionTS("comp"))
}

func TestIdentityReturnsZeroValueBeforeOpen(t *testing.T) {
	f := &Facade{}
	assert.Equal(t, "", f.Identity().Model)
}
