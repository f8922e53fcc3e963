package effect

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory stand-in for schema.Store keyed by the same
// (section, group, field) tuples the Effect Model resolves.
type fakeStore struct {
	addresses map[string][4]byte
	ranges    map[string][2]int
	decoded   map[string]any
	symbols   map[string]map[string]int
}

func key(section, group, field string) string { return section + "/" + group + "/" + field }

func (s *fakeStore) ResolveAddress(section, group, field string, symbol *string) ([4]byte, *byte, error) {
	addr, ok := s.addresses[key(section, group, field)]
	if !ok {
		return [4]byte{}, nil, assert.AnError
	}
	if symbol == nil {
		return addr, nil, nil
	}
	syms := s.symbols[key(section, group, field)]
	if code, ok := syms[*symbol]; ok {
		v := byte(code)
		return addr, &v, nil
	}
	if n, err := strconv.Atoi(*symbol); err == nil {
		v := byte(n)
		return addr, &v, nil
	}
	v := byte(0)
	return addr, &v, nil
}

func (s *fakeStore) ValueRange(section, group, field string) (int, int, error) {
	r, ok := s.ranges[key(section, group, field)]
	if !ok {
		return 0, 0, assert.AnError
	}
	return r[0], r[1], nil
}

func (s *fakeStore) Decode(section, group, field string, value byte) (any, error) {
	if v, ok := s.decoded[key(section, group, field)]; ok {
		return v, nil
	}
	return int(value), nil
}

func (s *fakeStore) Symbols(section, group, field string) (map[string]int, error) {
	return s.symbols[key(section, group, field)], nil
}

func (s *fakeStore) GroupsOf(tableName string) ([]string, error) { return nil, nil }

// fakeTransactor records every Fetch/Set call and serves canned field
// values keyed by address.
type fakeTransactor struct {
	values    map[[4]byte]byte
	setCalls  []setCall
	fetchErrs map[[4]byte]error
}

type setCall struct {
	addr  [4]byte
	value byte
}

func (t *fakeTransactor) Fetch(ctx context.Context, addr [4]byte, length int, overrideChecksum *byte) ([]byte, error) {
	if err, ok := t.fetchErrs[addr]; ok {
		return nil, err
	}
	return []byte{t.values[addr]}, nil
}

func (t *fakeTransactor) Set(ctx context.Context, addr [4]byte, value byte, overrideChecksum *byte) error {
	t.setCalls = append(t.setCalls, setCall{addr, value})
	return nil
}

func newFx1SwitchStore() *fakeStore {
	return &fakeStore{
		addresses: map[string][4]byte{
			key(sectionPatch, "fx1", "SW"): {0x18, 0x00, 0x00, 0x10},
		},
		ranges: map[string][2]int{},
		symbols: map[string]map[string]int{
			key(sectionPatch, "fx1", "SW"): {"OFF": 0, "ON": 1},
		},
	}
}

func TestToggleResolvesAddressAndEncodesSymbol(t *testing.T) {
	store := newFx1SwitchStore()
	tx := &fakeTransactor{values: map[[4]byte]byte{}}
	m := New(store, tx, 4)

	err := m.Toggle(context.Background(), "fx", "1", true)
	require.NoError(t, err)

	require.Len(t, tx.setCalls, 1)
	assert.Equal(t, [4]byte{0x18, 0x00, 0x00, 0x10}, tx.setCalls[0].addr)
	assert.Equal(t, byte(1), tx.setCalls[0].value)
}

func TestToggleFx4UsesPatch3Section(t *testing.T) {
	store := &fakeStore{
		addresses: map[string][4]byte{
			key(sectionPatch3, "fx4", "SW"): {0x30, 0x00, 0x00, 0x00},
		},
		symbols: map[string]map[string]int{
			key(sectionPatch3, "fx4", "SW"): {"OFF": 0, "ON": 1},
		},
	}
	tx := &fakeTransactor{values: map[[4]byte]byte{}}
	m := New(store, tx, 4)

	err := m.Toggle(context.Background(), "fx", "4", true)
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x30, 0x00, 0x00, 0x00}, tx.setCalls[0].addr)
}

func TestSetValueRejectsUnknownField(t *testing.T) {
	store := &fakeStore{addresses: map[string][4]byte{}}
	tx := &fakeTransactor{values: map[[4]byte]byte{}}
	m := New(store, tx, 4)

	err := m.SetValue(context.Background(), "eq", "", "LEVEL", 32)
	assert.Error(t, err)
}

func TestSetValueEncodesRawInteger(t *testing.T) {
	addr := [4]byte{0x02, 0x00, 0x00, 0x03}
	store := &fakeStore{
		addresses: map[string][4]byte{key(sectionPatch, "eq", "LEVEL"): addr},
		ranges:    map[string][2]int{key(sectionPatch, "eq", "LEVEL"): {12, 52}},
		symbols:   map[string]map[string]int{key(sectionPatch, "eq", "LEVEL"): {}},
	}
	tx := &fakeTransactor{values: map[[4]byte]byte{}}
	m := New(store, tx, 4)

	err := m.SetValue(context.Background(), "eq", "", "LEVEL", 32)
	require.NoError(t, err)
	require.Len(t, tx.setCalls, 1)
	assert.Equal(t, byte(0x20), tx.setCalls[0].value)
}

func TestInstanceCountPerCategory(t *testing.T) {
	m := New(&fakeStore{}, &fakeTransactor{}, 4)

	for _, tc := range []struct {
		category string
		want     int
	}{
		{"comp", 1}, {"ns", 1}, {"preamp", 2}, {"fx", 4},
	} {
		got, err := m.InstanceCount(tc.category)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.category)
	}
}

func TestInstanceCountFxClampsToCoreSlots(t *testing.T) {
	m := New(&fakeStore{}, &fakeTransactor{}, 3)
	got, err := m.InstanceCount("fx")
	require.NoError(t, err)
	assert.Equal(t, 3, got)
}

func TestInstanceCountUnknownCategory(t *testing.T) {
	m := New(&fakeStore{}, &fakeTransactor{}, 4)
	_, err := m.InstanceCount("nope")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestPreampIndexNamesAAndB(t *testing.T) {
	assert.Equal(t, "A", instanceIndex("preamp", 0, 2))
	assert.Equal(t, "B", instanceIndex("preamp", 1, 2))
}

func TestSingletonIndexIsEmpty(t *testing.T) {
	assert.Equal(t, "", instanceIndex("comp", 0, 1))
}

func TestFxIndexIsDecimal(t *testing.T) {
	assert.Equal(t, "3", instanceIndex("fx", 2, 4))
}

func TestSliderFieldsForFxTypeKnownPairs(t *testing.T) {
	assert.Equal(t, sliderFieldPair{"EFFECT LEVEL", "DIRECT MIX"}, sliderFieldsForFxType("FLANGER"))
	assert.Equal(t, sliderFieldPair{"UPPER LEVEL", "DIRECT LEVEL"}, sliderFieldsForFxType("OVERTONE"))
	assert.Equal(t, sliderFieldPair{}, sliderFieldsForFxType("NOT-A-TYPE"))
}

func TestHasTypeFieldExcludesNsAndDelay(t *testing.T) {
	assert.False(t, hasTypeField("ns"))
	assert.False(t, hasTypeField("delay"))
	assert.True(t, hasTypeField("dist"))
	assert.True(t, hasTypeField("fx"))
}

func TestListTypesEmptyForNoTypeCategory(t *testing.T) {
	m := New(&fakeStore{}, &fakeTransactor{}, 4)
	names, err := m.ListTypes("ns")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListTypesReturnsSymbolNames(t *testing.T) {
	store := &fakeStore{
		symbols: map[string]map[string]int{
			key(sectionPatch, "dist", "TYPE"): {"DISTORTION": 0, "FUZZ": 1},
		},
	}
	m := New(store, &fakeTransactor{}, 4)
	names, err := m.ListTypes("dist")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"DISTORTION", "FUZZ"}, names)
}

func TestCategoryFromGroupStripsTrailingDigits(t *testing.T) {
	assert.Equal(t, "eq", categoryFromGroup("eq1"))
	assert.Equal(t, "fx", categoryFromGroup("fx1"))
	assert.Equal(t, "fx1ChorusBass", categoryFromGroup("fx1ChorusBass"), "only trailing digits are stripped")
}
