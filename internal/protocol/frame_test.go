package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChecksumLaw(t *testing.T) {
	// For every generated frame, (sum(addr∥body) + cksum) mod 128 == 0.
	cases := [][]byte{
		{0x18, 0x00, 0x00, 0x00, 0x01},
		{0x00, 0x00, 0x00, 0x00},
		{0x7F, 0x7F, 0x7F, 0x7F, 0x7F},
	}
	for _, body := range cases {
		cksum := Checksum(body)
		total := 0
		for _, b := range body {
			total += int(b & 0x7F)
		}
		assert.Zero(t, (total+int(cksum))%128)
	}
}

func TestBuildDT1RoundTrip(t *testing.T) {
	addr := [4]byte{0x18, 0x00, 0x00, 0x10}
	body := []byte{0x01}

	frame := BuildDT1(0x10, addr, body, nil)
	parsed := Parse(frame)

	require.Equal(t, KindDataReply, parsed.Kind)
	assert.Equal(t, addr, parsed.Address)
	assert.Equal(t, body, parsed.Body)
	assert.Equal(t, byte(0x10), parsed.DeviceID)
}

func TestBuildDT1OverrideChecksum(t *testing.T) {
	addr := [4]byte{0x02, 0x00, 0x00, 0x00}
	body := []byte{0x01}
	override := byte(0x00)

	frame := BuildDT1(0x10, addr, body, &override)
	// The override is used verbatim, even though it disagrees with the
	// arithmetically correct checksum.
	assert.Equal(t, override, frame[len(frame)-2])
	assert.NotEqual(t, Checksum(addr[:], body), frame[len(frame)-2])
}

func TestBuildDT1ExactBytes(t *testing.T) {
	// F0 41 dev 00 00 00 4F 12 addr(4) value cksum F7, cksum over addr+value.
	frame := BuildDT1(0x10, [4]byte{0x18, 0x00, 0x00, 0x10}, []byte{0x01}, nil)
	want := []byte{0xF0, 0x41, 0x10, 0x00, 0x00, 0x00, 0x4F, 0x12, 0x18, 0x00, 0x00, 0x10, 0x01, 0x57, 0xF7}
	assert.Equal(t, want, frame)
}

func TestBuildRQ1RoundTrip(t *testing.T) {
	addr := [4]byte{0x18, 0x00, 0x00, 0x10}
	length := LengthToAddr(1)

	frame := BuildRQ1(0x10, addr, length, nil)

	require.Len(t, frame, 18)
	assert.Equal(t, SysExStart, frame[0])
	assert.Equal(t, SysExEnd, frame[len(frame)-1])
	assert.Equal(t, CommandRQ1, frame[7])
}

func TestAddressWidthAlwaysFourBytes(t *testing.T) {
	for _, v := range []uint32{0, 1, 0xFF, 0x1234, 0xFFFFFFFF} {
		addr := Uint32ToAddr(v)
		assert.Len(t, addr, 4)
	}
}

func TestParseIdentityReply(t *testing.T) {
	// F0 7E dev 06 02 41 4F 03 00 00 sr1 00 sr2 00 F7, GT-1000CORE (2,0)
	frame := []byte{0xF0, 0x7E, 0x10, 0x06, 0x02, 0x41, 0x4F, 0x03, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0xF7}

	parsed := Parse(frame)

	require.Equal(t, KindIdentityReply, parsed.Kind)
	assert.Equal(t, byte(0x10), parsed.DeviceID)
	assert.Equal(t, byte(0x02), parsed.SoftwareRev1)
	assert.Equal(t, byte(0x00), parsed.SoftwareRev2)

	model, ok := ModelForRevision(parsed.SoftwareRev1, parsed.SoftwareRev2)
	require.True(t, ok)
	assert.Equal(t, ModelGT1000CORE, model)
	assert.Equal(t, 3, FxSlotCount(model))
}

func TestParseMalformedFrame(t *testing.T) {
	cases := [][]byte{
		nil,
		{0xF0},
		{0xF0, 0x41, 0x10, 0x00},
		{0x00, 0xF7},
	}
	for _, frame := range cases {
		parsed := Parse(frame)
		assert.Equal(t, KindMalformed, parsed.Kind)
	}
}

func TestParseOtherTraffic(t *testing.T) {
	// Active sense: F8 FE etc are not SysEx at all, and a well-formed SysEx
	// from an unrelated device should be "Other", not Malformed.
	frame := []byte{0xF0, 0x41, 0x10, 0x01, 0x02, 0x03, 0x04, 0x05, 0xF7}
	parsed := Parse(frame)
	assert.Equal(t, KindOther, parsed.Kind)
}
