// Package protocol implements the SysEx wire format for the Device: frame
// assembly/parsing, the Roland checksum, and the handful of well-known
// addresses involved in device discovery and the editor-mode handshake.
//
// Everything here is a pure function over byte slices. Nothing in this
// package talks to a MIDI port; see internal/transport for that.
package protocol

// Frame delimiters.
const (
	SysExStart byte = 0xF0
	SysExEnd   byte = 0xF7
)

// ManufacturerID is Roland's registered SysEx manufacturer ID.
const ManufacturerID byte = 0x41

// ModelID is the 4-byte device family code shared by DT1/RQ1 frames
// addressed to the GT-1000 family: "00 00 00 4F".
var ModelID = [4]byte{0x00, 0x00, 0x00, 0x4F}

// Command IDs.
const (
	CommandDT1 byte = 0x12 // "data set 1": write body at address
	CommandRQ1 byte = 0x11 // "request data 1": read length bytes at address
)

// DeviceIDBroadcast is the Roland device ID used before a real device ID has
// been learned from an Identity Reply, and as a last resort if none arrives.
const DeviceIDBroadcast byte = 0x7F

// Universal Non-Realtime identity exchange.
const (
	universalNonRealtime byte = 0x7E
	genInfoSubID1        byte = 0x06 // General Information
	identityRequestSubID byte = 0x01
	identityReplySubID   byte = 0x02
)

// GT1000Family is the two-byte device family code reported in an Identity
// Reply at offsets 6-7 ("4F 03"), distinct from ModelID which prefixes DT1/
// RQ1 frame addresses.
var GT1000Family = [2]byte{0x4F, 0x03}

// IdentityRequest is the fixed broadcast Identity Request frame:
// F0 7E 7F 06 01 F7.
var IdentityRequest = []byte{
	SysExStart, universalNonRealtime, DeviceIDBroadcast, genInfoSubID1, identityRequestSubID, SysExEnd,
}

// Model names, distinguished by (software_rev_1, software_rev_2) carried in
// the Identity Reply.
const (
	ModelGT1000     = "GT-1000"
	ModelGT1000L    = "GT-1000L"
	ModelGT1000CORE = "GT-1000CORE"
)

// modelByRevision maps (software_rev_1, software_rev_2) to a model name.
var modelByRevision = map[[2]byte]string{
	{0x00, 0x01}: ModelGT1000,
	{0x01, 0x01}: ModelGT1000L,
	{0x02, 0x00}: ModelGT1000CORE,
}

// ModelForRevision resolves a model name from the two software revision
// bytes carried in an Identity Reply. The second return value is false for
// an unrecognized revision pair.
func ModelForRevision(rev1, rev2 byte) (string, bool) {
	name, ok := modelByRevision[[2]byte{rev1, rev2}]
	return name, ok
}

// FxSlotCount returns the number of "fx" category instances for a model:
// 3 on the CORE, 4 on every other GT-1000 variant.
func FxSlotCount(model string) int {
	if model == ModelGT1000CORE {
		return 3
	}
	return 4
}

// Editor-mode handshake addresses and expected replies. These addresses
// are not published in the retrieved documentation; they are placeholders
// that preserve the shape of the three-probe sequence (fetch, set+echo,
// fetch) pending confirmation against a real device capture.
var (
	EditorFetch1Addr = [4]byte{0x02, 0x00, 0x00, 0x00}
	EditorReply1     = []byte{0x00}

	EditorSet2Addr = [4]byte{0x02, 0x00, 0x00, 0x01}
	EditorReply2   = []byte{0x01}

	EditorFetch3Addr = [4]byte{0x02, 0x00, 0x00, 0x02}
	EditorReply3     = []byte{0x01}
)

// Read lengths for the two editor-mode probe fetches, and the value probe
// 2 writes.
const (
	EditorFetch1Len = 1
	EditorFetch3Len = 1

	EditorSet2Value byte = 0x01
)

// EditorProbe1OverrideChecksum is the fixed checksum byte the device
// accepts on the first probe read, in place of the arithmetically computed
// one. Whether the device genuinely requires an invalid checksum here, or
// the reference implementation's computation was simply wrong, is
// unresolved; both values are preserved for diagnosis (see Open Question
// 1): Checksum remains independently callable for the computed value.
const EditorProbe1OverrideChecksum byte = 0x00
