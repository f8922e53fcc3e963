package protocol

import "fmt"

// Checksum computes the one-byte Roland checksum over addr∥body:
// (128 - (sum(addr∥body) mod 128)) mod 128, evaluated over 7-bit bytes.
func Checksum(addrAndBody ...[]byte) byte {
	var total int
	for _, b := range addrAndBody {
		for _, v := range b {
			total += int(v & 0x7F)
		}
	}
	return byte((128 - (total % 128)) % 128)
}

// BuildDT1 assembles a DT1 (data set 1 / write) frame addressed to dev,
// writing body at addr. The checksum is computed over addr∥body unless
// overrideChecksum is non-nil, in which case that byte is used verbatim;
// see Handshake probe 1 for the one known case that needs this.
func BuildDT1(dev byte, addr [4]byte, body []byte, overrideChecksum *byte) []byte {
	return buildFrame(dev, CommandDT1, addr[:], body, overrideChecksum)
}

// BuildRQ1 assembles an RQ1 (request data 1 / read) frame addressed to dev,
// requesting length bytes starting at addr. length is itself a 4-byte
// big-endian value per the wire format.
func BuildRQ1(dev byte, addr [4]byte, length [4]byte, overrideChecksum *byte) []byte {
	return buildFrame(dev, CommandRQ1, addr[:], length[:], overrideChecksum)
}

func buildFrame(dev, command byte, addr, body []byte, overrideChecksum *byte) []byte {
	cksum := Checksum(addr, body)
	if overrideChecksum != nil {
		cksum = *overrideChecksum
	}

	frame := make([]byte, 0, 10+len(addr)+len(body))
	frame = append(frame, SysExStart, ManufacturerID, dev)
	frame = append(frame, ModelID[:]...)
	frame = append(frame, command)
	frame = append(frame, addr...)
	frame = append(frame, body...)
	frame = append(frame, cksum, SysExEnd)
	return frame
}

// Kind classifies a parsed inbound frame.
type Kind int

const (
	KindOther Kind = iota
	KindMalformed
	KindIdentityReply
	KindDataReply // DT1 from the device: our data-bearing replies
)

// ParsedFrame is the decoded shape of one inbound SysEx frame.
type ParsedFrame struct {
	Kind Kind

	// Populated for KindIdentityReply.
	DeviceID     byte
	SoftwareRev1 byte
	SoftwareRev2 byte

	// Populated for KindDataReply.
	Address  [4]byte
	Body     []byte
	Checksum byte
}

// Parse classifies and decodes one inbound SysEx frame. A frame shorter
// than two bytes or lacking the F0/F7 sentinels is reported as
// KindMalformed; any other frame that is neither an identity reply nor a
// data reply (e.g. wrong manufacturer, model or command) is KindOther. No
// error is returned: the Transaction Layer silently discards both Other
// and Malformed frames.
func Parse(frame []byte) ParsedFrame {
	if p, ok := parseIdentityReply(frame); ok {
		return p
	}
	if p, ok := parseDataReply(frame); ok {
		return p
	}
	if len(frame) < 2 || frame[0] != SysExStart || frame[len(frame)-1] != SysExEnd {
		return ParsedFrame{Kind: KindMalformed}
	}
	return ParsedFrame{Kind: KindOther}
}

// parseIdentityReply recognizes:
// F0 7E dev 06 02 41 4F 03 00 00 sr1 00 sr2 00 F7  (15 bytes)
func parseIdentityReply(frame []byte) (ParsedFrame, bool) {
	const wantLen = 15
	if len(frame) != wantLen {
		return ParsedFrame{}, false
	}
	if frame[0] != SysExStart ||
		frame[1] != universalNonRealtime ||
		frame[3] != genInfoSubID1 ||
		frame[4] != identityReplySubID ||
		frame[5] != ManufacturerID ||
		frame[6] != GT1000Family[0] ||
		frame[7] != GT1000Family[1] ||
		frame[wantLen-1] != SysExEnd {
		return ParsedFrame{}, false
	}
	return ParsedFrame{
		Kind:         KindIdentityReply,
		DeviceID:     frame[2],
		SoftwareRev1: frame[10],
		SoftwareRev2: frame[12],
	}, true
}

// parseDataReply recognizes a DT1 frame originating from dev, of the shape:
// F0 41 dev 00 00 00 4F 12 addr(4) body(N) cksum F7
func parseDataReply(frame []byte) (ParsedFrame, bool) {
	const headerLen = 8 // start, mfr, dev, model(4), command
	const minLen = headerLen + 4 /*addr*/ + 1 /*cksum*/ + 1 /*end*/
	if len(frame) < minLen {
		return ParsedFrame{}, false
	}
	if frame[0] != SysExStart ||
		frame[1] != ManufacturerID ||
		frame[3] != ModelID[0] || frame[4] != ModelID[1] || frame[5] != ModelID[2] || frame[6] != ModelID[3] ||
		frame[7] != CommandDT1 ||
		frame[len(frame)-1] != SysExEnd {
		return ParsedFrame{}, false
	}

	var addr [4]byte
	copy(addr[:], frame[headerLen:headerLen+4])

	body := frame[headerLen+4 : len(frame)-2]
	cksum := frame[len(frame)-2]

	return ParsedFrame{
		Kind:     KindDataReply,
		DeviceID: frame[2],
		Address:  addr,
		Body:     append([]byte(nil), body...),
		Checksum: cksum,
	}, true
}

// FormatAddress renders a 4-byte address as "XXXXXXXX" for logging.
func FormatAddress(addr [4]byte) string {
	return fmt.Sprintf("%02X%02X%02X%02X", addr[0], addr[1], addr[2], addr[3])
}

// Uint32ToAddr packs an unsigned integer into a big-endian 4-byte address.
// It performs no overflow check; the Schema Store checks its additive
// arithmetic before calling it.
func Uint32ToAddr(v uint32) [4]byte {
	return [4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
}

// LengthToAddr encodes an RQ1 read length as a 4-byte big-endian value.
func LengthToAddr(length int) [4]byte {
	return Uint32ToAddr(uint32(length))
}
