package ecdsasig

// Minimal RLP encoder covering exactly what the raw-transaction framing
// needs: a flat list of byte strings and unsigned integers. Nested
// lists, decoding and streaming are not needed here.

// rlpBytes encodes a byte string: a single byte in [0x00, 0x7f] encodes
// as itself; otherwise a length-prefixed string.
func rlpBytes(b []byte) []byte {
	if len(b) == 1 && b[0] < 0x80 {
		return []byte{b[0]}
	}
	return rlpWithLengthPrefix(0x80, b)
}

// rlpUint encodes an unsigned integer as its minimal big-endian byte
// string (RLP has no native integer type; zero is the empty string).
func rlpUint(v uint64) []byte {
	return rlpBytes(uint64ToBytes(v))
}

// rlpEncodeList wraps pre-encoded items in an RLP list header.
func rlpEncodeList(items ...[]byte) []byte {
	var payload []byte
	for _, item := range items {
		payload = append(payload, item...)
	}
	return rlpWithLengthPrefix(0xc0, payload)
}

func rlpWithLengthPrefix(base byte, payload []byte) []byte {
	if len(payload) < 56 {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, base+byte(len(payload)))
		out = append(out, payload...)
		return out
	}

	lenBytes := uint64ToBytes(uint64(len(payload)))
	out := make([]byte, 0, 1+len(lenBytes)+len(payload))
	out = append(out, base+55+byte(len(lenBytes)))
	out = append(out, lenBytes...)
	out = append(out, payload...)
	return out
}
