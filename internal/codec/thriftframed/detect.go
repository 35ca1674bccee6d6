// Package thriftframed implements the Thrift framed-transport codec: a
// 4-byte big-endian length prefix wrapped around an inner zero-copy
// protocol codec, with auto-detection of whether an inbound buffer is
// framed at all.
package thriftframed

// HeaderDetectLength is the minimum number of buffered bytes needed before
// framing can be classified: the 4-byte length prefix plus the 2 magic
// bytes of the inner protocol it would be followed by.
const HeaderDetectLength = 6

// Thrift protocol magic bytes, read at offset 4-5 of a buffer that might be
// framed. Binary protocol messages begin with a version marker whose high
// byte is 0x80 and whose low byte (the version number) is 0x01; compact
// protocol messages begin with a single magic byte 0x82.
const (
	binaryProtocolMagic0 = 0x80
	binaryProtocolMagic1 = 0x01
	compactProtocolMagic = 0x82
)

// IsFramed reports whether buf looks like a framed message: at least
// HeaderDetectLength bytes are available and bytes 4-5 match one of the
// known inner-protocol magic sequences. Buffers shorter than
// HeaderDetectLength are never classified as framed, matching the
// "detection exhaustiveness" invariant.
func IsFramed(buf []byte) bool {
	if len(buf) < HeaderDetectLength {
		return false
	}
	b4, b5 := buf[4], buf[5]
	if b4 == binaryProtocolMagic0 && b5 == binaryProtocolMagic1 {
		return true
	}
	if b4 == compactProtocolMagic {
		return true
	}
	return false
}
