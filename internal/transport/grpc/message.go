package grpc

import (
	"encoding/binary"
	"io"

	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// SendEntryMessage is the capability a typed request's message body must
// offer: produce its wire bytes so the transport can frame and send them.
// Generated message (de)serializers are out of scope for this module; a
// concrete implementation supplies the already-marshaled payload.
type SendEntryMessage interface {
	// Into returns the raw (uncompressed) message bytes.
	Into() ([]byte, error)
}

// RecvEntryMessage is the capability a typed response's message body must
// offer: reconstruct itself from a decompressed gRPC message payload plus
// the observed response kind.
type RecvEntryMessage interface {
	// FromBody reconstructs the message from a decompressed payload. kind
	// reports the HTTP status the response arrived under.
	FromBody(path string, payload []byte, kind ResponseKind) error
}

// ResponseKind mirrors the "Response(status_code)" tag from spec section
// 4.1 step 11: it carries the HTTP status code the response arrived under.
// It does not tell a trailers-only response apart from one with a body;
// both normally arrive with status 200.
type ResponseKind struct {
	StatusCode int
}

// grpcFrame is the 5-byte gRPC length-prefixed message frame: 1 compression
// flag byte, 4 big-endian length bytes, then the payload.
func grpcFrame(compressed bool, payload []byte) []byte {
	frame := make([]byte, 5+len(payload))
	if compressed {
		frame[0] = 1
	}
	binary.BigEndian.PutUint32(frame[1:5], uint32(len(payload)))
	copy(frame[5:], payload)
	return frame
}

// lazyFrameSequence turns a SendEntryMessage into the single-frame lazy
// byte sequence spec section 4.1 step 4 and section 9 ("lazy frame
// sequence") describe: an io.Reader whose bytes aren't produced until the
// HTTP/2 engine pulls them, so back-pressure from stream flow control
// naturally suspends the producer.
func lazyFrameSequence(msg SendEntryMessage, send rpcinfo.CompressionName) (io.Reader, error) {
	return &frameReader{msg: msg, send: send}, nil
}

// frameReader defers marshaling/compressing the message until the first
// Read, and serves the framed bytes out of a buffer afterward.
type frameReader struct {
	msg  SendEntryMessage
	send rpcinfo.CompressionName

	buf    []byte
	offset int
	err    error
	built  bool
}

func (r *frameReader) Read(p []byte) (int, error) {
	if !r.built {
		r.build()
	}
	if r.err != nil {
		return 0, r.err
	}
	if r.offset >= len(r.buf) {
		return 0, io.EOF
	}
	n := copy(p, r.buf[r.offset:])
	r.offset += n
	return n, nil
}

func (r *frameReader) build() {
	r.built = true
	raw, err := r.msg.Into()
	if err != nil {
		r.err = err
		return
	}
	payload, err := compress(r.send, raw)
	if err != nil {
		r.err = err
		return
	}
	compressed := r.send != rpcinfo.CompressionIdentity && r.send != ""
	r.buf = grpcFrame(compressed, payload)
}

// readMessage reads one gRPC length-prefixed frame fully from body and
// returns the decompressed payload.
func readMessage(body io.Reader, recv rpcinfo.CompressionName) ([]byte, error) {
	var header [5]byte
	if _, err := io.ReadFull(body, header[:]); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}
	compressed := header[0] == 1
	length := binary.BigEndian.Uint32(header[1:5])

	payload := make([]byte, length)
	if _, err := io.ReadFull(body, payload); err != nil {
		return nil, err
	}
	if !compressed {
		return payload, nil
	}
	return decompress(recv, payload)
}
