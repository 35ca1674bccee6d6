package thriftframed

import (
	"bufio"
	"context"

	"github.com/Haofei/volo-go/internal/rpccontext"
)

// ZeroCopyEncoder is the minimal capability the framed codec wraps:
// compute a message's wire size, then write it into a caller-provided
// buffer. Generated message serializers (the concrete per-IDL encoders)
// are out of scope for this module; callers of this package supply their
// own.
type ZeroCopyEncoder interface {
	// Size returns the message's real encoded size and the buffer size the
	// caller should allocate to hold it (malloc size may exceed real size
	// for implementations that round up).
	Size(ctx context.Context, msg any) (realSize, mallocSize int, err error)
	// Encode writes msg into buf, which is at least mallocSize bytes.
	Encode(ctx context.Context, buf []byte, msg any) error
}

// ZeroCopyDecoder is the decode half of ZeroCopyEncoder's pair: read a
// message either from an in-memory buffer or a streaming reader.
type ZeroCopyDecoder interface {
	// Decode reads msg from a complete in-memory buffer.
	Decode(ctx context.Context, buf []byte, msg any) error
	// DecodeAsync reads msg from a streaming buffered reader, for when the
	// full payload isn't known to be resident in memory yet.
	DecodeAsync(ctx context.Context, r *bufio.Reader, msg any) error
}

// passthroughCodec is a trivial ZeroCopyEncoder/ZeroCopyDecoder used only
// by this package's own tests: messages are already raw []byte, so
// Size/Encode/Decode simply move bytes without any actual Thrift field
// encoding.
type passthroughCodec struct{}

func (passthroughCodec) Size(_ context.Context, msg any) (int, int, error) {
	b := msg.([]byte)
	return len(b), len(b), nil
}

func (passthroughCodec) Encode(_ context.Context, buf []byte, msg any) error {
	copy(buf, msg.([]byte))
	return nil
}

func (passthroughCodec) Decode(_ context.Context, buf []byte, msg any) error {
	out := msg.(*[]byte)
	*out = append([]byte(nil), buf...)
	return nil
}

func (passthroughCodec) DecodeAsync(_ context.Context, r *bufio.Reader, msg any) error {
	out := msg.(*[]byte)
	b, err := r.Peek(r.Buffered())
	if err != nil {
		return err
	}
	*out = append([]byte(nil), b...)
	_, err = r.Discard(len(b))
	return err
}

// hasFramedKey is the typed key Codec uses to signal/read framing state on the call context's extensions map (spec
// section 9, "passing codec state between decode and encode").
type hasFramedKey struct{}

func setHasFramed(ext *rpccontext.Extensions) {
	ext.Set(hasFramedKey{}, struct{}{})
}

func hasFramed(ext *rpccontext.Extensions) bool {
	return ext.Has(hasFramedKey{})
}
