package thriftframed

import (
	"bufio"
	"bytes"
	"context"
	"testing"

	"github.com/apache/thrift/lib/go/thrift"

	"github.com/Haofei/volo-go/internal/rpccontext"
	"github.com/Haofei/volo-go/internal/rpcinfo"
)

func newClientContext() *rpccontext.CallContext {
	cx := rpccontext.New(context.Background())
	cx.Role = rpcinfo.RoleClient
	return cx
}

func newServerContext() *rpccontext.CallContext {
	cx := rpccontext.New(context.Background())
	cx.Role = rpcinfo.RoleServer
	return cx
}

// compactPayload is a stand-in 10-byte compact-protocol message: only the
// leading magic byte matters to this package, the rest is arbitrary.
func compactPayload() []byte {
	return []byte{0x82, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
}

func TestClientEncodeAlwaysFrames(t *testing.T) {
	codec := New(passthroughCodec{})
	cx := newClientContext()
	payload := compactPayload()

	real, malloc, err := codec.Size(context.Background(), cx, payload)
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if real != len(payload)+4 || malloc != len(payload)+4 {
		t.Fatalf("Size() = (%d, %d), want %d", real, malloc, len(payload)+4)
	}

	buf := make([]byte, real)
	if err := codec.Encode(context.Background(), cx, buf, len(payload), payload); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	want := append([]byte{0x00, 0x00, 0x00, 0x0A}, payload...)
	if !bytes.Equal(buf, want) {
		t.Errorf("encoded = %x, want %x", buf, want)
	}
}

func TestServerRoundTripMirrorsFraming(t *testing.T) {
	codec := New(passthroughCodec{})
	framed := append([]byte{0x00, 0x00, 0x00, 0x0A}, compactPayload()...)

	serverCx := newServerContext()
	var decoded []byte
	if err := codec.Decode(context.Background(), serverCx, framed, &decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, compactPayload()) {
		t.Errorf("decoded = %x, want %x", decoded, compactPayload())
	}
	if !hasFramed(&serverCx.Extensions) {
		t.Fatal("expected HasFramed set on server context after decoding a framed message")
	}

	// The reply on the same context must now be framed too, mirroring what
	// was received, even though the role is server.
	real, _, err := codec.Size(context.Background(), serverCx, compactPayload())
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if real != len(compactPayload())+4 {
		t.Errorf("Size() = %d, want %d (reply should mirror inbound framing)", real, len(compactPayload())+4)
	}
}

func TestServerSkipsFramingForUnframedRequest(t *testing.T) {
	codec := New(passthroughCodec{})
	unframed := compactPayload()

	serverCx := newServerContext()
	var decoded []byte
	if err := codec.Decode(context.Background(), serverCx, unframed, &decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if hasFramed(&serverCx.Extensions) {
		t.Fatal("HasFramed must not be set for an unframed request")
	}

	real, _, err := codec.Size(context.Background(), serverCx, compactPayload())
	if err != nil {
		t.Fatalf("Size() error = %v", err)
	}
	if real != len(compactPayload()) {
		t.Errorf("Size() = %d, want %d (reply should stay unframed)", real, len(compactPayload()))
	}
}

func TestDecodeBufferShorterThanDetectLengthIsUnframed(t *testing.T) {
	codec := New(passthroughCodec{})
	cx := newServerContext()

	short := []byte{0x00, 0x00, 0x00, 0x05}
	var decoded []byte
	if err := codec.Decode(context.Background(), cx, short, &decoded); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if !bytes.Equal(decoded, short) {
		t.Errorf("short buffer should pass through to inner decoder unchanged, got %x", decoded)
	}
	if hasFramed(&cx.Extensions) {
		t.Error("a too-short buffer must never be classified as framed")
	}
}

func TestEncodeOversizedFrameIsFatal(t *testing.T) {
	codec := New(passthroughCodec{})
	codec.MaxFrameSize = 4
	cx := newClientContext()

	_, _, err := codec.Size(context.Background(), cx, compactPayload())
	if err == nil {
		t.Fatal("expected oversized frame to be rejected")
	}
	pe, ok := err.(thrift.TProtocolException)
	if !ok {
		t.Fatalf("error type = %T, want thrift.TProtocolException", err)
	}
	if pe.TypeId() != thrift.SIZE_LIMIT {
		t.Errorf("TypeId() = %v, want SIZE_LIMIT", pe.TypeId())
	}
}

func TestDecodeOversizedFrameIsFatal(t *testing.T) {
	codec := New(passthroughCodec{})
	codec.MaxFrameSize = 16 * 1024 * 1024

	// Length prefix 0x01000001 (16 MiB + 1, read big-endian) exceeds the
	// 16 MiB max frame size by one byte.
	oversized := append([]byte{0x01, 0x00, 0x00, 0x01}, compactPayload()...)
	cx := newServerContext()
	var decoded []byte
	err := codec.Decode(context.Background(), cx, oversized, &decoded)
	if err == nil {
		t.Fatal("expected oversized frame length prefix to be rejected")
	}
	pe, ok := err.(thrift.TProtocolException)
	if !ok {
		t.Fatalf("error type = %T, want thrift.TProtocolException", err)
	}
	if pe.TypeId() != thrift.SIZE_LIMIT {
		t.Errorf("TypeId() = %v, want SIZE_LIMIT", pe.TypeId())
	}
}

func TestDecodeAsyncFramedStreaming(t *testing.T) {
	codec := New(passthroughCodec{})
	framed := append([]byte{0x00, 0x00, 0x00, 0x0A}, compactPayload()...)
	r := bufio.NewReader(bytes.NewReader(framed))

	cx := newServerContext()
	var decoded []byte
	if err := codec.DecodeAsync(context.Background(), cx, r, &decoded); err != nil {
		t.Fatalf("DecodeAsync() error = %v", err)
	}
	if !bytes.Equal(decoded, compactPayload()) {
		t.Errorf("decoded = %x, want %x", decoded, compactPayload())
	}
	if !hasFramed(&cx.Extensions) {
		t.Error("expected HasFramed set after streaming-decoding a framed message")
	}
	if cx.Stats.ReadSize() != len(framed) {
		t.Errorf("ReadSize() = %d, want %d", cx.Stats.ReadSize(), len(framed))
	}
	if cx.Stats.ReadEndAt().IsZero() {
		t.Error("expected ReadEndAt to be recorded")
	}
}

func TestDecodeAsyncUnframedStreamingDelegates(t *testing.T) {
	codec := New(passthroughCodec{})
	unframed := compactPayload()
	r := bufio.NewReader(bytes.NewReader(unframed))

	cx := newServerContext()
	var decoded []byte
	if err := codec.DecodeAsync(context.Background(), cx, r, &decoded); err != nil {
		t.Fatalf("DecodeAsync() error = %v", err)
	}
	if !bytes.Equal(decoded, unframed) {
		t.Errorf("decoded = %x, want %x", decoded, unframed)
	}
	if hasFramed(&cx.Extensions) {
		t.Error("HasFramed must not be set for an unframed stream")
	}
}

func TestDecodeAsyncShortReaderDelegatesToInner(t *testing.T) {
	codec := New(passthroughCodec{})
	short := []byte{0x01, 0x02, 0x03}
	r := bufio.NewReader(bytes.NewReader(short))

	cx := newServerContext()
	var decoded []byte
	if err := codec.DecodeAsync(context.Background(), cx, r, &decoded); err != nil {
		t.Fatalf("DecodeAsync() error = %v", err)
	}
	if !bytes.Equal(decoded, short) {
		t.Errorf("decoded = %x, want %x", decoded, short)
	}
}
