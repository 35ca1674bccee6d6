package thriftframed

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/Haofei/volo-go/internal/logging"
	"github.com/Haofei/volo-go/internal/rpccontext"
	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// Codec wraps an inner zero-copy protocol codec with Thrift's framed
// transport: a 4-byte big-endian length prefix, emitted or expected
// depending on role and on what the peer previously sent (spec section
// 4.3).
type Codec struct {
	Inner        ZeroCopyEncoder
	InnerDecoder ZeroCopyDecoder
	MaxFrameSize int32
}

// New builds a Codec with the default max frame size.
func New(inner interface {
	ZeroCopyEncoder
	ZeroCopyDecoder
}) *Codec {
	return &Codec{Inner: inner, InnerDecoder: inner, MaxFrameSize: DefaultMaxFrameSize}
}

// shouldFrame implements spec section 4.3.2's role/tag split: clients
// always frame; servers mirror whatever shape their inbound request had,
// recorded on the call context's extensions by Decode/DecodeAsync.
func (c *Codec) shouldFrame(cx *rpccontext.CallContext) bool {
	if cx.Role == rpcinfo.RoleClient {
		return true
	}
	return hasFramed(&cx.Extensions)
}

// Size computes the real and malloc sizes for msg, per the two-phase
// encoder contract: first Size, then Encode. When framing applies, the
// inner size is validated against MaxFrameSize and 4 bytes are added to
// both returned sizes for the length prefix.
func (c *Codec) Size(ctx context.Context, cx *rpccontext.CallContext, msg any) (realSize, mallocSize int, err error) {
	innerReal, innerMalloc, err := c.Inner.Size(ctx, msg)
	if err != nil {
		return 0, 0, err
	}
	if !c.shouldFrame(cx) {
		return innerReal, innerMalloc, nil
	}
	if err := checkFramedSize(int32(innerReal), c.MaxFrameSize); err != nil {
		logging.ForCall(cx.CallID, cx.RPCInfo.Method).Error("thrift frame size rejected, closing connection",
			logging.FrameSizeFields(int32(innerReal), c.MaxFrameSize, err)...)
		return 0, 0, err
	}
	return innerReal + 4, innerMalloc + 4, nil
}

// Encode writes msg into buf, prefixing it with a big-endian frame length
// when shouldFrame(cx) holds.
func (c *Codec) Encode(ctx context.Context, cx *rpccontext.CallContext, buf []byte, innerSize int, msg any) error {
	if !c.shouldFrame(cx) {
		return c.Inner.Encode(ctx, buf, msg)
	}
	binary.BigEndian.PutUint32(buf[:4], uint32(innerSize))
	return c.Inner.Encode(ctx, buf[4:], msg)
}

// Decode implements the buffered decode path of spec section 4.3.1: a
// buffer shorter than HeaderDetectLength can't be classified and is
// forwarded to the inner decoder unchanged; otherwise framing is detected
// by magic, the length prefix is validated and stripped, HasFramed is
// recorded, and the inner decoder runs on the remaining bytes.
func (c *Codec) Decode(ctx context.Context, cx *rpccontext.CallContext, buf []byte, msg any) error {
	if len(buf) < HeaderDetectLength || !IsFramed(buf) {
		return c.InnerDecoder.Decode(ctx, buf, msg)
	}

	length := int32(binary.BigEndian.Uint32(buf[:4]))
	if err := checkFramedSize(length, c.MaxFrameSize); err != nil {
		logging.ForCall(cx.CallID, cx.RPCInfo.Method).Error("thrift frame size rejected, closing connection",
			logging.FrameSizeFields(length, c.MaxFrameSize, err)...)
		return err
	}

	setHasFramed(&cx.Extensions)
	payload := buf[4:]
	if int32(len(payload)) < length {
		return fmt.Errorf("thriftframed: short buffer: want %d bytes, have %d", length, len(payload))
	}
	return c.InnerDecoder.Decode(ctx, payload[:length], msg)
}

// DecodeAsync implements the streaming decode path of spec section 4.3.1:
// fill the reader until HeaderDetectLength bytes are buffered, peek the
// magic, and either delegate straight to the inner streaming decoder
// (unframed) or read exactly the framed length and decode the
// now-materialized payload through the inner buffered decoder.
func (c *Codec) DecodeAsync(ctx context.Context, cx *rpccontext.CallContext, r *bufio.Reader, msg any) error {
	peek, err := r.Peek(HeaderDetectLength)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return c.InnerDecoder.DecodeAsync(ctx, r, msg)
		}
		return err
	}

	if !IsFramed(peek) {
		return c.InnerDecoder.DecodeAsync(ctx, r, msg)
	}

	length := int32(binary.BigEndian.Uint32(peek[:4]))
	if err := checkFramedSize(length, c.MaxFrameSize); err != nil {
		logging.ForCall(cx.CallID, cx.RPCInfo.Method).Error("thrift frame size rejected, closing connection",
			logging.FrameSizeFields(length, c.MaxFrameSize, err)...)
		return err
	}
	cx.Stats.SetReadSize(int(length) + 4)

	if _, err := r.Discard(4); err != nil {
		return err
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		err = fmt.Errorf("thriftframed: short read of framed payload: %w", err)
		logging.ForCall(cx.CallID, cx.RPCInfo.Method).Error("thrift frame short read, closing connection",
			logging.FrameSizeFields(length, c.MaxFrameSize, err)...)
		return err
	}

	cx.Stats.SetReadEndAt(time.Now())
	setHasFramed(&cx.Extensions)

	return c.InnerDecoder.Decode(ctx, payload, msg)
}
