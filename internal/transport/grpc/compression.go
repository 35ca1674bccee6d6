// Package grpc implements the gRPC client transport contract: turning a
// typed request into an HTTP/2 POST and a typed response back out of the
// trailers-or-headers status shape gRPC uses over the wire.
package grpc

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/Haofei/volo-go/internal/rpcinfo"
	"github.com/Haofei/volo-go/internal/status"
	"google.golang.org/grpc/codes"
)

// Wire header names for gRPC message compression negotiation.
const (
	EncodingHeader       = "grpc-encoding"
	AcceptEncodingHeader = "grpc-accept-encoding"
)

// compressorFor returns a function that wraps w with a compressing writer
// for name, or nil for identity (no wrapping).
func compressorFor(name rpcinfo.CompressionName) (func(w io.Writer) (io.WriteCloser, error), bool) {
	switch name {
	case rpcinfo.CompressionIdentity, "":
		return nil, true
	case rpcinfo.CompressionGzip:
		return func(w io.Writer) (io.WriteCloser, error) {
			return gzip.NewWriterLevel(w, gzip.DefaultCompression)
		}, true
	default:
		return nil, false
	}
}

// compress encodes payload with the named algorithm, returning it unchanged
// for identity.
func compress(name rpcinfo.CompressionName, payload []byte) ([]byte, error) {
	newWriter, ok := compressorFor(name)
	if !ok {
		return nil, status.New(codes.Unimplemented, "unsupported send compression "+string(name)).Err()
	}
	if newWriter == nil {
		return payload, nil
	}
	var buf bytes.Buffer
	w, err := newWriter(&buf)
	if err != nil {
		return nil, status.New(codes.Internal, "compressor init failed: "+err.Error()).Err()
	}
	if _, err := w.Write(payload); err != nil {
		return nil, status.New(codes.Internal, "compression failed: "+err.Error()).Err()
	}
	if err := w.Close(); err != nil {
		return nil, status.New(codes.Internal, "compression flush failed: "+err.Error()).Err()
	}
	return buf.Bytes(), nil
}

// decompress decodes payload that was encoded with the named algorithm.
func decompress(name rpcinfo.CompressionName, payload []byte) ([]byte, error) {
	switch name {
	case rpcinfo.CompressionIdentity, "":
		return payload, nil
	case rpcinfo.CompressionGzip:
		r, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, status.New(codes.Internal, "gzip decode failed: "+err.Error()).Err()
		}
		defer r.Close()
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, status.New(codes.Internal, "gzip decode failed: "+err.Error()).Err()
		}
		return out, nil
	default:
		return nil, status.New(codes.Unimplemented, "unsupported receive compression "+string(name)).Err()
	}
}

// acceptEncodingValue joins a preference-ordered accept list into the
// comma-separated header value gRPC expects, skipping identity (it is
// always implicitly accepted and never needs to be advertised).
func acceptEncodingValue(accept []rpcinfo.CompressionName) string {
	tokens := make([]string, 0, len(accept))
	for _, name := range accept {
		if name == rpcinfo.CompressionIdentity || name == "" {
			continue
		}
		tokens = append(tokens, string(name))
	}
	return strings.Join(tokens, ",")
}

// negotiateReceiveCompression matches the response's grpc-encoding header
// against the configured accept list, rejecting anything not configured
// with an Internal status per spec section 4.1 step 10.
func negotiateReceiveCompression(headers http.Header, accept []rpcinfo.CompressionName) (rpcinfo.CompressionName, error) {
	enc := headers.Get(EncodingHeader)
	if enc == "" {
		return rpcinfo.CompressionIdentity, nil
	}
	name := rpcinfo.CompressionName(enc)
	if name == rpcinfo.CompressionIdentity {
		return name, nil
	}
	for _, a := range accept {
		if a == name {
			if _, ok := compressorFor(name); !ok {
				return "", status.New(codes.Unimplemented, "no codec for grpc-encoding "+enc).Err()
			}
			return name, nil
		}
	}
	return "", status.New(codes.Internal, "unnegotiated grpc-encoding "+enc).Err()
}
