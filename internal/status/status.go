// Package status is the gRPC error surface: a thin wrapper around
// google.golang.org/grpc/status that adds the header/trailer extraction
// behavior spec.md's gRPC client transport depends on (trailers-only
// responses, connector error classification).
package status

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Status wraps a *status.Status with the header/trailer helpers the
// transport layer needs. It is returned wherever spec.md says "Status".
type Status struct {
	inner *status.Status
}

// New builds a Status from a code and message.
func New(code codes.Code, msg string) *Status {
	return &Status{inner: status.New(code, msg)}
}

// Errorf builds a Status with a formatted message.
func Errorf(code codes.Code, format string, args ...any) *Status {
	return &Status{inner: status.Newf(code, format, args...)}
}

// Code returns the status code, Code::Ok for a nil-valued Status.
func (s *Status) Code() codes.Code {
	if s == nil || s.inner == nil {
		return codes.OK
	}
	return s.inner.Code()
}

// Message returns the human-readable status message.
func (s *Status) Message() string {
	if s == nil || s.inner == nil {
		return ""
	}
	return s.inner.Message()
}

// Err returns s as an error, or nil if s is OK or nil.
func (s *Status) Err() error {
	if s == nil || s.Code() == codes.OK {
		return nil
	}
	return s.inner.Err()
}

func (s *Status) Error() string {
	if s == nil {
		return ""
	}
	return s.inner.Err().Error()
}

const (
	grpcStatusHeader  = "grpc-status"
	grpcMessageHeader = "grpc-message"
)

// FromHeaderMap extracts a Status from an HTTP header map, honoring the
// "trailers-only" gRPC error shape where grpc-status/grpc-message appear in
// the initial response headers because no body was produced (spec section
// 4.1 step 9). It returns (status, true) only when a grpc-status value is
// present; a missing header means "not yet known," not Ok.
func FromHeaderMap(h http.Header) (*Status, bool) {
	raw := h.Get(grpcStatusHeader)
	if raw == "" {
		return nil, false
	}
	code, err := strconv.Atoi(raw)
	if err != nil {
		return New(codes.Internal, "malformed grpc-status header: "+raw), true
	}
	return New(codes.Code(code), h.Get(grpcMessageHeader)), true
}

// FromTrailer extracts a Status from an HTTP trailer map, the normal (non
// trailers-only) path.
func FromTrailer(h http.Header) (*Status, bool) {
	return FromHeaderMap(h)
}

// FromError classifies a transport-layer error into a Status, per the
// disposition table in spec section 7: timeouts become DeadlineExceeded,
// connection-refused/reset become Unavailable, everything else Unknown. An
// error that already carries a gRPC status (e.g. one this package itself
// produced) is unwrapped verbatim rather than reclassified.
func FromError(err error) *Status {
	if err == nil {
		return New(codes.OK, "")
	}
	if s, ok := status.FromError(err); ok {
		return &Status{inner: s}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(codes.DeadlineExceeded, err.Error())
	}
	if errors.Is(err, context.Canceled) {
		return New(codes.Canceled, err.Error())
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return New(codes.DeadlineExceeded, err.Error())
		}
		return New(codes.Unavailable, err.Error())
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return New(codes.Unavailable, err.Error())
	}
	return New(codes.Unknown, err.Error())
}

// InvalidArgument is a convenience constructor for the most common
// client-side validation failure (missing callee address).
func InvalidArgument(msg string) *Status {
	return New(codes.InvalidArgument, msg)
}

// Internal is a convenience constructor for internal/programming errors
// (URI build failure, compression mismatch).
func Internal(msg string) *Status {
	return New(codes.Internal, msg)
}
