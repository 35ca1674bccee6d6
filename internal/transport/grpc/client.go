package grpc

import (
	"context"
	"crypto/tls"
	"io"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"google.golang.org/grpc/codes"

	"github.com/Haofei/volo-go/internal/connector"
	"github.com/Haofei/volo-go/internal/logging"
	"github.com/Haofei/volo-go/internal/rpccontext"
	"github.com/Haofei/volo-go/internal/rpcinfo"
	"github.com/Haofei/volo-go/internal/status"
)

// Request is a typed gRPC request: metadata headers, call-scoped
// extensions, and a message capable of producing its own wire bytes.
// NewResponse builds the empty typed response message the transport will
// decode into, playing the role the Rust implementation's generic `U:
// RecvEntryMessage` type parameter plays.
type Request struct {
	Metadata    http.Header
	Extensions  map[any]any
	Message     SendEntryMessage
	NewResponse func() RecvEntryMessage
}

// Response is a typed gRPC response: the response header map and a message
// that has already consumed and decoded the body.
type Response struct {
	Header  http.Header
	Trailer http.Header
	Message RecvEntryMessage
}

// ClientTransport drives the gRPC call(cx, request) contract of spec
// section 4.1 over an HTTP/2 RoundTripper built from a Connector.
type ClientTransport struct {
	rt *http2.Transport
}

// NewClientTransport builds a ClientTransport dialing through conn, tuned
// by h2cfg per spec.md section 6's HTTP/2 knob mapping (see Http2Config).
// AllowHTTP is set so that plaintext h2c ("http://") URIs dial without a
// TLS upgrade, matching the plain-TCP gRPC deployments this module targets.
func NewClientTransport(conn connector.Connector, h2cfg Http2Config) *ClientTransport {
	rt := &http2.Transport{
		AllowHTTP: true,
		DialTLSContext: func(ctx context.Context, network, addr string, cfg *tls.Config) (net.Conn, error) {
			return dialThroughConnector(ctx, conn, addr)
		},
		MaxReadFrameSize:           h2cfg.MaxFrameSize,
		PingTimeout:                h2cfg.KeepAliveTimeout,
		StrictMaxConcurrentStreams: h2cfg.MaxConcurrentResetStreams > 0,
	}
	if h2cfg.KeepAliveWhileIdle {
		rt.ReadIdleTimeout = h2cfg.KeepAliveInterval
	}
	return &ClientTransport{rt: rt}
}

// dialThroughConnector adapts the Connector's PeerInfo-keyed Call into the
// (network, addr string) shape http2.Transport's dial hooks expect. addr
// arrives as "host:port"; this transport only targets IP peers through the
// generic RoundTripper dial path (Unix-socket peers are a connector concern
// below this layer and never reach http2.Transport's own dialer).
func dialThroughConnector(ctx context.Context, conn connector.Connector, addr string) (net.Conn, error) {
	peer := rpcinfo.PeerInfo{Scheme: "http", Address: rpcinfo.IPAddress(addr)}
	return conn.Call(ctx, peer)
}

// Call implements spec section 4.1's twelve steps.
func (t *ClientTransport) Call(cx *rpccontext.CallContext, req *Request) (*Response, error) {
	addr, ok := cx.RPCInfo.CalleeAddress()
	if !ok {
		return nil, status.New(codes.InvalidArgument, "address is required").Err()
	}

	cfg := cx.RPCInfo.Config
	sendCompression := cfg.FirstSendCompression()

	// Config.Timeout is the end-to-end call deadline (spec section 4.4);
	// exceeding it must surface as DeadlineExceeded (section 7), which
	// status.FromError derives from the context error once RoundTrip
	// returns.
	callCtx := cx.Std
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(cx.Std, cfg.Timeout)
		defer cancel()
	}

	body, err := lazyFrameSequence(req.Message, sendCompression)
	if err != nil {
		return nil, err
	}

	uri, err := buildURI(addr, cx.RPCInfo.Method)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, uri.String(), body)
	if err != nil {
		return nil, status.New(codes.Internal, "failed to build request: "+err.Error()).Err()
	}
	httpReq.Proto = "HTTP/2.0"
	httpReq.ProtoMajor, httpReq.ProtoMinor = 2, 0

	if req.Metadata != nil {
		httpReq.Header = req.Metadata.Clone()
	} else {
		httpReq.Header = make(http.Header)
	}
	httpReq.Header.Set("te", "trailers")
	httpReq.Header.Set("content-type", "application/grpc")

	if sendCompression != "" && sendCompression != rpcinfo.CompressionIdentity {
		httpReq.Header.Set(EncodingHeader, string(sendCompression))
	}
	if accept := acceptEncodingValue(cfg.AcceptCompressions); accept != "" {
		httpReq.Header.Set(AcceptEncodingHeader, accept)
	}

	cx.Stats.SetTransportStartAt(time.Now())

	resp, err := t.rt.RoundTrip(httpReq)
	if err != nil {
		logging.ForCall(cx.CallID, cx.RPCInfo.Method).Warn("grpc transport dispatch failed", zap.Error(err))
		return nil, status.FromError(err).Err()
	}
	defer resp.Body.Close()

	cx.Stats.SetTransportEndAt(time.Now())

	// Trailers-only error shape: status lives in the initial headers
	// because no body was produced.
	if st, ok := status.FromHeaderMap(resp.Header); ok && st.Code() != codes.OK {
		return nil, st.Err()
	}

	recvCompression, err := negotiateReceiveCompression(resp.Header, cfg.AcceptCompressions)
	if err != nil {
		return nil, err
	}

	payload, err := readMessage(resp.Body, recvCompression)
	if err != nil && err != io.EOF {
		return nil, status.New(codes.Unknown, "failed to read response body: "+err.Error()).Err()
	}

	// resp.Trailer is only filled in once the body has been read to EOF.
	io.Copy(io.Discard, resp.Body)
	if st, ok := status.FromHeaderMap(resp.Trailer); ok && st.Code() != codes.OK {
		return nil, st.Err()
	}

	out := &Response{Header: resp.Header, Trailer: resp.Trailer}
	if req.NewResponse != nil {
		out.Message = req.NewResponse()
		if err := out.Message.FromBody(cx.RPCInfo.Method, payload, ResponseKind{StatusCode: resp.StatusCode}); err != nil {
			return nil, err
		}
	}
	return out, nil
}
