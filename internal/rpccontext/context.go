// Package rpccontext holds the per-call context threaded through the
// connector, codec and gRPC transport layers: target, config, stats and
// the codec-signalling extensions map.
package rpccontext

import (
	"context"

	"github.com/google/uuid"

	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// CallContext is the per-call value carried alongside a Go context.Context
// through one RPC. It is exclusively owned by the goroutine that issued the
// call for the duration of that call (spec section 5's mutation rule); it
// is never read or written concurrently.
type CallContext struct {
	// Std is the cancellation/deadline carrier used for the call timeout
	// and for propagating caller cancellation into the HTTP/2 stream.
	Std context.Context

	RPCInfo    rpcinfo.RPCInfo
	Stats      rpcinfo.Stats
	Extensions Extensions
	Role       rpcinfo.Role

	// CallID correlates log lines for one call; purely observational.
	CallID string
}

// New creates a fresh call context with role Client, default config and
// zeroed stats, per spec section 4.4.
func New(std context.Context) *CallContext {
	return &CallContext{
		Std:    std,
		Role:   rpcinfo.RoleClient,
		CallID: uuid.NewString(),
	}
}

// Reset clears the config, stats and extensions so the context can be
// returned to a pool, per the "reusable" discipline in spec section 4.4.
// Std, Role, CallID and RPCInfo's Callee/Method are left unchanged.
func (cx *CallContext) Reset() {
	cx.RPCInfo.Config.Clear()
	cx.Stats.Clear()
	cx.Extensions.Clear()
}
