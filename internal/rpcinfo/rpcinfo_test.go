package rpcinfo

import "testing"

func TestRoleString(t *testing.T) {
	if RoleClient.String() != "client" {
		t.Errorf("RoleClient.String() = %q, want %q", RoleClient.String(), "client")
	}
	if RoleServer.String() != "server" {
		t.Errorf("RoleServer.String() = %q, want %q", RoleServer.String(), "server")
	}
}

func TestCalleeAddressMissing(t *testing.T) {
	info := RPCInfo{}
	if _, ok := info.CalleeAddress(); ok {
		t.Error("expected ok=false for a zero-value Callee")
	}
}

func TestCalleeAddressPresent(t *testing.T) {
	info := RPCInfo{Callee: PeerInfo{Scheme: "http", Address: IPAddress("127.0.0.1:9090")}}
	addr, ok := info.CalleeAddress()
	if !ok {
		t.Fatal("expected ok=true for a populated Callee")
	}
	if addr.String() != "127.0.0.1:9090" {
		t.Errorf("Address = %q, want %q", addr.String(), "127.0.0.1:9090")
	}
}

func TestAddressStringByNetwork(t *testing.T) {
	if got := IPAddress("127.0.0.1:9090").String(); got != "127.0.0.1:9090" {
		t.Errorf("IPAddress.String() = %q", got)
	}
	if got := UnixAddress("/tmp/rpc.sock").String(); got != "/tmp/rpc.sock" {
		t.Errorf("UnixAddress.String() = %q", got)
	}
}

func TestPeerInfoString(t *testing.T) {
	peer := PeerInfo{Scheme: "https", Address: IPAddress("example.com:443")}
	if got := peer.String(); got != "https://example.com:443" {
		t.Errorf("PeerInfo.String() = %q", got)
	}
}

func TestFirstSendCompressionDefaultsToIdentity(t *testing.T) {
	var cfg Config
	if got := cfg.FirstSendCompression(); got != CompressionIdentity {
		t.Errorf("FirstSendCompression() = %q, want %q", got, CompressionIdentity)
	}
}

func TestFirstSendCompressionHonorsOrder(t *testing.T) {
	cfg := NewConfig(WithSendCompressions(CompressionGzip, CompressionIdentity))
	if got := cfg.FirstSendCompression(); got != CompressionGzip {
		t.Errorf("FirstSendCompression() = %q, want %q", got, CompressionGzip)
	}
}

func TestConfigClearResetsToDefaults(t *testing.T) {
	cfg := NewConfig(WithSendCompressions(CompressionGzip), WithTimeout(5))
	cfg.Clear()
	if len(cfg.SendCompressions) != 0 || cfg.Timeout != 0 {
		t.Errorf("Clear() left cfg = %+v, want zero value", cfg)
	}
}

func TestNewConfigAppliesAllOptions(t *testing.T) {
	cfg := NewConfig(
		WithConnectTimeout(1),
		WithReadTimeout(2),
		WithWriteTimeout(3),
		WithTimeout(4),
		WithSendCompressions(CompressionGzip),
		WithAcceptCompressions(CompressionGzip, CompressionIdentity),
	)
	if cfg.ConnectTimeout != 1 || cfg.ReadTimeout != 2 || cfg.WriteTimeout != 3 || cfg.Timeout != 4 {
		t.Errorf("timeouts not applied: %+v", cfg)
	}
	if len(cfg.SendCompressions) != 1 || len(cfg.AcceptCompressions) != 2 {
		t.Errorf("compression lists not applied: %+v", cfg)
	}
}

func TestStatsWriteOnce(t *testing.T) {
	var s Stats
	first := s.TransportStartAt()
	if !first.IsZero() {
		t.Fatal("expected a fresh Stats to report a zero TransportStartAt")
	}

	t1 := first.Add(1)
	s.SetTransportStartAt(t1)
	s.SetTransportStartAt(t1.Add(1))
	if got := s.TransportStartAt(); !got.Equal(t1) {
		t.Errorf("TransportStartAt() = %v, want the first-written value %v", got, t1)
	}
}

func TestStatsReadSizeWriteOnce(t *testing.T) {
	var s Stats
	s.SetReadSize(10)
	s.SetReadSize(20)
	if got := s.ReadSize(); got != 10 {
		t.Errorf("ReadSize() = %d, want 10 (first write wins)", got)
	}
}

func TestStatsClear(t *testing.T) {
	var s Stats
	s.SetReadSize(10)
	s.Clear()
	if s.ReadSize() != 0 {
		t.Errorf("ReadSize() after Clear() = %d, want 0", s.ReadSize())
	}
}
