package connector

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/Haofei/volo-go/internal/rpcinfo"
)

func TestPlainRejectsNonHTTPScheme(t *testing.T) {
	p := NewPlain(rpcinfo.NewConfig())

	_, err := p.Call(context.Background(), rpcinfo.PeerInfo{
		Scheme:  "https",
		Address: rpcinfo.IPAddress("127.0.0.1:0"),
	})
	if err == nil {
		t.Fatal("expected BadScheme error")
	}

	var ce *ClientError
	if !asClientError(err, &ce) {
		t.Fatalf("expected *ClientError, got %T", err)
	}
	if ce.Kind != KindBadScheme {
		t.Errorf("Kind = %v, want %v", ce.Kind, KindBadScheme)
	}
}

func TestPlainDialsTCP(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	p := NewPlain(rpcinfo.NewConfig(rpcinfo.WithConnectTimeout(time.Second)))
	conn, err := p.Call(context.Background(), rpcinfo.PeerInfo{
		Scheme:  "http",
		Address: rpcinfo.IPAddress(ln.Addr().String()),
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	defer conn.Close()
}

func TestPlainDialsUnix(t *testing.T) {
	dir := t.TempDir()
	sockPath := dir + "/test.sock"
	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	p := NewPlain(rpcinfo.NewConfig())
	conn, err := p.Call(context.Background(), rpcinfo.PeerInfo{
		Scheme:  "http",
		Address: rpcinfo.UnixAddress(sockPath),
	})
	if err != nil {
		t.Fatalf("Call() error = %v", err)
	}
	defer conn.Close()
}

func TestPlainUnavailableWrapsDialError(t *testing.T) {
	p := NewPlain(rpcinfo.NewConfig(rpcinfo.WithConnectTimeout(50 * time.Millisecond)))
	_, err := p.Call(context.Background(), rpcinfo.PeerInfo{
		Scheme:  "http",
		Address: rpcinfo.IPAddress("192.0.2.1:1"), // TEST-NET-1, expected to black-hole
	})
	if err == nil {
		t.Fatal("expected dial failure")
	}
	var ce *ClientError
	if !asClientError(err, &ce) {
		t.Fatalf("expected *ClientError, got %T", err)
	}
	if ce.Kind != KindUnavailable {
		t.Errorf("Kind = %v, want %v", ce.Kind, KindUnavailable)
	}
}

func asClientError(err error, target **ClientError) bool {
	ce, ok := err.(*ClientError)
	if !ok {
		return false
	}
	*target = ce
	return true
}
