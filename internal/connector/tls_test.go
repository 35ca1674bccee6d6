package connector

import "testing"

func TestNewTLSALPNOrdering(t *testing.T) {
	tests := []struct {
		name       string
		http2, http1 bool
		want       []string
	}{
		{"both", true, true, []string{"h2", "http/1.1"}},
		{"h2 only", true, false, []string{"h2"}},
		{"http1 only", false, true, []string{"http/1.1"}},
		{"neither", false, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tl := NewTLS(NewPlain(testConfig()), TLSConfig{HTTP2Enabled: tt.http2, HTTP1Enabled: tt.http1})
			if len(tl.alpn) != len(tt.want) {
				t.Fatalf("alpn = %v, want %v", tl.alpn, tt.want)
			}
			for i := range tt.want {
				if tl.alpn[i] != tt.want[i] {
					t.Fatalf("alpn = %v, want %v", tl.alpn, tt.want)
				}
			}
		})
	}
}

func TestWithHTTPSchemeRewrite(t *testing.T) {
	peer := testPeer("https")
	rewritten := withHTTPScheme(peer)
	if rewritten.Scheme != "http" {
		t.Errorf("Scheme = %q, want %q", rewritten.Scheme, "http")
	}
	if peer.Scheme != "https" {
		t.Error("withHTTPScheme must not mutate its argument")
	}
}
