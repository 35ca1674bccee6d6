package connector

import "github.com/Haofei/volo-go/internal/rpcinfo"

func testConfig() rpcinfo.Config {
	return rpcinfo.NewConfig()
}

func testPeer(scheme string) rpcinfo.PeerInfo {
	return rpcinfo.PeerInfo{
		Scheme:  scheme,
		Address: rpcinfo.IPAddress("127.0.0.1:8000"),
		TLSName: "example.test",
	}
}
