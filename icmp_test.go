//go:build linux

package axio_test

import (
	"os"
	"testing"

	"github.com/brickingsoft/axio"
	"github.com/brickingsoft/axio/ip"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// 原始套接字需要 CAP_NET_RAW，普通环境下跳过。
func TestICMPEchoLoopback(t *testing.T) {
	ctx := newContext(t)

	s, err := axio.NewICMPSocket(ctx, ip.ICMPv4())
	if err != nil {
		t.Skipf("icmp socket: %v", err)
	}
	defer func() {
		_ = s.Close()
	}()

	echo := icmp.Message{
		Type: ipv4.ICMPTypeEcho,
		Code: 0,
		Body: &icmp.Echo{
			ID:   os.Getpid() & 0xffff,
			Seq:  1,
			Data: []byte("AXIO-PING"),
		},
	}
	payload, err := echo.Marshal(nil)
	if err != nil {
		t.Fatal(err)
	}

	target := ip.NewEndpoint(ip.LoopbackV4(), 0)
	buf := make([]byte, 1500)
	var reply *icmp.Message
	var onReceive func(n int, peer ip.Endpoint, err error)
	onReceive = func(n int, peer ip.Endpoint, err error) {
		if err != nil {
			t.Error("receive_from:", err)
			return
		}
		// 原始 IPv4 套接字的读包含 IP 头，先剥掉。
		header, herr := ipv4.ParseHeader(buf[:n])
		if herr != nil {
			t.Error("parse header:", herr)
			return
		}
		msg, perr := icmp.ParseMessage(ip.ICMPv4().Number(), buf[header.Len:n])
		if perr != nil {
			t.Error("parse message:", perr)
			return
		}
		// 环回接口上也会收到自己发出的请求，略过它等待应答。
		if msg.Type != ipv4.ICMPTypeEchoReply {
			s.AsyncReceiveFrom(buf, onReceive)
			return
		}
		reply = msg
	}
	s.AsyncReceiveFrom(buf, onReceive)
	s.AsyncSendTo(payload, target, func(n int, err error) {
		if err != nil {
			t.Error("send_to:", err)
		}
	})

	if err = ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if reply == nil {
		t.Fatal("no reply")
	}
	if reply.Type != ipv4.ICMPTypeEchoReply {
		t.Fatal("unexpected reply type:", reply.Type)
	}
}
