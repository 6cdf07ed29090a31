//go:build linux

package axio

import (
	"github.com/brickingsoft/axio/ip"
)

// ICMPSocket
// 原始 ICMP 套接字，v4 走 IPPROTO_ICMP，v6 走 IPPROTO_ICMPV6。
// 收发不使用端口，端点端口填零即可。
type ICMPSocket struct {
	Socket
}

func NewICMPSocket(ctx *IoContext, proto ip.Protocol) (s *ICMPSocket, err error) {
	if !proto.IsRaw() {
		err = newInvalidError(errMetaOpOpen, "protocol is not icmp")
		return
	}
	s = &ICMPSocket{Socket{ctx: ctx, proto: proto, fd: -1, state: Unopened}}
	if err = s.Open(); err != nil {
		s = nil
	}
	return
}
