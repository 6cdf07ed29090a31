//go:build linux

package axio

import (
	"github.com/brickingsoft/axio/ip"
)

// UDPSocket
// UDP 数据报套接字。
type UDPSocket struct {
	Socket
}

func NewUDPSocket(ctx *IoContext, proto ip.Protocol) (s *UDPSocket, err error) {
	if !proto.IsDatagram() {
		err = newInvalidError(errMetaOpOpen, "protocol is not udp")
		return
	}
	s = &UDPSocket{Socket{ctx: ctx, proto: proto, fd: -1, state: Unopened}}
	if err = s.Open(); err != nil {
		s = nil
	}
	return
}

// BindUDP
// 绑定数据报套接字，常用于服务端。
func BindUDP(ctx *IoContext, ep ip.Endpoint) (s *UDPSocket, err error) {
	proto := ip.ProtocolFor(ip.UDPv4(), ep)
	s, err = NewUDPSocket(ctx, proto)
	if err != nil {
		return
	}
	if err = s.Bind(ep); err != nil {
		_ = s.Close()
		s = nil
		return
	}
	return
}
