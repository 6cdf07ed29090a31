//go:build linux

package axio

import (
	"github.com/brickingsoft/axio/ip"
)

// TCPSocket
// TCP 流式套接字。
type TCPSocket struct {
	Socket
}

// NewTCPSocket
// 依端点地址族选 v4 或 v6 并打开。
func NewTCPSocket(ctx *IoContext, proto ip.Protocol) (s *TCPSocket, err error) {
	if !proto.IsStream() || proto.IsUnix() {
		err = newInvalidError(errMetaOpOpen, "protocol is not tcp")
		return
	}
	s = &TCPSocket{Socket{ctx: ctx, proto: proto, fd: -1, state: Unopened}}
	if err = s.Open(); err != nil {
		s = nil
	}
	return
}

// ListenTCP
// 绑定并监听。
func ListenTCP(ctx *IoContext, ep ip.Endpoint, backlog int) (s *TCPSocket, err error) {
	proto := ip.ProtocolFor(ip.TCPv4(), ep)
	s, err = NewTCPSocket(ctx, proto)
	if err != nil {
		return
	}
	if err = s.SetReuseAddr(true); err != nil {
		_ = s.Close()
		s = nil
		return
	}
	if err = s.Bind(ep); err != nil {
		_ = s.Close()
		s = nil
		return
	}
	if err = s.Listen(backlog); err != nil {
		_ = s.Close()
		s = nil
		return
	}
	return
}
