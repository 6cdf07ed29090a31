//go:build linux

package axio

import (
	"github.com/brickingsoft/axio/ip"
)

// UnixSocket
// Unix 域流式套接字，端点为文件系统路径。
// 绑定过的路径在 Close 时解除链接。
type UnixSocket struct {
	Socket
}

func NewUnixSocket(ctx *IoContext) (s *UnixSocket, err error) {
	s = &UnixSocket{Socket{ctx: ctx, proto: ip.Unix(), fd: -1, state: Unopened}}
	if err = s.Open(); err != nil {
		s = nil
	}
	return
}

// ListenUnix
// 绑定路径并监听。
func ListenUnix(ctx *IoContext, path string, backlog int) (s *UnixSocket, err error) {
	s, err = NewUnixSocket(ctx)
	if err != nil {
		return
	}
	if err = s.BindUnix(path); err != nil {
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
