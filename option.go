//go:build linux

package axio

import (
	"runtime"
	"syscall"
	"time"

	"github.com/brickingsoft/axio/pkg/sys"
	"golang.org/x/sys/unix"
)

// 套接字选项。每个选项按协议适用性把关，
// 不适用的组合返回 InvalidArgument。

// optFd
// 选项存取前的状态检查。
func (s *Socket) optFd(op string) (fd int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed {
		err = newClosedError(op)
		return
	}
	if s.state == Unopened {
		err = newInvalidError(op, "socket is "+s.state.String())
		return
	}
	fd = s.fd
	return
}

func (s *Socket) setInt(level int, opt int, value int) (err error) {
	fd, err := s.optFd(errMetaOpSet)
	if err != nil {
		return
	}
	if err = sys.SetSockoptInt(fd, level, opt, value); err != nil {
		err = mapSyscall(errMetaOpSet, err)
	}
	return
}

func (s *Socket) getInt(level int, opt int) (value int, err error) {
	fd, err := s.optFd(errMetaOpGet)
	if err != nil {
		return
	}
	if value, err = sys.GetSockoptInt(fd, level, opt); err != nil {
		err = mapSyscall(errMetaOpGet, err)
	}
	return
}

func boolToInt(ok bool) int {
	if ok {
		return 1
	}
	return 0
}

// SetV6Only
// 限制 IPv6 套接字只收发 IPv6 流量。仅 v6 族可用。
func (s *Socket) SetV6Only(ok bool) (err error) {
	if s.proto.Family() != syscall.AF_INET6 {
		return newInvalidError(errMetaOpSet, "socket is not v6 family")
	}
	return s.setInt(syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, boolToInt(ok))
}

func (s *Socket) V6Only() (ok bool, err error) {
	if s.proto.Family() != syscall.AF_INET6 {
		err = newInvalidError(errMetaOpGet, "socket is not v6 family")
		return
	}
	value, err := s.getInt(syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY)
	ok = value != 0
	return
}

// SetReuseAddr
// 地址复用。
func (s *Socket) SetReuseAddr(ok bool) (err error) {
	return s.setInt(syscall.SOL_SOCKET, syscall.SO_REUSEADDR, boolToInt(ok))
}

func (s *Socket) ReuseAddr() (ok bool, err error) {
	value, err := s.getInt(syscall.SOL_SOCKET, syscall.SO_REUSEADDR)
	ok = value != 0
	return
}

// SetReusePort
// 端口复用，监听者分流用。启用时附带按 CPU 取模的分流过滤器，
// 让共享端口的监听者按就绪 CPU 均摊新连接。
func (s *Socket) SetReusePort(ok bool) (err error) {
	if err = s.setInt(syscall.SOL_SOCKET, unix.SO_REUSEPORT, boolToInt(ok)); err != nil {
		return
	}
	if !ok {
		return
	}
	fd, fdErr := s.optFd(errMetaOpSet)
	if fdErr != nil {
		err = fdErr
		return
	}
	filter := sys.NewReusePortCPUFilter(uint32(runtime.NumCPU()))
	if applyErr := filter.ApplyTo(fd); applyErr != nil {
		err = mapSyscall(errMetaOpSet, applyErr)
	}
	return
}

func (s *Socket) ReusePort() (ok bool, err error) {
	value, err := s.getInt(syscall.SOL_SOCKET, unix.SO_REUSEPORT)
	ok = value != 0
	return
}

// SetKeepAlive
// TCP 保活。仅流式 inet 套接字可用。
func (s *Socket) SetKeepAlive(ok bool) (err error) {
	if !s.proto.IsStream() || s.proto.IsUnix() {
		return newInvalidError(errMetaOpSet, "socket is not inet stream kind")
	}
	return s.setInt(syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, boolToInt(ok))
}

func (s *Socket) KeepAlive() (ok bool, err error) {
	if !s.proto.IsStream() || s.proto.IsUnix() {
		err = newInvalidError(errMetaOpGet, "socket is not inet stream kind")
		return
	}
	value, err := s.getInt(syscall.SOL_SOCKET, syscall.SO_KEEPALIVE)
	ok = value != 0
	return
}

// SetKeepAlivePeriod
// 保活探测间隔。
func (s *Socket) SetKeepAlivePeriod(period time.Duration) (err error) {
	if !s.proto.IsStream() || s.proto.IsUnix() {
		return newInvalidError(errMetaOpSet, "socket is not inet stream kind")
	}
	secs := int((period + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	if err = s.setInt(syscall.IPPROTO_TCP, syscall.TCP_KEEPINTVL, secs); err != nil {
		return
	}
	return s.setInt(syscall.IPPROTO_TCP, syscall.TCP_KEEPIDLE, secs)
}

// SetNoDelay
// 关闭 Nagle。仅 TCP 可用。
func (s *Socket) SetNoDelay(ok bool) (err error) {
	if !s.proto.IsStream() || s.proto.IsUnix() {
		return newInvalidError(errMetaOpSet, "socket is not inet stream kind")
	}
	return s.setInt(syscall.IPPROTO_TCP, syscall.TCP_NODELAY, boolToInt(ok))
}

func (s *Socket) NoDelay() (ok bool, err error) {
	if !s.proto.IsStream() || s.proto.IsUnix() {
		err = newInvalidError(errMetaOpGet, "socket is not inet stream kind")
		return
	}
	value, err := s.getInt(syscall.IPPROTO_TCP, syscall.TCP_NODELAY)
	ok = value != 0
	return
}

// SetBroadcast
// 数据报广播。
func (s *Socket) SetBroadcast(ok bool) (err error) {
	if !s.proto.IsDatagram() {
		return newInvalidError(errMetaOpSet, "socket is not datagram kind")
	}
	return s.setInt(syscall.SOL_SOCKET, syscall.SO_BROADCAST, boolToInt(ok))
}

func (s *Socket) Broadcast() (ok bool, err error) {
	if !s.proto.IsDatagram() {
		err = newInvalidError(errMetaOpGet, "socket is not datagram kind")
		return
	}
	value, err := s.getInt(syscall.SOL_SOCKET, syscall.SO_BROADCAST)
	ok = value != 0
	return
}

// SetLinger
// 关闭时滞留秒数，负值关闭滞留。
func (s *Socket) SetLinger(sec int) (err error) {
	fd, err := s.optFd(errMetaOpSet)
	if err != nil {
		return
	}
	onoff := int32(1)
	if sec < 0 {
		onoff = 0
		sec = 0
	}
	if err = sys.SetSockoptLinger(fd, onoff, int32(sec)); err != nil {
		err = mapSyscall(errMetaOpSet, err)
	}
	return
}

// SetReceiveBufferSize
// 内核接收缓冲大小。
func (s *Socket) SetReceiveBufferSize(n int) (err error) {
	if n < 1 {
		return newInvalidError(errMetaOpSet, "buffer size must be positive")
	}
	return s.setInt(syscall.SOL_SOCKET, syscall.SO_RCVBUF, n)
}

func (s *Socket) ReceiveBufferSize() (n int, err error) {
	return s.getInt(syscall.SOL_SOCKET, syscall.SO_RCVBUF)
}

// SetSendBufferSize
// 内核发送缓冲大小。
func (s *Socket) SetSendBufferSize(n int) (err error) {
	if n < 1 {
		return newInvalidError(errMetaOpSet, "buffer size must be positive")
	}
	return s.setInt(syscall.SOL_SOCKET, syscall.SO_SNDBUF, n)
}

func (s *Socket) SendBufferSize() (n int, err error) {
	return s.getInt(syscall.SOL_SOCKET, syscall.SO_SNDBUF)
}
