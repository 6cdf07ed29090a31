//go:build linux

package axio

import (
	"sync"
	"syscall"

	"github.com/brickingsoft/axio/ip"
	"github.com/brickingsoft/axio/pkg/aio"
	"github.com/brickingsoft/axio/pkg/sys"
)

type SocketState int

const (
	Unopened SocketState = iota
	Open
	Connecting
	Connected
	Bound
	Listening
	Closed
)

func (state SocketState) String() string {
	switch state {
	case Unopened:
		return "unopened"
	case Open:
		return "open"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Bound:
		return "bound"
	case Listening:
		return "listening"
	default:
		return "closed"
	}
}

type (
	ConnectHandler     func(err error)
	AcceptHandler      func(conn *Socket, peer ip.Endpoint, err error)
	SendHandler        func(n int, err error)
	ReceiveHandler     func(n int, err error)
	ReceiveFromHandler func(n int, peer ip.Endpoint, err error)
)

type ShutdownKind int

const (
	ShutdownRead  ShutdownKind = syscall.SHUT_RD
	ShutdownWrite ShutdownKind = syscall.SHUT_WR
	ShutdownBoth  ShutdownKind = syscall.SHUT_RDWR
)

// Socket
// 协议参数化的套接字，独占一个内核描述符。
// 状态机 Unopened → Open → {Connecting → Connected | Bound → Listening} → Closed，
// Closed 为终态。关闭后句柄永久失效。
//
// 异步操作引用的缓冲区只是借用，调用方须保证其在完成回调触发前有效。
type Socket struct {
	ctx      *IoContext
	proto    ip.Protocol
	mu       sync.Mutex
	fd       int
	state    SocketState
	unixPath string
}

// NewSocket
// 构建未打开的套接字句柄。
func NewSocket(ctx *IoContext, proto ip.Protocol) *Socket {
	return &Socket{ctx: ctx, proto: proto, fd: -1, state: Unopened}
}

// OpenSocket
// 构建并立即打开。
func OpenSocket(ctx *IoContext, proto ip.Protocol) (s *Socket, err error) {
	s = NewSocket(ctx, proto)
	if err = s.Open(); err != nil {
		s = nil
	}
	return
}

func (s *Socket) Protocol() ip.Protocol {
	return s.proto
}

func (s *Socket) State() SocketState {
	s.mu.Lock()
	state := s.state
	s.mu.Unlock()
	return state
}

func (s *Socket) Context() *IoContext {
	return s.ctx
}

// Fd
// 底层描述符，Closed 后为 -1。
func (s *Socket) Fd() int {
	s.mu.Lock()
	fd := s.fd
	s.mu.Unlock()
	return fd
}

// Open
// 创建内核描述符。套接字构建是少数允许阻塞调用方的操作之一。
func (s *Socket) Open() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Unopened {
		return newInvalidError(errMetaOpOpen, "socket is "+s.state.String())
	}
	fd, sockErr := sys.NewSocket(s.proto.Family(), s.proto.Kind(), s.proto.Number())
	if sockErr != nil {
		return newInvalidError(errMetaOpOpen, sockErr.Error())
	}
	s.fd = fd
	s.state = Open
	return
}

// Bind
// 绑定本地端点，端点的地址族必须与协议一致。
func (s *Socket) Bind(ep ip.Endpoint) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Open {
		return newInvalidError(errMetaOpBind, "socket is "+s.state.String())
	}
	if err = s.proto.Validate(ep); err != nil {
		return
	}
	if err = sys.Bind(s.fd, sys.EndpointToSockaddr(ep)); err != nil {
		err = mapSyscall(errMetaOpBind, err)
		return
	}
	s.state = Bound
	return
}

// BindUnix
// 绑定 Unix 域路径。
func (s *Socket) BindUnix(path string) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Open {
		return newInvalidError(errMetaOpBind, "socket is "+s.state.String())
	}
	if !s.proto.IsUnix() {
		return newInvalidError(errMetaOpBind, "socket is not unix domain")
	}
	if path == "" {
		return newInvalidError(errMetaOpBind, "unix path is empty")
	}
	if err = sys.Bind(s.fd, sys.UnixSockaddr(path)); err != nil {
		err = mapSyscall(errMetaOpBind, err)
		return
	}
	s.unixPath = path
	s.state = Bound
	return
}

// Listen
// 进入监听。backlog 小于 1 时取系统上限。
func (s *Socket) Listen(backlog int) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Bound {
		return newInvalidError(errMetaOpListen, "socket is "+s.state.String())
	}
	if !s.proto.IsStream() {
		return newInvalidError(errMetaOpListen, "socket is not stream kind")
	}
	if err = sys.Listen(s.fd, backlog); err != nil {
		err = mapSyscall(errMetaOpListen, err)
		return
	}
	s.state = Listening
	return
}

// AsyncAccept
// 接受一个连接。完成回调在某个 Run 线程上触发，
// 新句柄与监听者共用同一个反应器。
func (s *Socket) AsyncAccept(handler AcceptHandler) {
	s.mu.Lock()
	if s.state != Listening {
		state := s.state
		s.mu.Unlock()
		s.ctx.Post(func() {
			handler(nil, ip.Endpoint{}, newInvalidError(errMetaOpAccept, "socket is "+state.String()))
		})
		return
	}
	fd := s.fd
	s.mu.Unlock()
	s.ctx.engine.SubmitAccept(fd, func(res aio.Result) {
		if res.Err != nil {
			handler(nil, ip.Endpoint{}, res.Err)
			return
		}
		conn := &Socket{ctx: s.ctx, proto: s.proto, fd: res.Fd, state: Connected}
		handler(conn, sys.SockaddrToEndpoint(res.Sa), nil)
	})
}

// AsyncConnect
// 发起连接。就绪后由反应器判定结果，拒绝、超时等以
// 类型化错误进入回调。提交从不同步触发回调。
func (s *Socket) AsyncConnect(ep ip.Endpoint, handler ConnectHandler) {
	s.mu.Lock()
	if s.state != Open && s.state != Bound {
		state := s.state
		s.mu.Unlock()
		s.ctx.Post(func() {
			handler(newInvalidError(errMetaOpConnect, "socket is "+state.String()))
		})
		return
	}
	if err := s.proto.Validate(ep); err != nil {
		s.mu.Unlock()
		s.ctx.Post(func() {
			handler(err)
		})
		return
	}
	fd := s.fd
	connErr := syscall.Connect(fd, sys.EndpointToSockaddr(ep))
	if connErr != nil && connErr != syscall.EINPROGRESS && connErr != syscall.EAGAIN {
		s.mu.Unlock()
		wrapped := mapSyscall(errMetaOpConnect, connErr)
		s.ctx.Post(func() {
			handler(wrapped)
		})
		return
	}
	s.state = Connecting
	s.mu.Unlock()
	s.ctx.engine.SubmitConnect(fd, func(res aio.Result) {
		s.mu.Lock()
		if s.state == Connecting {
			if res.Err == nil {
				s.state = Connected
			} else {
				s.state = Open
			}
		}
		s.mu.Unlock()
		handler(res.Err)
	})
}

// AsyncConnectUnix
// Unix 域连接。
func (s *Socket) AsyncConnectUnix(path string, handler ConnectHandler) {
	s.mu.Lock()
	if s.state != Open || !s.proto.IsUnix() {
		state := s.state
		s.mu.Unlock()
		s.ctx.Post(func() {
			handler(newInvalidError(errMetaOpConnect, "socket is "+state.String()))
		})
		return
	}
	fd := s.fd
	connErr := syscall.Connect(fd, sys.UnixSockaddr(path))
	if connErr != nil && connErr != syscall.EINPROGRESS && connErr != syscall.EAGAIN {
		s.mu.Unlock()
		wrapped := mapSyscall(errMetaOpConnect, connErr)
		s.ctx.Post(func() {
			handler(wrapped)
		})
		return
	}
	s.state = Connecting
	s.mu.Unlock()
	s.ctx.engine.SubmitConnect(fd, func(res aio.Result) {
		s.mu.Lock()
		if s.state == Connecting {
			if res.Err == nil {
				s.state = Connected
			} else {
				s.state = Open
			}
		}
		s.mu.Unlock()
		handler(res.Err)
	})
}

// AsyncSend
// 发送。p 为借用缓冲区。部分写入按已写字节数完成。
func (s *Socket) AsyncSend(p []byte, handler SendHandler) {
	fd, err := s.ioFd(errMetaOpSend)
	if err != nil {
		s.ctx.Post(func() {
			handler(0, err)
		})
		return
	}
	s.ctx.engine.SubmitSend(fd, p, func(res aio.Result) {
		handler(res.N, res.Err)
	})
}

// AsyncReceive
// 接收。p 为借用缓冲区。流式套接字对端关闭以 io.EOF 完成。
func (s *Socket) AsyncReceive(p []byte, handler ReceiveHandler) {
	fd, err := s.ioFd(errMetaOpRecv)
	if err != nil {
		s.ctx.Post(func() {
			handler(0, err)
		})
		return
	}
	s.ctx.engine.SubmitReceive(fd, p, s.proto.IsStream(), func(res aio.Result) {
		handler(res.N, res.Err)
	})
}

// AsyncSendTo
// 数据报定向发送，端点地址族须与协议一致。
func (s *Socket) AsyncSendTo(p []byte, ep ip.Endpoint, handler SendHandler) {
	if s.proto.IsStream() {
		s.ctx.Post(func() {
			handler(0, newInvalidError(errMetaOpSend, "socket is stream kind"))
		})
		return
	}
	if err := s.proto.Validate(ep); err != nil {
		s.ctx.Post(func() {
			handler(0, err)
		})
		return
	}
	fd, err := s.ioFd(errMetaOpSend)
	if err != nil {
		s.ctx.Post(func() {
			handler(0, err)
		})
		return
	}
	s.ctx.engine.SubmitSendTo(fd, p, sys.EndpointToSockaddr(ep), func(res aio.Result) {
		handler(res.N, res.Err)
	})
}

// AsyncReceiveFrom
// 数据报接收，完成时带上对端端点。
func (s *Socket) AsyncReceiveFrom(p []byte, handler ReceiveFromHandler) {
	if s.proto.IsStream() {
		s.ctx.Post(func() {
			handler(0, ip.Endpoint{}, newInvalidError(errMetaOpRecv, "socket is stream kind"))
		})
		return
	}
	fd, err := s.ioFd(errMetaOpRecv)
	if err != nil {
		s.ctx.Post(func() {
			handler(0, ip.Endpoint{}, err)
		})
		return
	}
	s.ctx.engine.SubmitReceiveFrom(fd, p, func(res aio.Result) {
		handler(res.N, sys.SockaddrToEndpoint(res.Sa), res.Err)
	})
}

// ioFd
// I/O 提交前的状态检查。数据报与原始套接字绑定或打开即可收发，
// 流式套接字须已连接。
func (s *Socket) ioFd(op string) (fd int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case Connected:
		fd = s.fd
		return
	case Open, Bound:
		if s.proto.IsStream() {
			err = newInvalidError(op, "socket is "+s.state.String())
			return
		}
		fd = s.fd
		return
	case Closed:
		err = newClosedError(op)
		return
	default:
		err = newInvalidError(op, "socket is "+s.state.String())
		return
	}
}

// Shutdown
// 半关闭。
func (s *Socket) Shutdown(how ShutdownKind) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		return newInvalidError(errMetaOpClose, "socket is "+s.state.String())
	}
	if err = sys.Shutdown(s.fd, int(how)); err != nil {
		err = mapSyscall(errMetaOpClose, err)
	}
	return
}

// Cancel
// 取消该套接字上全部挂起的操作，回调以取消错误触发。
func (s *Socket) Cancel() {
	s.mu.Lock()
	fd := s.fd
	state := s.state
	s.mu.Unlock()
	if state == Closed || fd < 0 {
		return
	}
	s.ctx.engine.CancelFd(fd)
}

// Close
// 终态。返回前同步排干操作队列，每个挂起操作都以
// 描述符已关闭的错误得到回调，不会有回调悬空。幂等。
func (s *Socket) Close() (err error) {
	s.mu.Lock()
	if s.state == Closed {
		s.mu.Unlock()
		return
	}
	fd := s.fd
	unixPath := s.unixPath
	s.fd = -1
	s.state = Closed
	s.mu.Unlock()
	if fd < 0 {
		return
	}
	s.ctx.engine.CloseFd(fd)
	if closeErr := sys.CloseFd(fd); closeErr != nil {
		err = mapSyscall(errMetaOpClose, closeErr)
	}
	if unixPath != "" {
		_ = syscall.Unlink(unixPath)
	}
	return
}

// LocalEndpoint
// 本地端点。
func (s *Socket) LocalEndpoint() (ep ip.Endpoint, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Closed || s.state == Unopened {
		err = newInvalidError(errMetaOpGet, "socket is "+s.state.String())
		return
	}
	sa, saErr := sys.LocalSockaddr(s.fd)
	if saErr != nil {
		err = mapSyscall(errMetaOpGet, saErr)
		return
	}
	ep = sys.SockaddrToEndpoint(sa)
	return
}

// RemoteEndpoint
// 对端端点，未连接时报错。
func (s *Socket) RemoteEndpoint() (ep ip.Endpoint, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Connected {
		err = newInvalidError(errMetaOpGet, "socket is "+s.state.String())
		return
	}
	sa, saErr := sys.RemoteSockaddr(s.fd)
	if saErr != nil {
		err = mapSyscall(errMetaOpGet, saErr)
		return
	}
	ep = sys.SockaddrToEndpoint(sa)
	return
}
