//go:build linux

package aio

import (
	"io"
	"sync/atomic"
	"syscall"

	"github.com/brickingsoft/axio/pkg/sys"
)

type Direction int

const (
	ReadDirection Direction = iota
	WriteDirection
)

func (dir Direction) String() string {
	if dir == ReadDirection {
		return "read"
	}
	return "write"
}

type OpKind int

const (
	connectOp OpKind = iota + 1
	acceptOp
	receiveOp
	receiveFromOp
	sendOp
	sendToOp
)

func (kind OpKind) direction() Direction {
	switch kind {
	case acceptOp, receiveOp, receiveFromOp:
		return ReadDirection
	default:
		return WriteDirection
	}
}

func (kind OpKind) name() string {
	switch kind {
	case connectOp:
		return errMetaOpConnect
	case acceptOp:
		return errMetaOpAccept
	case receiveOp:
		return errMetaOpRecv
	case receiveFromOp:
		return errMetaOpRecvFrom
	case sendOp:
		return errMetaOpSend
	default:
		return errMetaOpSendTo
	}
}

// Result
// 一次操作的完成结果。Fd 为 accept 产生的新描述符，
// Sa 为 accept 或 receive_from 的对端地址。
type Result struct {
	N   int
	Fd  int
	Sa  syscall.Sockaddr
	Err error
}

type Handler func(result Result)

const (
	pendingStatus int64 = iota
	completedStatus
	cancelledStatus
)

// Operation
// 一次未完成的异步请求。缓冲区仅被借用，调用方须保证其在
// 完成回调触发前有效。状态字以比较交换推进，
// Pending 只会迁移到 Completed 或 Cancelled 之一，回调恰好触发一次。
type Operation struct {
	kind    OpKind
	fd      int
	b       []byte
	sa      syscall.Sockaddr
	stream  bool
	status  atomic.Int64
	handler Handler
	engine  *Engine
}

func (op *Operation) Kind() string {
	return op.kind.name()
}

func (op *Operation) Direction() Direction {
	return op.kind.direction()
}

// Cancel
// 取消操作。仍在排队则立刻以取消错误触发回调；
// 已被反应器取走则与系统调用结果竞争同一状态字，先到者生效。
func (op *Operation) Cancel() bool {
	return op.cancel(newCancelledError(op.kind.name()))
}

func (op *Operation) cancel(cause error) bool {
	if !op.status.CompareAndSwap(pendingStatus, cancelledStatus) {
		return false
	}
	op.handler(Result{Err: cause})
	op.engine.workDone()
	return true
}

// complete
// 交付系统调用结果。竞争失败（已被取消）时丢弃结果，
// 若结果中带有已接受的描述符则将其关闭，避免泄漏。
func (op *Operation) complete(res Result) bool {
	if !op.status.CompareAndSwap(pendingStatus, completedStatus) {
		if res.Fd > 0 {
			_ = syscall.Close(res.Fd)
		}
		return false
	}
	op.handler(res)
	op.engine.workDone()
	return true
}

func (op *Operation) pending() bool {
	return op.status.Load() == pendingStatus
}

// perform
// 就绪后尝试非阻塞系统调用。wouldblock 为真时操作留在队列，
// 等待下一次就绪通知，调用方不会看到 EAGAIN。
func (op *Operation) perform() (res Result, wouldblock bool) {
	switch op.kind {
	case connectOp:
		if err := sys.SocketError(op.fd); err != nil {
			res.Err = mapErrno(errMetaOpConnect, err)
		}
		return
	case acceptOp:
		conn, sa, err := sys.Accept(op.fd)
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				wouldblock = true
				return
			}
			res.Err = mapErrno(errMetaOpAccept, err)
			return
		}
		res.Fd = conn
		res.Sa = sa
		return
	case receiveOp:
		n, err := syscall.Read(op.fd, op.b)
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				wouldblock = true
				return
			}
			res.Err = mapErrno(errMetaOpRecv, err)
			return
		}
		if n == 0 && len(op.b) > 0 && op.stream {
			res.Err = io.EOF
			return
		}
		res.N = n
		return
	case receiveFromOp:
		n, sa, err := syscall.Recvfrom(op.fd, op.b, 0)
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				wouldblock = true
				return
			}
			res.Err = mapErrno(errMetaOpRecvFrom, err)
			return
		}
		res.N = n
		res.Sa = sa
		return
	case sendOp:
		n, err := syscall.Write(op.fd, op.b)
		if err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				wouldblock = true
				return
			}
			res.Err = mapErrno(errMetaOpSend, err)
			return
		}
		res.N = n
		return
	default:
		if err := syscall.Sendto(op.fd, op.b, 0, op.sa); err != nil {
			if err == syscall.EAGAIN || err == syscall.EWOULDBLOCK {
				wouldblock = true
				return
			}
			res.Err = mapErrno(errMetaOpSendTo, err)
			return
		}
		res.N = len(op.b)
		return
	}
}
