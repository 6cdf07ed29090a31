package aio

import (
	"os"
	"syscall"

	"github.com/brickingsoft/errors"
)

var (
	ErrCancelled         = errors.Define("operation was cancelled")
	ErrTimeout           = errors.Define("operation timed out")
	ErrClosed            = errors.Define("use of closed descriptor")
	ErrBackend           = errors.Define("backend failed")
	ErrConnectionRefused = errors.Define("connection refused")
	ErrConnectionReset   = errors.Define("connection reset by peer")
	ErrConnectionAborted = errors.Define("connection aborted")
)

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}

func IsBackend(err error) bool {
	return errors.Is(err, ErrBackend)
}

func IsConnectionRefused(err error) bool {
	return errors.Is(err, ErrConnectionRefused)
}

func IsConnectionReset(err error) bool {
	return errors.Is(err, ErrConnectionReset)
}

func IsConnectionAborted(err error) bool {
	return errors.Is(err, ErrConnectionAborted)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "aio"
)

const (
	errMetaOpKey      = "op"
	errMetaOpConnect  = "connect"
	errMetaOpAccept   = "accept"
	errMetaOpRecv     = "receive"
	errMetaOpRecvFrom = "receive_from"
	errMetaOpSend     = "send"
	errMetaOpSendTo   = "send_to"
	errMetaOpWait     = "wait"
	errMetaOpPost     = "post"
	errMetaOpSignal   = "signal"
)

// MapErrno
// 供上层包装系统调用失败：剥掉 os.SyscallError 后按 errno 归类。
func MapErrno(op string, err error) error {
	var sysErr *os.SyscallError
	if errors.As(err, &sysErr) {
		return mapErrno(op, sysErr.Err)
	}
	return mapErrno(op, err)
}

// mapErrno
// 将连接类 errno 归到定义好的错误上，其余原样包装。
func mapErrno(op string, errno error) error {
	e, isErrno := errno.(syscall.Errno)
	if !isErrno {
		return errors.New("operation failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, op),
			errors.WithWrap(errno),
		)
	}
	var defined error
	switch e {
	case syscall.ECONNREFUSED:
		defined = ErrConnectionRefused
	case syscall.ECONNRESET, syscall.EPIPE:
		defined = ErrConnectionReset
	case syscall.ECONNABORTED:
		defined = ErrConnectionAborted
	case syscall.ETIMEDOUT:
		defined = ErrTimeout
	case syscall.EBADF:
		defined = ErrClosed
	default:
		return errors.New("operation failed",
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithMeta(errMetaOpKey, op),
			errors.WithWrap(errno),
		)
	}
	return errors.From(defined,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
		errors.WithWrap(errno),
	)
}

func newBackendError(op string, cause error) error {
	return errors.From(ErrBackend,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
		errors.WithWrap(cause),
	)
}

func newCancelledError(op string) error {
	return errors.From(ErrCancelled,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
	)
}

func newClosedError(op string) error {
	return errors.From(ErrClosed,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
	)
}
