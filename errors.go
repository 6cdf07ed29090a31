package axio

import (
	"github.com/brickingsoft/axio/ip"
	"github.com/brickingsoft/axio/pkg/aio"
	"github.com/brickingsoft/errors"
)

var (
	ErrCancelled         = aio.ErrCancelled
	ErrTimedOut          = aio.ErrTimeout
	ErrDescriptorClosed  = aio.ErrClosed
	ErrBackend           = aio.ErrBackend
	ErrConnectionRefused = aio.ErrConnectionRefused
	ErrConnectionReset   = aio.ErrConnectionReset
	ErrConnectionAborted = aio.ErrConnectionAborted
	ErrResolutionFailed  = errors.Define("axio: resolution failed")
	ErrInvalidArgument   = errors.Define("axio: invalid argument")
)

func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}

func IsTimedOut(err error) bool {
	return errors.Is(err, ErrTimedOut)
}

func IsDescriptorClosed(err error) bool {
	return errors.Is(err, ErrDescriptorClosed)
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

func IsResolutionFailed(err error) bool {
	return errors.Is(err, ErrResolutionFailed)
}

func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument) || ip.IsProtocolUnmatched(err) || ip.IsInvalidAddr(err) || ip.IsInvalidEndpoint(err)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "axio"
)

const (
	errMetaOpKey     = "op"
	errMetaOpOpen    = "open"
	errMetaOpBind    = "bind"
	errMetaOpListen  = "listen"
	errMetaOpAccept  = "accept"
	errMetaOpConnect = "connect"
	errMetaOpSend    = "send"
	errMetaOpRecv    = "receive"
	errMetaOpClose   = "close"
	errMetaOpSet     = "set"
	errMetaOpGet     = "get"
	errMetaOpResolve = "resolve"
)

func newClosedError(op string) error {
	return errors.From(ErrDescriptorClosed,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
	)
}

func newInvalidError(op string, msg string) error {
	return errors.From(ErrInvalidArgument,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, op),
		errors.WithWrap(errors.New(msg)),
	)
}

// mapSyscall
// 系统调用失败归类到错误分类上。
func mapSyscall(op string, err error) error {
	return aio.MapErrno(op, err)
}

func newResolutionError(cause error) error {
	return errors.From(ErrResolutionFailed,
		errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
		errors.WithMeta(errMetaOpKey, errMetaOpResolve),
		errors.WithWrap(cause),
	)
}
