//go:build linux

package sys

import (
	"errors"
	"os"
	"syscall"
)

// NewSocket
// 创建非阻塞且 close-on-exec 的套接字。
func NewSocket(family int, sotype int, protocol int) (sock int, err error) {
	sock, err = syscall.Socket(family, sotype|syscall.SOCK_NONBLOCK|syscall.SOCK_CLOEXEC, protocol)
	if err != nil {
		if errors.Is(err, syscall.EPROTONOSUPPORT) || errors.Is(err, syscall.EINVAL) {
			syscall.ForkLock.RLock()
			sock, err = syscall.Socket(family, sotype, protocol)
			if err == nil {
				syscall.CloseOnExec(sock)
			}
			syscall.ForkLock.RUnlock()
			if err != nil {
				err = os.NewSyscallError("socket", err)
				return
			}
			if err = syscall.SetNonblock(sock, true); err != nil {
				_ = syscall.Close(sock)
				err = os.NewSyscallError("setnonblock", err)
				return
			}
		} else {
			err = os.NewSyscallError("socket", err)
			return
		}
	}
	return
}

// Accept
// 非阻塞接受连接，返回的描述符同样为非阻塞 close-on-exec。
func Accept(fd int) (conn int, sa syscall.Sockaddr, err error) {
	conn, sa, err = syscall.Accept4(fd, syscall.SOCK_NONBLOCK|syscall.SOCK_CLOEXEC)
	if err != nil {
		if errors.Is(err, syscall.ENOSYS) || errors.Is(err, syscall.EINVAL) {
			syscall.ForkLock.RLock()
			conn, sa, err = syscall.Accept(fd)
			if err == nil {
				syscall.CloseOnExec(conn)
			}
			syscall.ForkLock.RUnlock()
			if err != nil {
				return
			}
			err = syscall.SetNonblock(conn, true)
		}
	}
	return
}

func CloseFd(fd int) error {
	if err := syscall.Close(fd); err != nil && err != syscall.EBADF {
		return os.NewSyscallError("close", err)
	}
	return nil
}

func Shutdown(fd int, how int) error {
	if err := syscall.Shutdown(fd, how); err != nil {
		return os.NewSyscallError("shutdown", err)
	}
	return nil
}

// SocketError
// 读取并清除套接字上挂起的错误，用于非阻塞连接完成的判定。
func SocketError(fd int) error {
	nerr, err := syscall.GetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_ERROR)
	if err != nil {
		return os.NewSyscallError("getsockopt", err)
	}
	if nerr != 0 {
		return syscall.Errno(nerr)
	}
	return nil
}

func SetSockoptInt(fd int, level int, opt int, value int) error {
	if err := syscall.SetsockoptInt(fd, level, opt, value); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}

func GetSockoptInt(fd int, level int, opt int) (int, error) {
	value, err := syscall.GetsockoptInt(fd, level, opt)
	if err != nil {
		return 0, os.NewSyscallError("getsockopt", err)
	}
	return value, nil
}

func SetSockoptLinger(fd int, onoff int32, linger int32) error {
	l := syscall.Linger{Onoff: onoff, Linger: linger}
	if err := syscall.SetsockoptLinger(fd, syscall.SOL_SOCKET, syscall.SO_LINGER, &l); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	return nil
}
