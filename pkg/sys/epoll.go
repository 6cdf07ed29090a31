//go:build linux

package sys

import (
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// OpenEpoll
// 创建 epoll 实例与 eventfd 唤醒描述符。
func OpenEpoll() (*Epoll, error) {
	p := new(Epoll)
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, os.NewSyscallError("epoll_create1", err)
	}
	p.fd = epfd
	wfd, err := unix.Eventfd(0, unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		_ = unix.Close(epfd)
		return nil, os.NewSyscallError("eventfd", err)
	}
	p.wfd = wfd
	if err = p.Add(wfd, unix.EPOLLIN); err != nil {
		_ = unix.Close(wfd)
		_ = unix.Close(epfd)
		return nil, err
	}
	return p, nil
}

type Epoll struct {
	fd  int
	wfd int
}

func (p *Epoll) Fd() int {
	return p.fd
}

// WakeupFd
// 唤醒描述符，Wait 结果中以它区分唤醒事件。
func (p *Epoll) WakeupFd() int {
	return p.wfd
}

func (p *Epoll) Wakeup() error {
	var x uint64 = 1
	for {
		_, err := unix.Write(p.wfd, (*(*[8]byte)(unsafe.Pointer(&x)))[:])
		if err == unix.EINTR {
			continue
		}
		if err == unix.EAGAIN {
			return nil
		}
		if err != nil {
			return os.NewSyscallError("write", err)
		}
		return nil
	}
}

// DrainWakeup
// 消费一次唤醒信号。
func (p *Epoll) DrainWakeup() {
	var data [8]byte
	_, _ = unix.Read(p.wfd, data[:])
}

func (p *Epoll) Add(fd int, events uint32) error {
	ev := unix.EpollEvent{Fd: int32(fd), Events: events}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

func (p *Epoll) Mod(fd int, events uint32) error {
	ev := unix.EpollEvent{Fd: int32(fd), Events: events}
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

func (p *Epoll) Del(fd int) error {
	if err := unix.EpollCtl(p.fd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		if err == unix.ENOENT || err == unix.EBADF {
			return nil
		}
		return os.NewSyscallError("epoll_ctl", err)
	}
	return nil
}

// Wait
// 等待就绪事件，timeoutMs 小于 0 表示无限等待。
func (p *Epoll) Wait(events []unix.EpollEvent, timeoutMs int) (n int, err error) {
	for {
		n, err = unix.EpollWait(p.fd, events, timeoutMs)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			err = os.NewSyscallError("epoll_wait", err)
		}
		return
	}
}

func (p *Epoll) Close() error {
	if err := unix.Close(p.wfd); err != nil && err != syscall.EBADF {
		return os.NewSyscallError("close", err)
	}
	if err := unix.Close(p.fd); err != nil && err != syscall.EBADF {
		return os.NewSyscallError("close", err)
	}
	return nil
}
