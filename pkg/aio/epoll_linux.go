//go:build linux

package aio

import (
	"time"

	"github.com/brickingsoft/axio/pkg/sys"
	"golang.org/x/sys/unix"
)

// NewEpollBackend
// 基于 epoll 的就绪通知后端，描述符以 EPOLLONESHOT 注册，
// 多线程 Wait 时同一描述符同一时刻只会被一个线程取到。
func NewEpollBackend() (Backend, error) {
	p, err := sys.OpenEpoll()
	if err != nil {
		return nil, newBackendError(errMetaOpWait, err)
	}
	return &epollBackend{poll: p}, nil
}

type epollBackend struct {
	poll *sys.Epoll
}

func interestToEvents(interest Interest) uint32 {
	events := uint32(unix.EPOLLONESHOT)
	if interest.Readable() {
		events |= unix.EPOLLIN | unix.EPOLLRDHUP
	}
	if interest.Writable() {
		events |= unix.EPOLLOUT
	}
	return events
}

func (b *epollBackend) Register(fd int, interest Interest) (err error) {
	if err = b.poll.Add(fd, interestToEvents(interest)); err != nil {
		err = newBackendError(errMetaOpWait, err)
	}
	return
}

func (b *epollBackend) Modify(fd int, interest Interest) (err error) {
	if err = b.poll.Mod(fd, interestToEvents(interest)); err != nil {
		err = newBackendError(errMetaOpWait, err)
	}
	return
}

func (b *epollBackend) Deregister(fd int) (err error) {
	if err = b.poll.Del(fd); err != nil {
		err = newBackendError(errMetaOpWait, err)
	}
	return
}

func (b *epollBackend) Wait(events []Event, timeout time.Duration) (n int, err error) {
	if len(events) == 0 {
		return
	}
	timeoutMs := -1
	if timeout >= 0 {
		timeoutMs = int(timeout / time.Millisecond)
		if timeoutMs == 0 && timeout > 0 {
			timeoutMs = 1
		}
	}
	eps := make([]unix.EpollEvent, len(events))
	num, waitErr := b.poll.Wait(eps, timeoutMs)
	if waitErr != nil {
		err = newBackendError(errMetaOpWait, waitErr)
		return
	}
	for i := 0; i < num; i++ {
		ep := eps[i]
		event := Event{Fd: int(ep.Fd)}
		if int(ep.Fd) == b.poll.WakeupFd() {
			b.poll.DrainWakeup()
			event.Wakeup = true
			events[n] = event
			n++
			continue
		}
		if ep.Events&(unix.EPOLLIN|unix.EPOLLRDHUP) != 0 {
			event.Interest |= ReadInterest
		}
		if ep.Events&unix.EPOLLOUT != 0 {
			event.Interest |= WriteInterest
		}
		if ep.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			// 错误也当作双向就绪处理，让挂起的操作得到它们的 errno。
			event.Interest |= ReadInterest | WriteInterest
		}
		events[n] = event
		n++
	}
	return
}

func (b *epollBackend) Wakeup() (err error) {
	if err = b.poll.Wakeup(); err != nil {
		err = newBackendError(errMetaOpWait, err)
	}
	return
}

func (b *epollBackend) Close() (err error) {
	if err = b.poll.Close(); err != nil {
		err = newBackendError(errMetaOpWait, err)
	}
	return
}
