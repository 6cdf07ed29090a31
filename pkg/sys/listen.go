//go:build linux

package sys

import (
	"bufio"
	"os"
	"strconv"
	"strings"
	"sync"
	"syscall"
)

var (
	somaxconn   = syscall.SOMAXCONN
	backlogOnce = sync.Once{}
)

// MaxListenerBacklog
// 读取 net.core.somaxconn，失败时退回 SOMAXCONN。
func MaxListenerBacklog() int {
	backlogOnce.Do(func() {
		fd, err := os.Open("/proc/sys/net/core/somaxconn")
		if err != nil {
			return
		}
		defer func() {
			_ = fd.Close()
		}()
		rd := bufio.NewReader(fd)
		l, readLineErr := rd.ReadString('\n')
		if readLineErr != nil {
			return
		}
		n, parseErr := strconv.Atoi(strings.TrimSpace(l))
		if parseErr != nil || n == 0 {
			return
		}
		if n > 1<<16-1 {
			n = 1<<16 - 1
		}
		somaxconn = n
	})
	return somaxconn
}

func Bind(fd int, sa syscall.Sockaddr) error {
	if err := syscall.Bind(fd, sa); err != nil {
		return os.NewSyscallError("bind", err)
	}
	return nil
}

func Listen(fd int, backlog int) error {
	if backlog < 1 {
		backlog = MaxListenerBacklog()
	}
	if err := syscall.Listen(fd, backlog); err != nil {
		return os.NewSyscallError("listen", err)
	}
	return nil
}

func LocalSockaddr(fd int) (syscall.Sockaddr, error) {
	sa, err := syscall.Getsockname(fd)
	if err != nil {
		return nil, os.NewSyscallError("getsockname", err)
	}
	return sa, nil
}

func RemoteSockaddr(fd int) (syscall.Sockaddr, error) {
	sa, err := syscall.Getpeername(fd)
	if err != nil {
		return nil, os.NewSyscallError("getpeername", err)
	}
	return sa, nil
}
