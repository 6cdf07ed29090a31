//go:build linux

package sys_test

import (
	"syscall"
	"testing"

	"github.com/brickingsoft/axio/ip"
	"github.com/brickingsoft/axio/pkg/sys"
	"golang.org/x/sys/unix"
)

func TestSockaddrRoundTrip(t *testing.T) {
	for _, s := range []string{"127.0.0.1:8080", "[::1]:53", "[fe80::1]:0"} {
		ep := ip.MustParseEndpoint(s)
		sa := sys.EndpointToSockaddr(ep)
		back := sys.SockaddrToEndpoint(sa)
		if back.Compare(ep) != 0 {
			t.Fatal(s, "round trip:", back.String())
		}
	}
}

func TestUnixSockaddrPath(t *testing.T) {
	sa := sys.UnixSockaddr("/tmp/sys_test.sock")
	path, ok := sys.SockaddrUnixPath(sa)
	if !ok || path != "/tmp/sys_test.sock" {
		t.Fatal("path:", path, ok)
	}
	if _, ok = sys.SockaddrUnixPath(&syscall.SockaddrInet4{}); ok {
		t.Fatal("inet sockaddr reported a unix path")
	}
}

func TestMaxListenerBacklog(t *testing.T) {
	if n := sys.MaxListenerBacklog(); n < 1 {
		t.Fatal("backlog:", n)
	}
}

func TestEpollWakeup(t *testing.T) {
	ep, err := sys.OpenEpoll()
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = ep.Close()
	}()

	if err = ep.Wakeup(); err != nil {
		t.Fatal(err)
	}
	events := make([]unix.EpollEvent, 4)
	n, err := ep.Wait(events, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || int(events[0].Fd) != ep.WakeupFd() {
		t.Fatal("wakeup not observed:", n)
	}
	ep.DrainWakeup()

	// 排干后不再处于就绪态。
	n, err = ep.Wait(events, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatal("spurious ready:", n)
	}
}

func TestSocketLifecycle(t *testing.T) {
	fd, err := sys.NewSocket(syscall.AF_INET, syscall.SOCK_STREAM, 0)
	if err != nil {
		t.Fatal(err)
	}
	if err = sys.Bind(fd, sys.EndpointToSockaddr(ip.MustParseEndpoint("127.0.0.1:0"))); err != nil {
		_ = sys.CloseFd(fd)
		t.Fatal(err)
	}
	if err = sys.Listen(fd, 0); err != nil {
		_ = sys.CloseFd(fd)
		t.Fatal(err)
	}
	sa, err := sys.LocalSockaddr(fd)
	if err != nil {
		_ = sys.CloseFd(fd)
		t.Fatal(err)
	}
	local := sys.SockaddrToEndpoint(sa)
	if local.Port() == 0 {
		t.Fatal("no ephemeral port assigned")
	}
	if err = sys.CloseFd(fd); err != nil {
		t.Fatal(err)
	}
}
