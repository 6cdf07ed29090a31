//go:build linux

package sys

import (
	"syscall"

	"github.com/brickingsoft/axio/ip"
)

// EndpointToSockaddr
// 端点转内核 sockaddr，依端点地址族选择结构。
func EndpointToSockaddr(ep ip.Endpoint) syscall.Sockaddr {
	if ep.Addr().Is4() {
		sa := &syscall.SockaddrInet4{Port: int(ep.Port())}
		copy(sa.Addr[:], ep.Addr().Bytes())
		return sa
	}
	sa := &syscall.SockaddrInet6{Port: int(ep.Port())}
	copy(sa.Addr[:], ep.Addr().Bytes())
	return sa
}

// SockaddrToEndpoint
// 内核 sockaddr 转端点，未知结构返回零值端点。
func SockaddrToEndpoint(sa syscall.Sockaddr) (ep ip.Endpoint) {
	switch a := sa.(type) {
	case *syscall.SockaddrInet4:
		ep = ip.NewEndpoint(ip.AddrFrom4(a.Addr), uint16(a.Port))
		return
	case *syscall.SockaddrInet6:
		ep = ip.NewEndpoint(ip.AddrFrom16(a.Addr), uint16(a.Port))
		return
	default:
		return
	}
}

func UnixSockaddr(path string) syscall.Sockaddr {
	return &syscall.SockaddrUnix{Name: path}
}

func SockaddrUnixPath(sa syscall.Sockaddr) (path string, ok bool) {
	a, isUnix := sa.(*syscall.SockaddrUnix)
	if !isUnix {
		return
	}
	path = a.Name
	ok = true
	return
}
