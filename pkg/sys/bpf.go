//go:build linux

package sys

import (
	"os"
	"syscall"
	"unsafe"

	"golang.org/x/net/bpf"
	"golang.org/x/sys/unix"
)

const (
	skfAdOffPlusKSkfAdCPU = 4294963236
	cpuIdSize             = 4
)

// ReusePortCPUFilter
// 按当前 CPU 取模的分流过滤器，配合端口复用把新到的连接或数据报
// 摊到各监听者上。
type ReusePortCPUFilter []bpf.Instruction

func NewReusePortCPUFilter(cpus uint32) ReusePortCPUFilter {
	return ReusePortCPUFilter{
		bpf.LoadAbsolute{Off: skfAdOffPlusKSkfAdCPU, Size: cpuIdSize},
		bpf.ALUOpConstant{Op: bpf.ALUOpMod, Val: cpus},
		bpf.RetA{},
	}
}

func (f ReusePortCPUFilter) ApplyTo(fd int) error {
	assembled, err := bpf.Assemble(f)
	if err != nil {
		return os.NewSyscallError("setsockopt", err)
	}
	program := unix.SockFprog{
		Len:    uint16(len(assembled)),
		Filter: (*unix.SockFilter)(unsafe.Pointer(&assembled[0])),
	}
	b := (*[unix.SizeofSockFprog]byte)(unsafe.Pointer(&program))[:unix.SizeofSockFprog]
	if _, _, errno := syscall.Syscall6(
		syscall.SYS_SETSOCKOPT,
		uintptr(fd), uintptr(syscall.SOL_SOCKET), uintptr(unix.SO_ATTACH_REUSEPORT_CBPF),
		uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), 0,
	); errno != 0 {
		return os.NewSyscallError("setsockopt", errno)
	}
	return nil
}
