package ip

import (
	"syscall"

	"github.com/brickingsoft/errors"
)

// Protocol
// 协议描述符，固定 (地址族, 套接字类型, 协议号) 三元组。
//
// 用于校验套接字、端点与解析查询的协议族是否一致。
type Protocol struct {
	family int
	sotype int
	number int
	name   string
}

func TCPv4() Protocol {
	return Protocol{family: syscall.AF_INET, sotype: syscall.SOCK_STREAM, number: 0, name: "tcp4"}
}

func TCPv6() Protocol {
	return Protocol{family: syscall.AF_INET6, sotype: syscall.SOCK_STREAM, number: 0, name: "tcp6"}
}

func UDPv4() Protocol {
	return Protocol{family: syscall.AF_INET, sotype: syscall.SOCK_DGRAM, number: 0, name: "udp4"}
}

func UDPv6() Protocol {
	return Protocol{family: syscall.AF_INET6, sotype: syscall.SOCK_DGRAM, number: 0, name: "udp6"}
}

func ICMPv4() Protocol {
	return Protocol{family: syscall.AF_INET, sotype: syscall.SOCK_RAW, number: syscall.IPPROTO_ICMP, name: "ip4:icmp"}
}

func ICMPv6() Protocol {
	return Protocol{family: syscall.AF_INET6, sotype: syscall.SOCK_RAW, number: syscall.IPPROTO_ICMPV6, name: "ip6:ipv6-icmp"}
}

func Unix() Protocol {
	return Protocol{family: syscall.AF_UNIX, sotype: syscall.SOCK_STREAM, number: 0, name: "unix"}
}

// Generic
// 构建任意原始协议描述符。
func Generic(family int, sotype int, number int) Protocol {
	return Protocol{family: family, sotype: sotype, number: number, name: "raw"}
}

// ProtocolFor
// 依端点地址族取对应的协议变体。
func ProtocolFor(proto Protocol, ep Endpoint) Protocol {
	if ep.Addr().Is6() {
		proto.family = syscall.AF_INET6
	} else {
		proto.family = syscall.AF_INET
	}
	return proto
}

func (p Protocol) Family() int {
	return p.family
}

func (p Protocol) Kind() int {
	return p.sotype
}

func (p Protocol) Number() int {
	return p.number
}

func (p Protocol) IsValid() bool {
	return p.family != 0 || p.sotype != 0
}

func (p Protocol) IsStream() bool {
	return p.sotype == syscall.SOCK_STREAM
}

func (p Protocol) IsDatagram() bool {
	return p.sotype == syscall.SOCK_DGRAM
}

func (p Protocol) IsRaw() bool {
	return p.sotype == syscall.SOCK_RAW
}

func (p Protocol) IsUnix() bool {
	return p.family == syscall.AF_UNIX
}

func (p Protocol) String() string {
	return p.name
}

func (p Protocol) Equal(other Protocol) bool {
	return p.family == other.family && p.sotype == other.sotype && p.number == other.number
}

// Validate
// 校验端点与协议的地址族一致。
func (p Protocol) Validate(ep Endpoint) (err error) {
	if !ep.IsValid() {
		err = errors.From(ErrInvalidEndpoint, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
		return
	}
	if p.family == syscall.AF_INET && ep.Addr().Is4() {
		return
	}
	if p.family == syscall.AF_INET6 && ep.Addr().Is6() {
		return
	}
	err = errors.From(ErrProtocolUnmatched, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
	return
}
