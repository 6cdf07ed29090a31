package ip

import (
	"bytes"
	"net/netip"

	"github.com/brickingsoft/errors"
)

type Family uint8

const (
	Unspec Family = iota
	V4
	V6
)

func (f Family) String() string {
	switch f {
	case V4:
		return "v4"
	case V6:
		return "v6"
	default:
		return "unspec"
	}
}

// Addr
// IP 地址值，区分 v4 与 v6，保存原始字节。
//
// 零值为无效地址。比较时先比族，再按字节序比内容。
type Addr struct {
	family Family
	bytes  [16]byte
}

// AddrFrom4
// 由 4 字节构建 v4 地址。
func AddrFrom4(b [4]byte) Addr {
	addr := Addr{family: V4}
	copy(addr.bytes[:4], b[:])
	return addr
}

// AddrFrom16
// 由 16 字节构建 v6 地址。
func AddrFrom16(b [16]byte) Addr {
	return Addr{family: V6, bytes: b}
}

// ParseAddr
// 解析地址文本，接受点分 v4 与标准或压缩的 v6 形式。
func ParseAddr(s string) (addr Addr, err error) {
	p, parseErr := netip.ParseAddr(s)
	if parseErr != nil {
		err = errors.From(ErrInvalidAddr,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(parseErr),
		)
		return
	}
	if p.Zone() != "" {
		p = p.WithZone("")
	}
	if p.Is4() {
		addr = AddrFrom4(p.As4())
		return
	}
	addr = AddrFrom16(p.As16())
	return
}

func MustParseAddr(s string) Addr {
	addr, err := ParseAddr(s)
	if err != nil {
		panic(err)
	}
	return addr
}

func AnyV4() Addr {
	return AddrFrom4([4]byte{})
}

func AnyV6() Addr {
	return AddrFrom16([16]byte{})
}

func LoopbackV4() Addr {
	return AddrFrom4([4]byte{127, 0, 0, 1})
}

func LoopbackV6() Addr {
	return AddrFrom16([16]byte{15: 1})
}

func (addr Addr) IsValid() bool {
	return addr.family != Unspec
}

func (addr Addr) Family() Family {
	return addr.family
}

func (addr Addr) Is4() bool {
	return addr.family == V4
}

func (addr Addr) Is6() bool {
	return addr.family == V6
}

func (addr Addr) As4() (b [4]byte) {
	copy(b[:], addr.bytes[:4])
	return
}

func (addr Addr) As16() (b [16]byte) {
	b = addr.bytes
	return
}

// Bytes
// 原始地址字节，v4 为 4 字节，v6 为 16 字节。
func (addr Addr) Bytes() []byte {
	if addr.family == V4 {
		return addr.bytes[:4]
	}
	return addr.bytes[:]
}

func (addr Addr) IsUnspecified() bool {
	return addr.netip().IsUnspecified()
}

func (addr Addr) IsLoopback() bool {
	return addr.netip().IsLoopback()
}

func (addr Addr) IsMulticast() bool {
	return addr.netip().IsMulticast()
}

func (addr Addr) IsLinkLocalUnicast() bool {
	return addr.netip().IsLinkLocalUnicast()
}

// IsV4Mapped
// 是否为 ::ffff:a.b.c.d 形式的 v6 地址。
func (addr Addr) IsV4Mapped() bool {
	return addr.family == V6 && addr.netip().Is4In6()
}

// To4
// v4 原样返回；v4-mapped v6 去映射；其余 v6 返回无效地址。
func (addr Addr) To4() Addr {
	if addr.family == V4 {
		return addr
	}
	if addr.IsV4Mapped() {
		var b [4]byte
		copy(b[:], addr.bytes[12:])
		return AddrFrom4(b)
	}
	return Addr{}
}

// To6
// v6 原样返回；v4 映射为 ::ffff:a.b.c.d。
func (addr Addr) To6() Addr {
	if addr.family == V6 {
		return addr
	}
	if addr.family == V4 {
		var b [16]byte
		b[10] = 0xff
		b[11] = 0xff
		copy(b[12:], addr.bytes[:4])
		return AddrFrom16(b)
	}
	return Addr{}
}

// Compare
// 先比地址族（v4 < v6），同族按字节序。
func (addr Addr) Compare(other Addr) int {
	if addr.family != other.family {
		if addr.family < other.family {
			return -1
		}
		return 1
	}
	return bytes.Compare(addr.Bytes(), other.Bytes())
}

func (addr Addr) Equal(other Addr) bool {
	return addr.Compare(other) == 0
}

// String
// v4 为点分十进制，v6 为 RFC 5952 压缩形式。
func (addr Addr) String() string {
	if !addr.IsValid() {
		return "<nil>"
	}
	return addr.netip().String()
}

func (addr Addr) netip() netip.Addr {
	if addr.family == V4 {
		return netip.AddrFrom4(addr.As4())
	}
	return netip.AddrFrom16(addr.bytes)
}
