package ip

import (
	"net/netip"
	"strconv"

	"github.com/brickingsoft/errors"
)

// Endpoint
// 通信端点，由地址与端口组成。
//
// 排序以地址为主，端口为次。
type Endpoint struct {
	addr Addr
	port uint16
}

func NewEndpoint(addr Addr, port uint16) Endpoint {
	return Endpoint{addr: addr, port: port}
}

// ParseEndpoint
// 解析端点文本，v4 为 a.b.c.d:port，v6 为 [地址]:port。
func ParseEndpoint(s string) (ep Endpoint, err error) {
	p, parseErr := netip.ParseAddrPort(s)
	if parseErr != nil {
		err = errors.From(ErrInvalidEndpoint,
			errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
			errors.WithWrap(parseErr),
		)
		return
	}
	a := p.Addr()
	if a.Zone() != "" {
		a = a.WithZone("")
	}
	if a.Is4() {
		ep = NewEndpoint(AddrFrom4(a.As4()), p.Port())
		return
	}
	ep = NewEndpoint(AddrFrom16(a.As16()), p.Port())
	return
}

func MustParseEndpoint(s string) Endpoint {
	ep, err := ParseEndpoint(s)
	if err != nil {
		panic(err)
	}
	return ep
}

func (ep Endpoint) IsValid() bool {
	return ep.addr.IsValid()
}

func (ep Endpoint) Addr() Addr {
	return ep.addr
}

func (ep Endpoint) Port() uint16 {
	return ep.port
}

// Compare
// 先比地址，相等时比端口。
func (ep Endpoint) Compare(other Endpoint) int {
	if n := ep.addr.Compare(other.addr); n != 0 {
		return n
	}
	if ep.port == other.port {
		return 0
	}
	if ep.port < other.port {
		return -1
	}
	return 1
}

func (ep Endpoint) Equal(other Endpoint) bool {
	return ep.Compare(other) == 0
}

func (ep Endpoint) String() string {
	if ep.addr.Is6() {
		return "[" + ep.addr.String() + "]:" + strconv.Itoa(int(ep.port))
	}
	return ep.addr.String() + ":" + strconv.Itoa(int(ep.port))
}
