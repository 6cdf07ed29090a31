//go:build linux

package axio

import (
	"context"
	"net"
	"strconv"
	"syscall"

	"github.com/brickingsoft/axio/ip"
)

type ResolveHandler func(results *ip.Iter, err error)

// Resolver
// 名字到端点的翻译。阻塞模式直接在调用线程查询；
// 异步模式把查询交给执行器，完成回调经反应器派发。
//
// 条目顺序保持底层查询返回的顺序，不重排。查询要么整体成功
// 并给出非空序列，要么以单个解析失败错误结束。
type Resolver struct {
	ctx      *IoContext
	resolver *net.Resolver
}

func NewResolver(ctx *IoContext) *Resolver {
	return &Resolver{ctx: ctx, resolver: net.DefaultResolver}
}

// Resolve
// 阻塞解析。解析是少数允许阻塞调用方的操作之一。
func (r *Resolver) Resolve(query ip.Query) (results *ip.Iter, err error) {
	return r.resolve(context.Background(), query)
}

// AsyncResolve
// 查询投递到执行器执行，回调在某个 Run 线程上触发。
func (r *Resolver) AsyncResolve(query ip.Query, handler ResolveHandler) {
	engine := r.ctx.Engine()
	engine.RetainWork()
	execErr := Executors().Execute(context.Background(), func() {
		results, err := r.resolve(context.Background(), query)
		r.ctx.Post(func() {
			handler(results, err)
		})
		engine.ReleaseWork()
	})
	if execErr != nil {
		r.ctx.Post(func() {
			handler(nil, newResolutionError(execErr))
		})
		engine.ReleaseWork()
	}
}

func (r *Resolver) resolve(ctx context.Context, query ip.Query) (results *ip.Iter, err error) {
	proto := query.Protocol
	if !proto.IsValid() || proto.IsUnix() {
		err = newInvalidError(errMetaOpResolve, "protocol is not resolvable")
		return
	}
	port, portErr := r.resolvePort(ctx, query)
	if portErr != nil {
		err = portErr
		return
	}
	addrs, addrsErr := r.resolveHost(ctx, query)
	if addrsErr != nil {
		err = addrsErr
		return
	}
	canonical := ""
	if query.Flags.Has(ip.CanonicalName) && query.Host != "" {
		if cname, cnameErr := r.resolver.LookupCNAME(ctx, query.Host); cnameErr == nil {
			canonical = cname
		}
	}
	entries := make([]ip.Entry, 0, len(addrs))
	for _, addr := range addrs {
		ep := ip.NewEndpoint(addr, port)
		entries = append(entries, ip.NewEntry(ep, ip.ProtocolFor(proto, ep), canonical))
	}
	results = ip.NewIter(entries)
	return
}

func (r *Resolver) resolvePort(ctx context.Context, query ip.Query) (port uint16, err error) {
	service := query.Service
	if service == "" {
		return
	}
	if n, numErr := strconv.Atoi(service); numErr == nil {
		if n < 0 || n > 65535 {
			err = newInvalidError(errMetaOpResolve, "service port out of range")
			return
		}
		port = uint16(n)
		return
	}
	if query.Flags.Has(ip.NumericService) {
		err = newInvalidError(errMetaOpResolve, "service is not numeric")
		return
	}
	network := "tcp"
	if query.Protocol.IsDatagram() {
		network = "udp"
	}
	n, lookupErr := r.resolver.LookupPort(ctx, network, service)
	if lookupErr != nil {
		err = newResolutionError(lookupErr)
		return
	}
	port = uint16(n)
	return
}

func (r *Resolver) resolveHost(ctx context.Context, query ip.Query) (addrs []ip.Addr, err error) {
	family := query.Protocol.Family()
	if query.Host == "" {
		// 被动模式给通配地址用于绑定监听，主动模式给环回用于连接。
		if query.Flags.Has(ip.Passive) {
			if family == syscall.AF_INET6 {
				addrs = []ip.Addr{ip.AnyV6()}
			} else {
				addrs = []ip.Addr{ip.AnyV4()}
			}
			return
		}
		if family == syscall.AF_INET6 {
			addrs = []ip.Addr{ip.LoopbackV6()}
		} else {
			addrs = []ip.Addr{ip.LoopbackV4()}
		}
		return
	}
	if literal, literalErr := ip.ParseAddr(query.Host); literalErr == nil {
		if matched, ok := matchFamily(literal, family); ok {
			addrs = []ip.Addr{matched}
			return
		}
		err = newResolutionError(newInvalidError(errMetaOpResolve, "address family not matched"))
		return
	}
	if query.Flags.Has(ip.NumericHost) {
		err = newResolutionError(newInvalidError(errMetaOpResolve, "host is not numeric"))
		return
	}
	found, lookupErr := r.resolver.LookupIPAddr(ctx, query.Host)
	if lookupErr != nil {
		err = newResolutionError(lookupErr)
		return
	}
	for _, ipAddr := range found {
		if v4 := ipAddr.IP.To4(); v4 != nil {
			addr := ip.AddrFrom4([4]byte(v4))
			if matched, ok := matchFamily(addr, family); ok {
				addrs = append(addrs, matched)
			}
			continue
		}
		addr := ip.AddrFrom16([16]byte(ipAddr.IP.To16()))
		if matched, ok := matchFamily(addr, family); ok {
			addrs = append(addrs, matched)
		}
	}
	if len(addrs) == 0 {
		err = newResolutionError(newInvalidError(errMetaOpResolve, "no addresses for family"))
	}
	return
}

// matchFamily
// 地址适配协议的地址族：v6 族接受 v4 地址的映射形式。
func matchFamily(addr ip.Addr, family int) (matched ip.Addr, ok bool) {
	switch family {
	case syscall.AF_INET:
		if addr.Is4() {
			matched = addr
			ok = true
			return
		}
		if addr.IsV4Mapped() {
			matched = addr.To4()
			ok = true
			return
		}
		return
	case syscall.AF_INET6:
		if addr.Is6() {
			matched = addr
			ok = true
			return
		}
		matched = addr.To6()
		ok = true
		return
	default:
		matched = addr
		ok = true
		return
	}
}
