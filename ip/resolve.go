package ip

// ResolveFlag
// 解析查询的标志位。
type ResolveFlag uint32

const (
	// Passive
	// 返回适合绑定监听的端点（如通配地址）。
	Passive ResolveFlag = 1 << iota
	// NumericHost
	// 主机名必须是数字地址文本，不做名字查询。
	NumericHost
	// NumericService
	// 服务名必须是数字端口文本。
	NumericService
	// CanonicalName
	// 查询主机的规范名。
	CanonicalName
)

func (f ResolveFlag) Has(flag ResolveFlag) bool {
	return f&flag != 0
}

// Query
// 一次名字解析查询。
type Query struct {
	Host     string
	Service  string
	Protocol Protocol
	Flags    ResolveFlag
}

// Entry
// 解析结果条目。
type Entry struct {
	endpoint  Endpoint
	protocol  Protocol
	canonical string
}

func NewEntry(ep Endpoint, proto Protocol, canonical string) Entry {
	return Entry{endpoint: ep, protocol: proto, canonical: canonical}
}

func (e Entry) Endpoint() Endpoint {
	return e.endpoint
}

func (e Entry) Protocol() Protocol {
	return e.protocol
}

func (e Entry) CanonicalName() string {
	return e.canonical
}

// Iter
// 一次查询产生的条目序列，单趟遍历，不可重置。
//
// 条目顺序与底层名字查询返回的顺序一致。
type Iter struct {
	entries []Entry
	idx     int
}

func NewIter(entries []Entry) *Iter {
	return &Iter{entries: entries}
}

func (it *Iter) Next() (entry Entry, ok bool) {
	if it.idx >= len(it.entries) {
		return
	}
	entry = it.entries[it.idx]
	it.idx++
	ok = true
	return
}

func (it *Iter) Len() int {
	return len(it.entries) - it.idx
}
