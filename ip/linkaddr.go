package ip

import (
	"bytes"
	"encoding/hex"

	"github.com/brickingsoft/errors"
)

// LinkAddr
// 6 字节链路层地址，字节序保持不变。
type LinkAddr struct {
	bytes [6]byte
}

func LinkAddrFrom(b [6]byte) LinkAddr {
	return LinkAddr{bytes: b}
}

// ParseLinkAddr
// 解析 aa:bb:cc:dd:ee:ff 形式的链路层地址文本。
func ParseLinkAddr(s string) (addr LinkAddr, err error) {
	if len(s) != 17 {
		err = errors.From(ErrInvalidAddr, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
		return
	}
	for i := 0; i < 6; i++ {
		if i > 0 && s[i*3-1] != ':' {
			err = errors.From(ErrInvalidAddr, errors.WithMeta(errMetaPkgKey, errMetaPkgVal))
			return
		}
		b, decodeErr := hex.DecodeString(s[i*3 : i*3+2])
		if decodeErr != nil {
			err = errors.From(ErrInvalidAddr,
				errors.WithMeta(errMetaPkgKey, errMetaPkgVal),
				errors.WithWrap(decodeErr),
			)
			return
		}
		addr.bytes[i] = b[0]
	}
	return
}

func (addr LinkAddr) Bytes() []byte {
	return addr.bytes[:]
}

func (addr LinkAddr) As6() [6]byte {
	return addr.bytes
}

func (addr LinkAddr) Compare(other LinkAddr) int {
	return bytes.Compare(addr.bytes[:], other.bytes[:])
}

func (addr LinkAddr) String() string {
	const hexDigits = "0123456789abcdef"
	b := make([]byte, 0, 17)
	for i, c := range addr.bytes {
		if i > 0 {
			b = append(b, ':')
		}
		b = append(b, hexDigits[c>>4], hexDigits[c&0xf])
	}
	return string(b)
}
