package ip

import (
	"github.com/brickingsoft/errors"
)

var (
	ErrInvalidAddr       = errors.Define("invalid address")
	ErrInvalidEndpoint   = errors.Define("invalid endpoint")
	ErrProtocolUnmatched = errors.Define("protocol is not matched")
)

func IsInvalidAddr(err error) bool {
	return errors.Is(err, ErrInvalidAddr)
}

func IsInvalidEndpoint(err error) bool {
	return errors.Is(err, ErrInvalidEndpoint)
}

func IsProtocolUnmatched(err error) bool {
	return errors.Is(err, ErrProtocolUnmatched)
}

const (
	errMetaPkgKey = "pkg"
	errMetaPkgVal = "ip"
)
