package ip_test

import (
	"testing"

	"github.com/brickingsoft/axio/ip"
)

func TestParseAddrRoundTrip(t *testing.T) {
	for _, s := range []string{
		"127.0.0.1",
		"0.0.0.0",
		"255.255.255.255",
		"::",
		"::1",
		"2001:db8::1",
		"fe80::1",
		"::ffff:192.0.2.1",
	} {
		addr, err := ip.ParseAddr(s)
		if err != nil {
			t.Fatal(s, err)
		}
		back, err := ip.ParseAddr(addr.String())
		if err != nil {
			t.Fatal(addr.String(), err)
		}
		if !addr.Equal(back) {
			t.Error("round trip mismatch:", s, "->", addr.String(), "->", back.String())
		}
	}
}

func TestParseAddrCompressedForms(t *testing.T) {
	full, err := ip.ParseAddr("0:0:0:0:0:0:0:1")
	if err != nil {
		t.Fatal(err)
	}
	short, err := ip.ParseAddr("::1")
	if err != nil {
		t.Fatal(err)
	}
	if !full.Equal(short) {
		t.Error("0:0:0:0:0:0:0:1 != ::1")
	}
	if short.String() != "::1" {
		t.Error("render:", short.String())
	}
	if !short.Equal(ip.LoopbackV6()) {
		t.Error("::1 is not v6 loopback")
	}
}

func TestParseAddrInvalid(t *testing.T) {
	for _, s := range []string{"", "256.0.0.1", "1.2.3", ":::1", "hello"} {
		if _, err := ip.ParseAddr(s); err == nil {
			t.Error("expected failure:", s)
		} else if !ip.IsInvalidAddr(err) {
			t.Error("unexpected error kind:", s, err)
		}
	}
}

func TestAddrCompare(t *testing.T) {
	v4lo := ip.LoopbackV4()
	v4hi := ip.MustParseAddr("127.0.0.2")
	v6 := ip.LoopbackV6()
	if v4lo.Compare(v4hi) >= 0 {
		t.Error("127.0.0.1 !< 127.0.0.2")
	}
	if v4hi.Compare(v4lo) <= 0 {
		t.Error("127.0.0.2 !> 127.0.0.1")
	}
	if v4hi.Compare(v6) >= 0 {
		t.Error("v4 must order before v6")
	}
	if v6.Compare(v6) != 0 {
		t.Error("v6 loopback not equal to itself")
	}
}

func TestAddrClassify(t *testing.T) {
	if !ip.LoopbackV4().IsLoopback() || !ip.LoopbackV6().IsLoopback() {
		t.Error("loopback not classified")
	}
	if !ip.AnyV4().IsUnspecified() || !ip.AnyV6().IsUnspecified() {
		t.Error("any not classified")
	}
	if !ip.MustParseAddr("224.0.0.1").IsMulticast() {
		t.Error("multicast not classified")
	}
}

func TestAddrMapped(t *testing.T) {
	mapped := ip.MustParseAddr("::ffff:192.0.2.1")
	if !mapped.IsV4Mapped() {
		t.Fatal("not v4 mapped")
	}
	if got := mapped.To4(); !got.Equal(ip.MustParseAddr("192.0.2.1")) {
		t.Error("To4:", got.String())
	}
	v4 := ip.MustParseAddr("192.0.2.1")
	if got := v4.To6(); !got.IsV4Mapped() {
		t.Error("To6 did not map:", got.String())
	}
}

func TestLinkAddr(t *testing.T) {
	addr, err := ip.ParseLinkAddr("00:1a:2b:3c:4d:5e")
	if err != nil {
		t.Fatal(err)
	}
	if addr.String() != "00:1a:2b:3c:4d:5e" {
		t.Error("render:", addr.String())
	}
	other := ip.LinkAddrFrom([6]byte{0x00, 0x1a, 0x2b, 0x3c, 0x4d, 0x5f})
	if addr.Compare(other) >= 0 {
		t.Error("link addr ordering")
	}
	if _, err = ip.ParseLinkAddr("00:1a:2b:3c:4d"); err == nil {
		t.Error("expected failure on short text")
	}
}
