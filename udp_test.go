//go:build linux

package axio_test

import (
	"bytes"
	"testing"

	"github.com/brickingsoft/axio"
	"github.com/brickingsoft/axio/ip"
)

func TestUDPSendToReceiveFrom(t *testing.T) {
	ctx := newContext(t)

	a, err := axio.BindUDP(ctx, ip.MustParseEndpoint("127.0.0.1:0"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = a.Close()
	}()
	b, err := axio.BindUDP(ctx, ip.MustParseEndpoint("127.0.0.1:0"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = b.Close()
	}()

	epA, err := a.LocalEndpoint()
	if err != nil {
		t.Fatal(err)
	}
	epB, err := b.LocalEndpoint()
	if err != nil {
		t.Fatal(err)
	}

	msg := []byte("datagram")
	buf := make([]byte, 64)
	var got []byte
	var from ip.Endpoint
	b.AsyncReceiveFrom(buf, func(n int, peer ip.Endpoint, err error) {
		if err != nil {
			t.Error("receive_from:", err)
			return
		}
		got = buf[:n]
		from = peer
	})
	a.AsyncSendTo(msg, epB, func(n int, err error) {
		if err != nil {
			t.Error("send_to:", err)
			return
		}
		if n != len(msg) {
			t.Error("short send_to:", n)
		}
	})

	if err = ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, msg) {
		t.Fatal("payload mismatch:", string(got))
	}
	if from.Compare(epA) != 0 {
		t.Fatal("peer mismatch:", from.String(), "want", epA.String())
	}
}

func TestUDPSendToFamilyMismatch(t *testing.T) {
	ctx := newContext(t)

	s, err := axio.BindUDP(ctx, ip.MustParseEndpoint("127.0.0.1:0"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.Close()
	}()

	var sendErr error
	s.AsyncSendTo([]byte("x"), ip.MustParseEndpoint("[::1]:9"), func(n int, err error) {
		sendErr = err
	})
	if err = ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !axio.IsInvalidArgument(sendErr) {
		t.Fatal("want invalid argument, got:", sendErr)
	}
}

func TestDatagramOpsRejectedOnStream(t *testing.T) {
	ctx := newContext(t)

	s, err := axio.NewTCPSocket(ctx, ip.TCPv4())
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		_ = s.Close()
	}()

	var sendErr error
	s.AsyncSendTo([]byte("x"), ip.MustParseEndpoint("127.0.0.1:9"), func(n int, err error) {
		sendErr = err
	})
	if err = ctx.Run(); err != nil {
		t.Fatal(err)
	}
	if !axio.IsInvalidArgument(sendErr) {
		t.Fatal("want invalid argument, got:", sendErr)
	}
}
