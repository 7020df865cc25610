// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/google/go-cmp/cmp"
)

func TestConnSlowHeader(t *testing.T) {
	defer leaktest.Check(t)()

	local, remote := net.Pipe()
	c := newConn(local, time.Millisecond)
	defer c.Close()

	// Dribble the frame out one byte at a time so the reader's poll deadline
	// expires repeatedly mid-header. The reader must still assemble the whole
	// frame.
	go func() {
		frame := []byte{5, 0, 0, 0, 'h', 'e', 'l', 'l', 'o'}
		for _, b := range frame {
			remote.Write([]byte{b})
			time.Sleep(2 * time.Millisecond)
		}
		remote.Close()
	}()

	got, err := c.readFrame()
	if err != nil {
		t.Fatalf("readFrame: %v", err)
	}
	if diff := cmp.Diff([]byte("hello"), got); diff != "" {
		t.Errorf("Payload (-want, +got):\n%s", diff)
	}
}

func TestConnCloseUnblocksRead(t *testing.T) {
	defer leaktest.Check(t)()

	local, remote := net.Pipe()
	defer remote.Close()
	c := newConn(local, time.Millisecond)

	errc := make(chan error, 1)
	go func() {
		_, err := c.readFrame()
		errc <- err
	}()

	time.Sleep(5 * time.Millisecond) // let the reader block
	c.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, net.ErrClosed) {
			t.Errorf("readFrame after Close: got %v, want %v", err, net.ErrClosed)
		}
	case <-time.After(time.Second):
		t.Fatal("readFrame did not return after Close")
	}
}

func TestConnWriteRead(t *testing.T) {
	defer leaktest.Check(t)()

	local, remote := net.Pipe()
	a := newConn(local, time.Millisecond)
	b := newConn(remote, time.Millisecond)
	defer a.Close()
	defer b.Close()

	payloads := [][]byte{[]byte("one"), []byte("two"), nil, []byte("four")}
	go func() {
		for _, p := range payloads {
			a.writeFrame(p)
		}
	}()

	for i, want := range payloads {
		got, err := b.readFrame()
		if err != nil {
			t.Fatalf("readFrame %d: %v", i, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("Frame %d (-want, +got):\n%s", i, diff)
		}
	}
}

// noDeadlineConn rejects every read deadline, like a transport that does not
// implement them.
type noDeadlineConn struct {
	net.Conn
	err error
}

func (c noDeadlineConn) SetReadDeadline(time.Time) error { return c.err }

func TestConnDeadlineUnsupported(t *testing.T) {
	defer leaktest.Check(t)()

	local, remote := net.Pipe()
	defer remote.Close()

	// If the transport cannot arm a deadline the poll loop must fail rather
	// than degrade into an uninterruptible blocking read.
	errNoDeadline := errors.New("deadlines not supported")
	c := newConn(noDeadlineConn{Conn: local, err: errNoDeadline}, time.Millisecond)
	defer c.Close()

	if _, err := c.readFrame(); !errors.Is(err, errNoDeadline) {
		t.Errorf("readFrame: got %v, want %v", err, errNoDeadline)
	}
}

func TestConnCloseIdempotent(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	c := newConn(local, 0)
	if err := c.Close(); err != nil {
		t.Errorf("First Close: unexpected error: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Second Close: unexpected error: %v", err)
	}
}
