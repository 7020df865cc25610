// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"

	"github.com/mlage/netchan/codec"
)

func TestSenderStrictWriteFailure(t *testing.T) {
	defer leaktest.Check(t)()

	local, remote := net.Pipe()
	remote.Close() // every write now fails

	s := newSender[string](newConn(local, time.Millisecond), codec.Default(), 4, true)
	done := make(chan struct{})
	go func() { defer close(done); s.run() }()

	err1 := s.Send("first").Wait()
	var serr *SendError
	if !errors.As(err1, &serr) {
		t.Fatalf("First send: got error %v, want a *SendError", err1)
	}
	if serr.Kind != SendIO {
		t.Errorf("First send: got kind %v, want %v", serr.Kind, SendIO)
	}

	// The failure latches: a later send fails immediately with the same
	// error, without another write attempt.
	if err2 := s.Send("second").Wait(); err2 != err1 {
		t.Errorf("Second send: got %v, want the first failure %v", err2, err1)
	}

	s.Close()
	<-done
}
