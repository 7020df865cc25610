// Package chantest provides support code for testing netchan clients and
// servers.
package chantest

import (
	"net"
	"testing"
	"time"

	"github.com/mlage/netchan"
)

// waitTimeout bounds how long a test will block on a lifecycle event.
const waitTimeout = 5 * time.Second

// Start runs srv on a fresh loopback listener in a background goroutine and
// returns the address clients should dial. The server is closed, and its
// accept loop waited for, when the test ends.
func Start[S, T any](t testing.TB, srv *netchan.Server[S, T]) string {
	t.Helper()

	lst, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- srv.Serve(lst) }()
	t.Cleanup(func() {
		srv.Close()
		if err := <-done; err != nil {
			t.Errorf("Server exited: %v", err)
		}
	})
	return lst.Addr().String()
}

// A Recorder captures connect and disconnect callbacks so a test can block
// until the server has observed a lifecycle event. Wire Connect and
// Disconnect into the ServerConfig under test.
type Recorder struct {
	connects    chan uint32
	disconnects chan uint32
}

// NewRecorder constructs a Recorder with room for 64 unconsumed events in
// each direction.
func NewRecorder() *Recorder {
	return &Recorder{
		connects:    make(chan uint32, 64),
		disconnects: make(chan uint32, 64),
	}
}

// Connect records a connect callback.
func (r *Recorder) Connect(id uint32) { r.connects <- id }

// Disconnect records a disconnect callback.
func (r *Recorder) Disconnect(id uint32) { r.disconnects <- id }

// WaitConnect blocks until a connect callback has fired and returns the
// client ID it reported, or fails the test after a timeout.
func (r *Recorder) WaitConnect(t testing.TB) uint32 {
	t.Helper()
	return r.wait(t, r.connects, "connect")
}

// WaitDisconnect blocks until a disconnect callback has fired and returns the
// client ID it reported, or fails the test after a timeout.
func (r *Recorder) WaitDisconnect(t testing.TB) uint32 {
	t.Helper()
	return r.wait(t, r.disconnects, "disconnect")
}

func (r *Recorder) wait(t testing.TB, ch chan uint32, kind string) uint32 {
	t.Helper()
	select {
	case id := <-ch:
		return id
	case <-time.After(waitTimeout):
		t.Fatalf("Timed out waiting for a %s callback", kind)
		return 0
	}
}
