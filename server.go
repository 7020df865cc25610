// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/creachadair/taskgroup"

	"github.com/mlage/netchan/codec"
)

// A Handler processes one decoded value from the named client and returns
// the response to write back to it. A server invokes handlers from the worker
// goroutines of its connections, so a handler must be safe for concurrent
// calls with distinct client IDs.
type Handler[S, T any] func(clientID uint32, msg S) T

// ServerConfig carries the settings and callbacks for a [Server] that
// receives values of type S and replies with values of type T.
//
// Callbacks are invoked from the worker goroutines of the connections they
// belong to, so callbacks for different clients may run concurrently; the
// registry guards no state on their behalf beyond its own.
type ServerConfig[S, T any] struct {
	// OnMessage is invoked with each decoded value and the ID of the client
	// that sent it; its return value is written back to that client.
	// It must be set.
	OnMessage Handler[S, T]

	// OnConnect, if set, is invoked with the ID assigned to each new
	// connection, before any of its messages are handled.
	OnConnect func(clientID uint32)

	// OnDisconnect, if set, is invoked exactly once when a client's
	// connection ends, after its ID has been released for reuse.
	OnDisconnect func(clientID uint32)

	// Codec encodes responses and decodes incoming values.
	// If nil, codec.Default() is used.
	Codec codec.Codec

	// PollInterval is the read-poll granularity for client connections.
	PollInterval time.Duration

	// QueueSize is the per-connection response queue capacity.
	QueueSize int
}

// A Server accepts netchan client connections, assigns each a recycled
// numeric ID, and routes every decoded value through the message callback,
// writing the returned response back on the same connection.
type Server[S, T any] struct {
	cfg ServerConfig[S, T]

	// mu guards the client registry: the listener, the ID pool, and the set
	// of live connections. No other component touches this state.
	mu      sync.Mutex
	lst     net.Listener
	ids     idPool
	clients map[uint32]*conn
}

// NewServer constructs an unstarted server from cfg.
// It panics if cfg.OnMessage is nil.
func NewServer[S, T any](cfg ServerConfig[S, T]) *Server[S, T] {
	if cfg.OnMessage == nil {
		panic("netchan: server has no OnMessage callback")
	}
	if cfg.Codec == nil {
		cfg.Codec = codec.Default()
	}
	return &Server[S, T]{cfg: cfg, clients: make(map[uint32]*conn)}
}

// ListenAndServe binds a TCP listener on addr (host:port) and runs the accept
// loop until the listener closes or fails. See [Server.Serve].
func (s *Server[S, T]) ListenAndServe(addr string) error {
	lst, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(lst)
}

// Serve runs the accept loop on lst, spawning an inbound and an outbound
// worker for each connection. It blocks until the listener closes or fails,
// then shuts down the remaining client connections and waits for their
// workers to exit. A listener closed via [Server.Close] reports nil; any
// other listener error is returned to the caller.
//
// A fatal error on one client's connection never affects other connections or
// the accept loop.
func (s *Server[S, T]) Serve(lst net.Listener) error {
	s.mu.Lock()
	if s.lst != nil {
		s.mu.Unlock()
		lst.Close()
		return errors.New("netchan: server is already running")
	}
	s.lst = lst
	s.mu.Unlock()

	g := taskgroup.New(nil)
	for {
		nc, err := lst.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				err = nil
			}
			s.closeClients()
			g.Wait()
			s.mu.Lock()
			s.lst = nil
			s.mu.Unlock()
			return err
		}
		metrics.connsAccepted.Add(1)
		metrics.connsActive.Add(1)

		c := newConn(nc, s.cfg.PollInterval)
		s.mu.Lock()
		id := s.ids.acquire()
		s.clients[id] = c
		s.mu.Unlock()

		if s.cfg.OnConnect != nil {
			s.cfg.OnConnect(id)
		}

		out := newSender[T](c, s.cfg.Codec, s.cfg.QueueSize, false)
		g.Go(out.run)
		g.Go(func() error { s.serveClient(id, c, out); return nil })
	}
}

// Close closes the server's listener, stopping the accept loop. Serve then
// tears down the remaining connections and returns nil.
func (s *Server[S, T]) Close() error {
	s.mu.Lock()
	lst := s.lst
	s.mu.Unlock()
	if lst == nil {
		return nil
	}
	return lst.Close()
}

// closeClients shuts down every live client connection.
func (s *Server[S, T]) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.Close()
	}
}

// serveClient is the inbound worker for one client: it reads frames, decodes
// them, invokes the message callback, and enqueues each response on the same
// connection. Because it is single-threaded, the handler for a client's k-th
// message completes and its response is queued before the k+1-th message is
// read.
//
// Any terminal condition, clean or not, releases the client's ID and fires
// the disconnect callback exactly once. A decoding failure is
// connection-fatal here: the stream cannot be trusted to stay in sync with
// the expected type.
func (s *Server[S, T]) serveClient(id uint32, c *conn, out *Sender[T]) {
	defer func() {
		out.Close() // drain queued responses, then close the connection

		s.mu.Lock()
		delete(s.clients, id)
		s.ids.release(id)
		s.mu.Unlock()

		if s.cfg.OnDisconnect != nil {
			s.cfg.OnDisconnect(id)
		}
		metrics.connsActive.Add(-1)
	}()

	for {
		payload, err := c.readFrame()
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				metrics.recvErrors.Add(1)
			}
			return
		}
		var msg S
		if err := s.cfg.Codec.Decode(payload, &msg); err != nil {
			metrics.recvErrors.Add(1)
			return
		}
		metrics.framesRecv.Add(1)
		out.Send(s.cfg.OnMessage(id, msg))
	}
}

// Serve is a convenience wrapper that builds a server from the three
// callbacks and runs it on addr until the listener closes or fails. onConnect
// and onDisconnect may be nil.
func Serve[S, T any](addr string, onMessage Handler[S, T], onConnect, onDisconnect func(uint32)) error {
	return NewServer(ServerConfig[S, T]{
		OnMessage:    onMessage,
		OnConnect:    onConnect,
		OnDisconnect: onDisconnect,
	}).ListenAndServe(addr)
}
