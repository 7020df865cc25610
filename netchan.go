// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"errors"
	"io"
	"net"
	"sync"

	"github.com/creachadair/taskgroup"

	"github.com/mlage/netchan/codec"
)

// defaultQueueSize is the capacity of the pending-send and receive queues.
// A full queue applies backpressure to the producer; it does not drop values.
const defaultQueueSize = 64

// A Pending is the one-shot result of a send. It is created by [Sender.Send],
// fulfilled exactly once by the outbound worker, and observed with Wait.
type Pending struct {
	ch   chan error
	once sync.Once
	err  error
}

func newPending() *Pending { return &Pending{ch: make(chan error, 1)} }

// deliver fulfils the result. It must be called exactly once.
func (p *Pending) deliver(err error) { p.ch <- err }

// Wait blocks until the send has been written to the connection or has
// failed, and returns its outcome. A non-nil error has concrete type
// [*SendError]. Wait may be called any number of times; every call returns
// the same outcome.
func (p *Pending) Wait() error {
	p.once.Do(func() { p.err = <-p.ch })
	return p.err
}

// A pendingSend is one queued outgoing value plus its result slot.
type pendingSend[T any] struct {
	value  T
	result *Pending
}

// A Sender is the sending end of a netchan channel. Send enqueues values for
// a background worker to encode and write, so the caller never blocks on
// network I/O. A Sender is safe for concurrent use by multiple goroutines.
type Sender[T any] struct {
	cdc    codec.Codec
	c      *conn
	strict bool // point-to-point: the first write failure breaks the connection

	mu     sync.Mutex
	queue  chan pendingSend[T]
	closed bool

	stopped chan struct{}    // closed when the outbound worker stops
	tasks   *taskgroup.Group // non-nil when the sender owns both workers
}

func newSender[T any](c *conn, cdc codec.Codec, size int, strict bool) *Sender[T] {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Sender[T]{
		cdc:     cdc,
		c:       c,
		strict:  strict,
		queue:   make(chan pendingSend[T], size),
		stopped: make(chan struct{}),
	}
}

// Send enqueues v for transmission and returns a [Pending] that resolves once
// the outbound worker has written the frame or given up. Send blocks only if
// the queue is full, never on the network. After Close, Send fails
// immediately with a [SendError] of kind [SendClosed].
func (s *Sender[T]) Send(v T) *Pending {
	p := newPending()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		p.deliver(&SendError{Kind: SendClosed})
		return p
	}
	s.queue <- pendingSend[T]{value: v, result: p}
	s.mu.Unlock()
	return p
}

// Close stops the sender: the queue is closed, the outbound worker drains the
// sends already accepted, and then the connection is closed. Close blocks
// until the drain completes. It is safe to call Close more than once.
func (s *Sender[T]) Close() error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()
	<-s.stopped
	err := s.c.Close()
	if s.tasks != nil {
		s.tasks.Wait()
	}
	return err
}

// run is the outbound worker. It drains the queue of pending sends, writes
// each as one frame, and fulfils each result slot exactly once. The queue
// closing moves the worker from running to draining to stopped.
//
// In strict mode a write failure is fatal to the connection and every send
// after it fails immediately; otherwise a failure is reported only to the
// send that hit it.
func (s *Sender[T]) run() error {
	defer close(s.stopped)
	var failed *SendError
	for ps := range s.queue {
		if failed != nil {
			ps.result.deliver(failed)
			continue
		}
		payload, err := s.cdc.Encode(ps.value)
		if err != nil {
			metrics.sendErrors.Add(1)
			ps.result.deliver(&SendError{Kind: SendEncoding, Err: err})
			continue
		}
		if err := checkFrameSize(len(payload)); err != nil {
			// Nothing was written, so the connection is still usable.
			metrics.sendErrors.Add(1)
			ps.result.deliver(&SendError{Kind: SendEncoding, Err: err})
			continue
		}
		if err := s.c.writeFrame(payload); err != nil {
			metrics.sendErrors.Add(1)
			serr := &SendError{Kind: SendIO, Err: err}
			ps.result.deliver(serr)
			if s.strict {
				failed = serr
				s.c.Close()
			}
			continue
		}
		metrics.framesSent.Add(1)
		ps.result.deliver(nil)
	}
	return nil
}

// A recvItem is one decoded value, or the error that took its place, as
// published by the inbound worker.
type recvItem[S any] struct {
	value S
	err   error
}

// A Receiver is the receiving end of a netchan channel. A background worker
// reads frames from the connection, decodes them, and publishes the results
// to a queue that Recv consumes.
type Receiver[S any] struct {
	cdc   codec.Codec
	c     *conn
	queue chan recvItem[S]
}

func newReceiver[S any](c *conn, cdc codec.Codec, size int) *Receiver[S] {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Receiver[S]{cdc: cdc, c: c, queue: make(chan recvItem[S], size)}
}

// Recv blocks until the next value is available and returns it, or returns
// the error the inbound worker published in its place. A non-nil error has
// concrete type [*ReceiveError]. Once the peer has closed the stream and the
// queue has drained, every call reports kind [ReceiveEOF].
//
// A decoding error does not end the channel; the frame that failed is
// consumed and Recv may be called again for the next one.
func (r *Receiver[S]) Recv() (S, error) {
	it, ok := <-r.queue
	if !ok {
		var zero S
		return zero, &ReceiveError{Kind: ReceiveEOF}
	}
	return it.value, it.err
}

// MustRecv is like [Receiver.Recv], but panics on any error. It is for
// callers that have decided a receive failure is unrecoverable.
func (r *Receiver[S]) MustRecv() S {
	v, err := r.Recv()
	if err != nil {
		panic(err)
	}
	return v
}

// run is the inbound worker. It polls the connection for frames, decodes
// them, and publishes each value or error downstream. A clean end of stream
// closes the queue and exits; a transport failure is published and then ends
// the worker; a decoding failure is published and the worker keeps reading,
// since the length-prefixed stream is still in sync.
func (r *Receiver[S]) run() error {
	defer close(r.queue)
	for {
		payload, err := r.c.readFrame()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			metrics.recvErrors.Add(1)
			r.publish(recvItem[S]{err: &ReceiveError{Kind: ReceiveIO, Err: err}})
			return nil
		}
		var v S
		if err := r.cdc.Decode(payload, &v); err != nil {
			metrics.recvErrors.Add(1)
			if !r.publish(recvItem[S]{err: &ReceiveError{Kind: ReceiveDecoding, Err: err}}) {
				return nil
			}
			continue
		}
		metrics.framesRecv.Add(1)
		if !r.publish(recvItem[S]{value: v}) {
			return nil
		}
	}
}

// publish delivers an item downstream, backing off only if the connection
// shuts down while the queue is full.
func (r *Receiver[S]) publish(it recvItem[S]) bool {
	select {
	case r.queue <- it:
		return true
	case <-r.c.done:
		return false
	}
}
