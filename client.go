// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"fmt"
	"net"
	"time"

	"github.com/creachadair/taskgroup"

	"github.com/mlage/netchan/codec"
)

type options struct {
	cdc       codec.Codec
	poll      time.Duration
	queueSize int
}

// An Option adjusts the configuration of a dialed channel.
type Option func(*options)

// WithCodec sets the codec used to encode and decode values.
// The default is [codec.Default]. Both ends must agree.
func WithCodec(c codec.Codec) Option { return func(o *options) { o.cdc = c } }

// WithPollInterval sets how often a blocked read wakes to check for shutdown.
func WithPollInterval(d time.Duration) Option { return func(o *options) { o.poll = d } }

// WithQueueSize sets the capacity of the send and receive queues.
func WithQueueSize(n int) Option { return func(o *options) { o.queueSize = n } }

// Dial connects to a netchan server at addr (host:port) and returns the two
// ends of the channel: a [Sender] for values of type T and a [Receiver] for
// responses of type S. Dial wires one outbound and one inbound worker to the
// connection; closing the Sender tears both down.
//
// On a dialed channel a write failure is fatal: the connection is closed and
// every later send fails immediately with the same error. Reconnecting, if
// desired, is the caller's business, using Dial again.
func Dial[T, S any](addr string, opts ...Option) (*Sender[T], *Receiver[S], error) {
	o := options{cdc: codec.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	nc, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	metrics.connsActive.Add(1)

	c := newConn(nc, o.poll)
	snd := newSender[T](c, o.cdc, o.queueSize, true)
	rcv := newReceiver[S](c, o.cdc, o.queueSize)

	g := taskgroup.New(nil)
	snd.tasks = g
	g.Go(snd.run)
	g.Go(func() error {
		defer metrics.connsActive.Add(-1)
		return rcv.run()
	})
	return snd, rcv, nil
}
