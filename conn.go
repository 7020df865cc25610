// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"sync"
	"time"
)

// defaultPollInterval is how long a blocked frame read waits before checking
// for a shutdown request. It bounds shutdown latency, not request latency.
const defaultPollInterval = 5 * time.Millisecond

// A conn owns one live TCP stream. Its read half belongs exclusively to the
// inbound worker and its write half to the outbound worker, so neither half
// needs a lock. Close may be called from anywhere, any number of times.
type conn struct {
	nc   net.Conn
	br   *bufio.Reader
	bw   *bufio.Writer
	poll time.Duration

	closeOnce sync.Once
	done      chan struct{} // closed when the connection is shut down
	cerr      error
}

func newConn(nc net.Conn, poll time.Duration) *conn {
	if poll <= 0 {
		poll = defaultPollInterval
	}
	return &conn{
		nc:   nc,
		br:   bufio.NewReader(nc),
		bw:   bufio.NewWriter(nc),
		poll: poll,
		done: make(chan struct{}),
	}
}

// writeFrame writes one frame and flushes it to the stream.
// Only the outbound worker may call writeFrame.
func (c *conn) writeFrame(payload []byte) error {
	if err := writeFrame(c.bw, payload); err != nil {
		return err
	}
	return c.bw.Flush()
}

// readFrame reads the next frame from the stream. While waiting for the
// header it wakes every poll interval to check for shutdown, so a blocked
// reader notices Close promptly. A deadline expiry is not an error, only a
// retry. Once the header has arrived the payload is read to completion
// without a deadline: a short read mid-frame is a broken connection, never a
// partial frame.
//
// A clean EOF before any header byte is reported as io.EOF. Shutdown via
// Close is reported as net.ErrClosed. Only the inbound worker may call
// readFrame.
func (c *conn) readFrame() ([]byte, error) {
	var hdr [frameHeaderLen]byte
	var have int
	for have < frameHeaderLen {
		select {
		case <-c.done:
			return nil, net.ErrClosed
		default:
		}
		if err := c.nc.SetReadDeadline(time.Now().Add(c.poll)); err != nil {
			return nil, fmt.Errorf("set read deadline: %w", err)
		}
		n, err := c.br.Read(hdr[have:])
		have += n
		if err != nil {
			switch {
			case errors.Is(err, os.ErrDeadlineExceeded):
				continue // no data yet
			case err == io.EOF && have == 0:
				return nil, io.EOF
			case err == io.EOF:
				return nil, fmt.Errorf("short frame header: %w", io.ErrUnexpectedEOF)
			default:
				// A local shutdown wins over whatever error the stream
				// reported for the closed handle.
				select {
				case <-c.done:
					return nil, net.ErrClosed
				default:
				}
				return nil, err
			}
		}
	}
	if err := c.nc.SetReadDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("clear read deadline: %w", err)
	}
	return readFramePayload(c.br, binary.LittleEndian.Uint32(hdr[:]))
}

// Close shuts the connection down and releases the stream. It is safe to call
// concurrently with the workers; a blocked read or write terminates with
// net.ErrClosed.
func (c *conn) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
		c.cerr = c.nc.Close()
	})
	return c.cerr
}
