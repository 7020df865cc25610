// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// frameHeaderLen is the size of the length prefix preceding every payload.
const frameHeaderLen = 4

// maxFramePayload is the largest payload length the header can carry.
const maxFramePayload = 1<<32 - 1

var errFrameTooLarge = errors.New("frame payload too large")

// checkFrameSize reports whether a payload of n bytes fits in one frame.
// A payload that does not fit must be rejected before the header is written,
// since a truncated length prefix desynchronizes the stream.
func checkFrameSize(n int) error {
	if uint64(n) > maxFramePayload {
		return fmt.Errorf("%w: %d bytes", errFrameTooLarge, n)
	}
	return nil
}

// writeFrame writes one frame to w: a 4-byte little-endian payload length
// followed by the payload itself. An error leaves the frame partially written
// and the stream unusable for further frames.
func writeFrame(w io.Writer, payload []byte) error {
	if err := checkFrameSize(len(payload)); err != nil {
		return err
	}
	var hdr [frameHeaderLen]byte
	binary.LittleEndian.PutUint32(hdr[:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}
	if len(payload) != 0 {
		if _, err := w.Write(payload); err != nil {
			return fmt.Errorf("write frame payload: %w", err)
		}
	}
	return nil
}

// readFrame reads one complete frame from r and returns its payload.  A clean
// EOF before any header byte is reported as io.EOF; an EOF mid-frame is
// reported as io.ErrUnexpectedEOF, since a short read is not a valid frame.
func readFrame(r io.Reader) ([]byte, error) {
	var hdr [frameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("short frame header: %w", err)
		}
		return nil, err
	}
	return readFramePayload(r, binary.LittleEndian.Uint32(hdr[:]))
}

// readFramePayload reads exactly size payload bytes from r.
func readFramePayload(r io.Reader, size uint32) ([]byte, error) {
	if size == 0 {
		return nil, nil
	}
	payload := make([]byte, int(size))
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("short frame payload: %w", err)
	}
	return payload, nil
}
