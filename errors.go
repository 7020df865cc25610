// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import "fmt"

// A SendKind classifies the failure reported by a SendError.
type SendKind int

const (
	SendEncoding SendKind = iota + 1 // the value could not be encoded
	SendIO                           // the transport failed while writing the frame
	SendClosed                       // the sender was already closed
)

func (k SendKind) String() string {
	switch k {
	case SendEncoding:
		return "ENCODING"
	case SendIO:
		return "IO"
	case SendClosed:
		return "CLOSED"
	default:
		return fmt.Sprintf("send kind %d", int(k))
	}
}

// SendError is the concrete type of errors delivered to a send's [Pending].
//
// A frame that fails with kind [SendIO] may have been partially written, and
// the connection must be considered broken; there is no resend at frame
// granularity.
type SendError struct {
	Kind SendKind
	Err  error // the underlying cause, nil for SendClosed
}

// Error satisfies the error interface.
func (e *SendError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("send: %v", e.Kind)
	}
	return fmt.Sprintf("send: %v: %v", e.Kind, e.Err)
}

// Unwrap reports the underlying error of e, if any.
func (e *SendError) Unwrap() error { return e.Err }

// A ReceiveKind classifies the failure reported by a ReceiveError.
type ReceiveKind int

const (
	ReceiveIO       ReceiveKind = iota + 1 // the transport failed while reading a frame
	ReceiveEOF                             // the peer closed the stream cleanly
	ReceiveDecoding                        // the payload did not decode to the expected type
)

func (k ReceiveKind) String() string {
	switch k {
	case ReceiveIO:
		return "IO"
	case ReceiveEOF:
		return "END_OF_STREAM"
	case ReceiveDecoding:
		return "DECODING"
	default:
		return fmt.Sprintf("receive kind %d", int(k))
	}
}

// ReceiveError is the concrete type of errors reported by [Receiver.Recv].
type ReceiveError struct {
	Kind ReceiveKind
	Err  error // the underlying cause, nil for ReceiveEOF
}

// Error satisfies the error interface.
func (e *ReceiveError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("receive: %v", e.Kind)
	}
	return fmt.Sprintf("receive: %v: %v", e.Kind, e.Err)
}

// Unwrap reports the underlying error of e, if any.
func (e *ReceiveError) Unwrap() error { return e.Err }

// EndOfStream reports whether e records a clean end of stream rather than a
// failure.
func (e *ReceiveError) EndOfStream() bool { return e.Kind == ReceiveEOF }
