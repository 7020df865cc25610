// Copyright (C) 2026 Matti Lage. All Rights Reserved.

// Package codec defines the value-encoding contract used by netchan channels,
// along with JSON and gob implementations.
//
// A codec must be deterministic and self-delimiting within the byte length it
// is given; the frame layer supplies exactly the bytes produced by Encode.
package codec

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
)

// A Codec converts values to and from their wire encoding. Implementations
// must be safe for concurrent use by multiple goroutines.
type Codec interface {
	// Encode returns the encoded form of v.
	Encode(v any) ([]byte, error)

	// Decode decodes data into v, which must be a non-nil pointer to a value
	// of the expected type.
	Decode(data []byte, v any) error
}

// Default returns the codec used when none is configured, currently [JSON].
func Default() Codec { return JSON{} }

// JSON is a Codec that encodes values as JSON.
type JSON struct{}

// Encode implements a method of the [Codec] interface.
func (JSON) Encode(v any) ([]byte, error) { return json.Marshal(v) }

// Decode implements a method of the [Codec] interface.
func (JSON) Decode(data []byte, v any) error { return json.Unmarshal(data, v) }

// Gob is a Codec that encodes values with encoding/gob. Each value is encoded
// on a fresh stream, so the usual gob stream state does not leak between
// frames.
type Gob struct{}

// Encode implements a method of the [Codec] interface.
func (Gob) Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode implements a method of the [Codec] interface.
func (Gob) Decode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
