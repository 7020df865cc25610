// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import "github.com/creachadair/mds/mlink"

// An idPool issues client IDs from a monotonic counter, reusing the IDs of
// disconnected clients oldest-first. IDs start at 1. The pool is not safe for
// concurrent use; the server's registry lock guards it.
type idPool struct {
	next uint32
	free mlink.Queue[uint32]
}

// acquire returns an ID that no live client holds: the oldest released ID if
// any, otherwise a fresh one.
func (p *idPool) acquire() uint32 {
	if id, ok := p.free.Pop(); ok {
		metrics.idsReused.Add(1)
		return id
	}
	p.next++
	return p.next
}

// release returns id to the pool for reuse by a later connection.
func (p *idPool) release(id uint32) { p.free.Add(id) }
