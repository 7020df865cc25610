// Copyright (C) 2026 Matti Lage. All Rights Reserved.

package netchan

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIDPoolFresh(t *testing.T) {
	var p idPool
	var got []uint32
	for range 4 {
		got = append(got, p.acquire())
	}
	if diff := cmp.Diff([]uint32{1, 2, 3, 4}, got); diff != "" {
		t.Errorf("Fresh IDs (-want, +got):\n%s", diff)
	}
}

func TestIDPoolReuseFIFO(t *testing.T) {
	var p idPool
	for range 3 {
		p.acquire() // 1, 2, 3
	}

	// Release out of order; reuse must follow release order, not ID order.
	p.release(2)
	p.release(1)

	var got []uint32
	for range 3 {
		got = append(got, p.acquire())
	}
	if diff := cmp.Diff([]uint32{2, 1, 4}, got); diff != "" {
		t.Errorf("Reused IDs (-want, +got):\n%s", diff)
	}
}

func TestIDPoolReleaseAcquireCycle(t *testing.T) {
	var p idPool
	id := p.acquire()
	for range 10 {
		p.release(id)
		if got := p.acquire(); got != id {
			t.Fatalf("acquire: got %d, want %d", got, id)
		}
	}
	if got := p.acquire(); got != 2 {
		t.Errorf("acquire after cycle: got %d, want 2", got)
	}
}
