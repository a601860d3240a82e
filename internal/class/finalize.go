// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package class

import (
	"sync"
	"weak"

	"github.com/dop251/goja"
)

// collected identifies the slot of an object the Go collector reclaimed.
type collected struct {
	key  weak.Pointer[goja.Object]
	slot *slot
}

// cleanupQueue collects slots whose objects were collected. Cleanups run on
// the Go runtime's cleanup goroutine, so they only enqueue; the engine
// goroutine drains the queue in Sweep.
type cleanupQueue struct {
	mu    sync.Mutex
	items []collected
}

func (q *cleanupQueue) push(c collected) {
	q.mu.Lock()
	q.items = append(q.items, c)
	q.mu.Unlock()
}

func (q *cleanupQueue) drain() []collected {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Sweep drops the slots of collected objects and runs the class finalizer
// for each value that was still attached. It must be called from the
// goroutine that drives the runtime and returns the number of values
// finalized.
func (r *Registry) Sweep() int {
	n := 0
	for _, c := range r.pending.drain() {
		if r.slots[c.key] == c.slot {
			delete(r.slots, c.key)
		}
		s := c.slot
		if s.state != attached {
			continue
		}
		finalize := s.finalize
		v := s.detach()
		if finalize == nil {
			continue
		}
		finalize(v)
		n++
		r.logger.Debug("private value finalized", "class", s.class)
	}
	return n
}
