// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (C) 2026 aPlane Authors

package util

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type digestEntry struct {
	Size int
	New  func() hash.Hash
}

func newDigestTable() *StringRegistry[digestEntry] {
	r := NewStringRegistry[digestEntry]()
	r.Set("sha512", digestEntry{Size: sha512.Size, New: sha512.New})
	r.Set("sha256", digestEntry{Size: sha256.Size, New: sha256.New})
	r.Set("sha512-256", digestEntry{Size: sha512.Size256, New: sha512.New512_256})
	return r
}

func TestStringRegistry_FirstRegistrationWins(t *testing.T) {
	r := newDigestTable()

	if r.Set("sha256", digestEntry{Size: 1}) {
		t.Error("Set should refuse an existing key")
	}
	entry, ok := r.Get("sha256")
	if !ok || entry.Size != sha256.Size {
		t.Errorf("Get(sha256) = (%d, %v), want the original entry", entry.Size, ok)
	}
	if r.Len() != 3 {
		t.Errorf("Len() = %d, want 3", r.Len())
	}
}

func TestStringRegistry_Lookup(t *testing.T) {
	r := newDigestTable()

	tests := []struct {
		key  string
		size int
		ok   bool
	}{
		{"sha256", 32, true},
		{"sha512", 64, true},
		{"sha512-256", 32, true},
		{"SHA256", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			entry, ok := r.Get(tt.key)
			if ok != tt.ok || r.Has(tt.key) != tt.ok {
				t.Fatalf("Get/Has(%q) = %v, want %v", tt.key, ok, tt.ok)
			}
			if ok && entry.Size != tt.size {
				t.Errorf("Size = %d, want %d", entry.Size, tt.size)
			}
		})
	}
}

func TestStringRegistry_KeysForErrorMessages(t *testing.T) {
	r := newDigestTable()

	// Keys are listed sorted regardless of insertion order.
	if diff := cmp.Diff([]string{"sha256", "sha512", "sha512-256"}, r.Keys()); diff != "" {
		t.Errorf("Keys mismatch (-want +got):\n%s", diff)
	}

	got := fmt.Sprintf("available: %v", r.Keys())
	if want := "available: [sha256 sha512 sha512-256]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	empty := NewStringRegistry[digestEntry]()
	if empty.Len() != 0 || len(empty.Keys()) != 0 {
		t.Errorf("empty registry: Len=%d Keys=%v", empty.Len(), empty.Keys())
	}
}

// TestStringRegistry_SharedAcrossGoroutines mirrors several runtimes hashing
// from one populated table at once.
func TestStringRegistry_SharedAcrossGoroutines(t *testing.T) {
	r := newDigestTable()
	want := sha256.Sum256([]byte("abc"))

	var wg sync.WaitGroup
	errs := make(chan error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entry, ok := r.Get("sha256")
			if !ok {
				errs <- fmt.Errorf("sha256 missing")
				return
			}
			h := entry.New()
			h.Write([]byte("abc"))
			if got := h.Sum(nil); string(got) != string(want[:]) {
				errs <- fmt.Errorf("digest mismatch")
			}
			r.Set("sha256", digestEntry{})
			_ = r.Keys()
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if entry, _ := r.Get("sha256"); entry.Size != sha256.Size {
		t.Error("concurrent Set replaced the registered entry")
	}
}
