// SPDX-License-Identifier: MIT

package archive

import (
	"sync"

	"github.com/katalvlaran/antminer/rng"
)

// Synchronized makes Add, Update and Sample of a Variable atomic. The
// capacity boundary decision of Add happens under the lock, so two
// concurrent adds can never both win the last slot.
type Synchronized[V any] struct {
	mu    sync.Mutex
	inner Variable[V]
}

var _ Variable[float64] = (*Synchronized[float64])(nil)

// Synchronize wraps v.
func Synchronize[V any](v Variable[V]) *Synchronized[V] {
	return &Synchronized[V]{inner: v}
}

// Add inserts s atomically.
func (s *Synchronized[V]) Add(sol Solution[V]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Add(sol)
}

// Update recomputes weights atomically.
func (s *Synchronized[V]) Update() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inner.Update()
}

// Sample draws atomically.
func (s *Synchronized[V]) Sample(r rng.Rand) (V, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Sample(r)
}

// Len returns the member count.
func (s *Synchronized[V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.inner.Len()
}

// Unwrap returns the wrapped variable. Callers must not use it while other
// goroutines hold the wrapper.
func (s *Synchronized[V]) Unwrap() Variable[V] { return s.inner }
