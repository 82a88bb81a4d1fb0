// Package ids generates task identifiers.
package ids

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
)

// Generator produces identifiers for new tasks.
type Generator interface {
	NewID() (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func() (string, error)

// NewID calls f.
func (f GeneratorFunc) NewID() (string, error) {
	return f()
}

// Random generates version 4 UUIDs (8-4-4-4-12 hex, version nibble 4,
// variant bits 10xx) from a random source.
type Random struct {
	mu     sync.Mutex
	source io.Reader
}

// NewRandom creates a generator reading from source.
// A nil source uses crypto/rand.
func NewRandom(source io.Reader) *Random {
	if source == nil {
		source = rand.Reader
	}
	return &Random{source: source}
}

// NewID returns a new random identifier.
func (r *Random) NewID() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, err := uuid.NewRandomFromReader(r.source)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id.String(), nil
}

// Sequence yields predictable identifiers ("<prefix>1", "<prefix>2", ...).
// Intended for tests and fixtures.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	next   int
}

// NewSequence creates a sequence generator.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next identifier.
func (s *Sequence) NewID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next), nil
}
