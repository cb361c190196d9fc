// Package entropy provides seeded randomness for the simulation.
// Every stochastic decision draws from a labeled stream derived from the
// world seed, so a world is reproducible given its seed and inputs.
// API keys are the one exception: they come from crypto/rand.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	mathrand "math/rand"
	"sync"

	"lukechampine.com/blake3"
)

// Source hands out deterministic random draws keyed by stream label.
// Distinct labels ("crime", "arrest", "gamble", ...) evolve independently,
// so adding draws to one subsystem does not perturb another.
type Source struct {
	seed string

	mu      sync.Mutex
	streams map[string]*mathrand.Rand
}

// NewSource creates a source for the given world seed.
func NewSource(seed string) *Source {
	return &Source{
		seed:    seed,
		streams: make(map[string]*mathrand.Rand),
	}
}

func (s *Source) stream(label string) *mathrand.Rand {
	r, ok := s.streams[label]
	if !ok {
		sum := blake3.Sum256([]byte(s.seed + ":" + label))
		r = mathrand.New(mathrand.NewSource(int64(binary.LittleEndian.Uint64(sum[:8]))))
		s.streams[label] = r
	}
	return r
}

// Float returns a draw in [0, 1) from the labeled stream.
func (s *Source) Float(label string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream(label).Float64()
}

// Chance samples a Bernoulli with probability p from the labeled stream.
func (s *Source) Chance(label string, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float(label) < p
}

// IntRange returns a draw in [lo, hi] inclusive. Panics if hi < lo.
func (s *Source) IntRange(label string, lo, hi int64) int64 {
	if hi < lo {
		panic(fmt.Sprintf("entropy: bad range [%d, %d]", lo, hi))
	}
	if hi == lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.stream(label).Int63n(hi-lo+1)
}

// Pick returns a uniformly chosen index in [0, n).
func (s *Source) Pick(label string, n int) int {
	if n <= 1 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream(label).Intn(n)
}

// SubSeed derives a stable int64 seed for an external consumer (noise
// fields, shuffles) from the world seed and a label.
func (s *Source) SubSeed(label string) int64 {
	sum := blake3.Sum256([]byte(s.seed + ":" + label))
	return int64(binary.LittleEndian.Uint64(sum[:8]))
}

// NewAPIKey returns a fresh 32-byte hex key from the OS entropy pool.
// Never seeded: keys must be unpredictable even for a known world seed.
func NewAPIKey() (string, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", fmt.Errorf("entropy: read key bytes: %w", err)
	}
	return hex.EncodeToString(buf[:]), nil
}
