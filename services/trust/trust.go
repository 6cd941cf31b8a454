// Package trust implements the demo trust-score meter: a process-wide counter
// bumped once per uniquely verified transaction. It is deliberately ephemeral;
// a restart resets it. This is a demo mechanic, not a reputation system.
package trust

import "sync"

// DefaultSeed matches the catalog's default trust score.
const DefaultSeed = 84

// Meter tracks the score and the set of hashes already counted. It is owned
// by the composition root and lives for the whole process.
type Meter struct {
	mu    sync.Mutex
	score int
	seen  map[string]struct{}
}

// NewMeter seeds a meter.
func NewMeter(seed int) *Meter {
	return &Meter{
		score: seed,
		seen:  make(map[string]struct{}),
	}
}

// RecordVerified bumps the score the first time a normalized hash is seen and
// returns the current score. Repeat calls for the same hash are idempotent.
func (m *Meter) RecordVerified(tx string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.seen[tx]; !ok {
		m.score++
		m.seen[tx] = struct{}{}
	}
	return m.score
}

// Score returns the current score without recording anything.
func (m *Meter) Score() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.score
}
