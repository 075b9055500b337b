package apikey

import (
	"sync"
	"time"

	"github.com/ytpulse/ytpulse/internal/errors"
	"github.com/ytpulse/ytpulse/internal/logger"
)

var log = logger.New("apikey")

// Manager owns a pool of YouTube API keys and rotates between them.
// Rotation is strictly cyclic by pool position. All mutating calls come
// from the single running fetch tick; Stats may be read concurrently.
type Manager struct {
	mu             sync.Mutex
	keys           []string
	current        int
	exhausted      []bool
	usageCounts    []int
	usageThreshold int
	lastRotation   time.Time
}

// Stats is a point-in-time snapshot of the key pool state
type Stats struct {
	TotalKeys       int         `json:"total_keys"`
	AvailableKeys   int         `json:"available_keys"`
	ExhaustedKeys   int         `json:"exhausted_keys"`
	CurrentKeyIndex int         `json:"current_key_index"`
	UsageCounts     map[int]int `json:"usage_counts"`
	LastRotation    time.Time   `json:"last_rotation"`
}

// NewManager creates a Manager from a non-empty key pool.
// An empty pool is a configuration error, not a runtime condition.
func NewManager(keys []string, usageThreshold int) (*Manager, error) {
	if len(keys) == 0 {
		return nil, errors.New(errors.CodeInvalidArg, "no YouTube API keys provided")
	}

	log.Infof("initialized API key manager with %d key(s)", len(keys))
	return &Manager{
		keys:           keys,
		exhausted:      make([]bool, len(keys)),
		usageCounts:    make([]int, len(keys)),
		usageThreshold: usageThreshold,
		lastRotation:   time.Now(),
	}, nil
}

// Current returns the key at the current pool position
func (m *Manager) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[m.current]
}

// RecordUsage increments the usage counter of the current key. Once the
// counter reaches the threshold it is cleared and the manager rotates to
// the next non-exhausted key to spread load pre-emptively.
func (m *Manager) RecordUsage() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.usageCounts[m.current]++
	if m.usageCounts[m.current] >= m.usageThreshold {
		log.Infof("key #%d reached %d uses, rotating", m.current+1, m.usageCounts[m.current])
		m.usageCounts[m.current] = 0
		m.advanceLocked()
	}
}

// MarkExhausted marks the current key exhausted and advances to the next
// non-exhausted key, wrapping cyclically. When the whole pool becomes
// exhausted, exactly one reset (flags and usage counters cleared) is
// attempted; if no usable key exists even then, a QUOTA_EXHAUSTED error
// is returned instead of retrying further.
func (m *Manager) MarkExhausted() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	log.Warnf("marking API key #%d as exhausted", m.current+1)
	m.exhausted[m.current] = true

	if m.exhaustedCountLocked() == len(m.keys) {
		log.Warn("all API keys are exhausted, resetting exhausted flags and usage counts")
		m.resetLocked()
	}

	// Bounded scan: at most one full pass over the pool
	for i := 0; i < len(m.keys); i++ {
		m.rotateLocked()
		if !m.exhausted[m.current] {
			return nil
		}
	}

	return errors.New(errors.CodeQuotaExhausted, "no available YouTube API keys, all keys have reached their quota limits")
}

// AvailableCount returns the number of non-exhausted keys in the pool
func (m *Manager) AvailableCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.keys) - m.exhaustedCountLocked()
}

// Stats returns a snapshot of the pool state for diagnostics
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	usage := make(map[int]int, len(m.usageCounts))
	for i, count := range m.usageCounts {
		usage[i] = count
	}

	exhausted := m.exhaustedCountLocked()
	return Stats{
		TotalKeys:       len(m.keys),
		AvailableKeys:   len(m.keys) - exhausted,
		ExhaustedKeys:   exhausted,
		CurrentKeyIndex: m.current,
		UsageCounts:     usage,
		LastRotation:    m.lastRotation,
	}
}

// advanceLocked moves to the next non-exhausted position, staying put when
// every other key is exhausted. Caller must hold the mutex.
func (m *Manager) advanceLocked() {
	for i := 0; i < len(m.keys); i++ {
		m.rotateLocked()
		if !m.exhausted[m.current] {
			return
		}
	}
}

// rotateLocked advances the current index one position, wrapping cyclically.
// Caller must hold the mutex.
func (m *Manager) rotateLocked() {
	m.current = (m.current + 1) % len(m.keys)
	m.lastRotation = time.Now()
	log.Debugf("rotated to API key #%d", m.current+1)
}

// resetLocked clears all exhausted flags and usage counters.
// Caller must hold the mutex.
func (m *Manager) resetLocked() {
	for i := range m.keys {
		m.exhausted[i] = false
		m.usageCounts[i] = 0
	}
}

// exhaustedCountLocked counts exhausted keys. Caller must hold the mutex.
func (m *Manager) exhaustedCountLocked() int {
	count := 0
	for _, gone := range m.exhausted {
		if gone {
			count++
		}
	}
	return count
}
