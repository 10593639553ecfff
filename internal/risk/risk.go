// Package risk implements the engine's kill-switch state machine: six
// trip conditions latched behind a single ShouldKill gate, plus an
// exposure cap checked by CanTakeTrade.
package risk

import (
	"fmt"
	"sync"
	"time"
)

// Limits holds the seven configurable kill thresholds plus the
// exposure cap enforced by CanTakeTrade.
type Limits struct {
	MaxOpenExposurePct  float64
	MaxTradesPerHour    int
	PartialFillStreak   int
	PartialFillDay      int
	APIErrors10m        int
	LatencyMS           float64
	LatencyWindow       time.Duration
	ThinBookStreak      int
}

// DefaultLimits mirrors the defaults in the engine's configuration
// surface.
func DefaultLimits() Limits {
	return Limits{
		MaxOpenExposurePct: 0.5,
		MaxTradesPerHour:   20,
		PartialFillStreak:  3,
		PartialFillDay:     8,
		APIErrors10m:       5,
		LatencyMS:          4000,
		LatencyWindow:      120 * time.Second,
		ThinBookStreak:     4,
	}
}

type latencySample struct {
	at time.Time
	ms float64
}

// Manager tracks the seven rolling risk counters and the one-way
// kill-switch latch. Once tripped by ShouldKill, it stays tripped
// until a fresh Manager is constructed.
type Manager struct {
	limits Limits

	mu                sync.Mutex
	partialFillStreak int
	partialFillDay    int
	apiErrors10m      []time.Time
	latencyWindow     []latencySample
	thinBookStreak    int
	tradesLastHour    []time.Time
	currentExposure   float64

	killed     bool
	killReason string
}

// New constructs a Manager with the given limits.
func New(limits Limits) *Manager {
	return &Manager{limits: limits}
}

// PartialFill records a partial-fill event; increments both the
// consecutive streak and the partial-fill total checked against
// PartialFillDay. The total counts every partial fill since the Manager
// was constructed; it is not reset at day boundaries.
func (m *Manager) PartialFill() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partialFillStreak++
	m.partialFillDay++
}

// HedgedComplete resets the consecutive partial-fill streak.
func (m *Manager) HedgedComplete() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.partialFillStreak = 0
}

// APIError records a gateway error for the 10-minute rolling window.
func (m *Manager) APIError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.apiErrors10m = append(m.apiErrors10m, now)
	m.apiErrors10m = pruneBefore(m.apiErrors10m, now.Add(-10*time.Minute))
}

// Latency records a gateway call's latency for the configured window.
func (m *Manager) Latency(ms float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.latencyWindow = append(m.latencyWindow, latencySample{at: now, ms: ms})
	cutoff := now.Add(-m.limits.LatencyWindow)
	kept := m.latencyWindow[:0]
	for _, s := range m.latencyWindow {
		if s.at.After(cutoff) {
			kept = append(kept, s)
		}
	}
	m.latencyWindow = kept
}

// ThinBook records whether the most recent depth check was thin;
// consecutive thin checks extend the streak, a healthy one resets it.
func (m *Manager) ThinBook(thin bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if thin {
		m.thinBookStreak++
	} else {
		m.thinBookStreak = 0
	}
}

// Trade records a successfully placed order for the hourly rate cap.
func (m *Manager) Trade() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	m.tradesLastHour = append(m.tradesLastHour, now)
	m.tradesLastHour = pruneBefore(m.tradesLastHour, now.Add(-time.Hour))
}

// AddExposure increases the open exposure tracked against the bankroll
// cap.
func (m *Manager) AddExposure(usd float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentExposure += usd
}

// ReduceExposure decreases open exposure; never drives it below zero.
func (m *Manager) ReduceExposure(usd float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentExposure -= usd
	if m.currentExposure < 0 {
		m.currentExposure = 0
	}
}

// CurrentExposure returns the current open exposure in USD.
func (m *Manager) CurrentExposure() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentExposure
}

// CanTakeTrade denies a trade that would push exposure past
// bankroll*MaxOpenExposurePct, or when the bankroll is non-positive.
func (m *Manager) CanTakeTrade(bankroll, add float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if bankroll <= 0 {
		return false
	}
	return m.currentExposure+add <= bankroll*m.limits.MaxOpenExposurePct
}

// ShouldKill evaluates six kill conditions in order (partial-fill
// streak, partial-fill total, API errors, thin-book streak, mean
// latency, trades per hour); the seventh, the exposure cap, is enforced
// by CanTakeTrade instead. The first tripped condition latches Killed
// and records KillReason; subsequent calls return true without
// re-evaluating.
func (m *Manager) ShouldKill() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.killed {
		return true
	}

	now := time.Now()
	m.apiErrors10m = pruneBefore(m.apiErrors10m, now.Add(-10*time.Minute))
	m.tradesLastHour = pruneBefore(m.tradesLastHour, now.Add(-time.Hour))

	switch {
	case m.partialFillStreak >= m.limits.PartialFillStreak:
		return m.latch("partial_fill_streak")
	case m.partialFillDay >= m.limits.PartialFillDay:
		return m.latch("partial_fill_day")
	case len(m.apiErrors10m) >= m.limits.APIErrors10m:
		return m.latch("api_errors")
	case m.thinBookStreak >= m.limits.ThinBookStreak:
		return m.latch("thin_book_streak")
	}

	if len(m.latencyWindow) > 0 {
		var sum float64
		for _, s := range m.latencyWindow {
			sum += s.ms
		}
		if sum/float64(len(m.latencyWindow)) >= m.limits.LatencyMS {
			return m.latch("latency")
		}
	}

	if len(m.tradesLastHour) >= m.limits.MaxTradesPerHour {
		return m.latch("max_trades_per_hour")
	}

	return false
}

func (m *Manager) latch(reason string) bool {
	m.killed = true
	m.killReason = reason
	return true
}

// Killed reports the current latch state without evaluating
// conditions.
func (m *Manager) Killed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killed
}

// KillReason returns the reason recorded when the latch tripped, empty
// if it never has.
func (m *Manager) KillReason() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.killReason
}

// StatusText renders a human-readable summary for interval summaries.
func (m *Manager) StatusText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := ""
	s += fmt.Sprintf("partial fills (streak/day): %d/%d\n", m.partialFillStreak, m.partialFillDay)
	s += fmt.Sprintf("api errors (10m): %d\n", len(m.apiErrors10m))
	s += fmt.Sprintf("thin book streak: %d\n", m.thinBookStreak)
	s += fmt.Sprintf("trades (1h): %d\n", len(m.tradesLastHour))
	s += fmt.Sprintf("open exposure: $%.2f\n", m.currentExposure)
	if m.killed {
		s += fmt.Sprintf("KILLED: %s\n", m.killReason)
	}
	return s
}

func pruneBefore(ts []time.Time, cutoff time.Time) []time.Time {
	kept := ts[:0]
	for _, t := range ts {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
