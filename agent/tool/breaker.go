package tool

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerState reports the circuit of one tool name.
type BreakerState struct {
	FailureCount    int        `json:"failure_count"`
	LastFailureTime *time.Time `json:"last_failure_time,omitempty"`
	IsOpen          bool       `json:"is_open"`
}

// breakerRegistry owns one circuit per tool name for the process lifetime.
// Circuits of different tools never share a lock.
type breakerRegistry struct {
	threshold   int
	openTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	byName map[string]*breaker
}

type breaker struct {
	cb *gobreaker.TwoStepCircuitBreaker

	mu          sync.Mutex
	failures    int
	lastFailure time.Time
	now         func() time.Time
}

func newBreakerRegistry(threshold int, openTimeout time.Duration, now func() time.Time) *breakerRegistry {
	return &breakerRegistry{
		threshold:   threshold,
		openTimeout: openTimeout,
		now:         now,
		byName:      make(map[string]*breaker, 4),
	}
}

func (r *breakerRegistry) get(name string) *breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.byName[name]; ok {
		return b
	}

	b := &breaker{now: r.now}
	threshold := uint32(r.threshold)
	b.cb = gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     r.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("tool", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
			if to == gobreaker.StateHalfOpen {
				b.mu.Lock()
				b.failures = 0
				b.mu.Unlock()
			}
		},
	})
	r.byName[name] = b
	return b
}

// allow admits one call. The returned done must be called exactly once.
func (b *breaker) allow() (func(success bool), error) {
	done, err := b.cb.Allow()
	if err != nil {
		return nil, err
	}
	return func(success bool) {
		b.mu.Lock()
		if success {
			b.failures = 0
		} else {
			b.failures++
			b.lastFailure = b.now().UTC()
		}
		b.mu.Unlock()
		done(success)
	}, nil
}

func (b *breaker) state() BreakerState {
	// State may move open -> half-open, which re-enters b.mu via OnStateChange.
	open := b.cb.State() == gobreaker.StateOpen

	b.mu.Lock()
	defer b.mu.Unlock()
	out := BreakerState{FailureCount: b.failures, IsOpen: open}
	if !b.lastFailure.IsZero() {
		t := b.lastFailure
		out.LastFailureTime = &t
	}
	return out
}
