package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

// Func is one tool attempt. It should honour ctx; the executor stops
// waiting at the attempt deadline either way.
type Func func(ctx context.Context) (any, error)

type ExecutorOption func(*Executor)

// WithFailureClock sets the clock that stamps BreakerState.LastFailureTime.
// The open-to-half-open wait is timed by gobreaker on the wall clock and
// does not follow it.
func WithFailureClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

type CallOption func(*callSettings)

type callSettings struct {
	timeout    time.Duration
	maxRetries int
}

// WithTimeout overrides the per-attempt deadline of one call.
func WithTimeout(d time.Duration) CallOption {
	return func(s *callSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxRetries overrides how many extra attempts one call may make.
func WithMaxRetries(n int) CallOption {
	return func(s *callSettings) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// Executor runs tool calls with a hard per-attempt timeout, bounded retry
// and a circuit breaker per tool name. It is safe for concurrent use.
type Executor struct {
	cfg      Config
	now      func() time.Time
	breakers *breakerRegistry
}

func NewExecutor(cfg Config, opts ...ExecutorOption) *Executor {
	e := &Executor{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.breakers = newBreakerRegistry(cfg.FailureThreshold, cfg.OpenTimeout, e.now)
	return e
}

// Call runs fn through Invoke and wraps the outcome in a ToolCallRecord.
func (e *Executor) Call(ctx context.Context, name string, input map[string]any, fn Func, opts ...CallOption) contractx.ToolCallRecord {
	return contractx.ToolCallRecord{
		Tool:   name,
		Input:  input,
		Output: e.Invoke(ctx, name, fn, opts...),
	}
}

// Invoke never returns an error; failures are reported in the output.
func (e *Executor) Invoke(ctx context.Context, name string, fn Func, opts ...CallOption) contractx.ToolOutput {
	settings := callSettings{timeout: e.cfg.Timeout, maxRetries: e.cfg.MaxRetries}
	for _, opt := range opts {
		if opt != nil {
			opt(&settings)
		}
	}

	done, err := e.breakers.get(name).allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = contractx.ErrCircuitOpen
		}
		log.Warn().Str("tool", name).Err(err).Msg("tool call rejected")
		return contractx.ToolOutput{
			Error: fmt.Sprintf("%s is temporarily unavailable. Please try again later.", name),
			Cause: contractx.ErrCircuitOpen,
		}
	}

	var (
		result  any
		attempt int
	)
	operation := func() error {
		attempt++
		out, err := runAttempt(ctx, settings.timeout, fn)
		if err != nil {
			log.Warn().Str("tool", name).Int("attempt", attempt).Err(err).Msg("tool attempt failed")
			return err
		}
		result = out
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(e.cfg.RetryDelay), uint64(settings.maxRetries)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		done(false)
		if errors.Is(err, contractx.ErrToolTimeout) {
			log.Error().Str("tool", name).Int("attempts", attempt).Dur("timeout", settings.timeout).Msg("tool timed out")
			return contractx.ToolOutput{
				Error: fmt.Sprintf("%s timed out. Please try again.", name),
				Cause: contractx.ErrToolTimeout,
			}
		}
		log.Error().Str("tool", name).Int("attempts", attempt).Err(err).Msg("tool failed")
		return contractx.ToolOutput{
			Error: fmt.Sprintf("An error occurred while executing %s: %v", name, err),
			Cause: contractx.ErrToolFailure,
		}
	}

	done(true)
	log.Debug().Str("tool", name).Int("attempts", attempt).Msg("tool executed")
	return contractx.ToolOutput{Success: true, Result: result}
}

// BreakerState reports the circuit of name; unknown tools read as closed.
func (e *Executor) BreakerState(name string) BreakerState {
	return e.breakers.get(name).state()
}

type attemptOutcome struct {
	val any
	err error
}

func runAttempt(ctx context.Context, timeout time.Duration, fn Func) (any, error) {
	var (
		attemptCtx context.Context
		cancel     context.CancelFunc
	)
	if timeout > 0 {
		attemptCtx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		attemptCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	ch := make(chan attemptOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- attemptOutcome{err: fmt.Errorf("%w: panic: %v", contractx.ErrToolFailure, r)}
			}
		}()
		v, err := fn(attemptCtx)
		ch <- attemptOutcome{val: v, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil && ctx.Err() == nil && errors.Is(out.err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: after %s", contractx.ErrToolTimeout, timeout)
		}
		return out.val, out.err
	case <-attemptCtx.Done():
		if err := ctx.Err(); err != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("%w: after %s", contractx.ErrToolTimeout, timeout)
	}
}
