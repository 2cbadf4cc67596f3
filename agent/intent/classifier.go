// Package intent maps an utterance and the session memory to an intent,
// its slots and the slots still missing.
//
// Classification runs in three stages: the reset and follow-up rules, an
// optional external completion backend, then the keyword rules. Any
// failure of the external stage falls through to the keyword rules.
package intent

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

type Option func(*Classifier)

// WithCompleter enables the external stage.
func WithCompleter(c contractx.Completer, systemPrompt string) Option {
	return func(cl *Classifier) {
		cl.completer = c
		cl.systemPrompt = systemPrompt
	}
}

// WithExternalTimeout bounds a single external classification call.
func WithExternalTimeout(d time.Duration) Option {
	return func(cl *Classifier) {
		cl.externalTimeout = d
	}
}

type Classifier struct {
	leading  []Rule
	trailing []Rule

	completer       contractx.Completer
	systemPrompt    string
	externalTimeout time.Duration
}

func New(opts ...Option) *Classifier {
	c := &Classifier{
		leading:  []Rule{ResetRule{}, FollowupRule{}},
		trailing: []Rule{CalculatorRule{}, ProductRule{}, OutletRule{}},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Analyze never fails; without a completer it is fully deterministic.
func (c *Classifier) Analyze(ctx context.Context, text string, mem *statex.Memory) contractx.IntentResult {
	in := NewInput(text, mem)

	if res, ok := matchFirst(c.leading, in); ok {
		return res
	}

	if c.completer != nil {
		res, err := c.tryExternalClassify(ctx, in)
		if err == nil {
			return res
		}
		ev := log.Debug().Err(err)
		if !errors.Is(err, contractx.ErrClassificationFallback) {
			ev = log.Warn().Err(err)
		}
		ev.Msg("external classification discarded")
	}

	if res, ok := matchFirst(c.trailing, in); ok {
		return res
	}
	return generalResult()
}

func matchFirst(rules []Rule, in Input) (contractx.IntentResult, bool) {
	for _, r := range rules {
		if res, ok := r.Match(in); ok {
			log.Debug().Str("rule", r.Name()).Str("intent", string(res.Intent)).Msg("intent rule matched")
			return res, true
		}
	}
	return contractx.IntentResult{}, false
}
