package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	nodex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/nodes/orchestrator"
	statex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/state"
)

const FallbackReply = "Sorry, something went wrong on my side. Please try again."

type Option func(*Orchestrator)

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs one request/response cycle per call. Turns of the
// same session are serialized; different sessions run concurrently.
type Orchestrator struct {
	store      *statex.Store
	classifier nodex.Classifier
	tools      nodex.Tools
	cfg        Config

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store *statex.Store,
	classifier nodex.Classifier,
	tools nodex.Tools,
	cfg Config,
	opts ...Option,
) (*Orchestrator, error) {
	if store == nil {
		return nil, errors.New("memory store is required")
	}
	if classifier == nil {
		return nil, errors.New("intent classifier is required")
	}
	if tools == nil {
		return nil, errors.New("tool gateway is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		store:      store,
		classifier: classifier,
		tools:      tools,
		cfg:        cfg,
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	graphRunner, err := o.compileHandleTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// HandleTurn only fails on an invalid request. Any other failure ends in a
// fallback reply.
func (o *Orchestrator) HandleTurn(ctx context.Context, sessionID string, req contractx.TurnRequest) (contractx.TurnResult, error) {
	in := nodex.GraphInput{SessionID: sessionID, Request: req}
	st, err := nodex.ValidateRequest(in, o.now)
	if err != nil {
		return contractx.TurnResult{}, err
	}
	sessionID = st.SessionID

	unlock, err := o.store.LockSession(sessionID)
	if err != nil {
		return contractx.TurnResult{}, err
	}
	defer unlock()

	start := o.now()
	out, err := o.graphRunner.Invoke(ctx, in)
	if err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("turn graph failed")
		return o.fallback(sessionID), nil
	}

	res := out.Result
	log.Info().
		Str("session_id", sessionID).
		Str("intent", string(res.Intent)).
		Int("tool_calls", len(res.ToolCalls)).
		Int("history_length", res.Memory.HistoryLength).
		Dur("elapsed", o.now().Sub(start)).
		Msg("turn handled")
	return res, nil
}

func (o *Orchestrator) fallback(sessionID string) contractx.TurnResult {
	summary, _ := o.store.Summarize(sessionID)
	return contractx.TurnResult{
		Response: FallbackReply,
		Intent:   contractx.IntentGeneralChat,
		Memory:   summary,
	}
}
