package tool

import (
	"fmt"
	"time"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

type Config struct {
	Timeout          time.Duration `envconfig:"TIMEOUT" default:"3s"`
	MaxRetries       int           `envconfig:"MAX_RETRIES" split_words:"true" default:"1"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" split_words:"true" default:"0s"`
	FailureThreshold int           `envconfig:"FAILURE_THRESHOLD" split_words:"true" default:"3"`
	OpenTimeout      time.Duration `envconfig:"OPEN_TIMEOUT" split_words:"true" default:"60s"`
}

func DefaultConfig() Config {
	return Config{
		Timeout:          3 * time.Second,
		MaxRetries:       1,
		FailureThreshold: 3,
		OpenTimeout:      60 * time.Second,
	}
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: tool timeout must be > 0", contractx.ErrValidation)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: tool max retries must be >= 0", contractx.ErrValidation)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("%w: tool retry delay must be >= 0", contractx.ErrValidation)
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("%w: breaker failure threshold must be > 0", contractx.ErrValidation)
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("%w: breaker open timeout must be > 0", contractx.ErrValidation)
	}
	return nil
}
