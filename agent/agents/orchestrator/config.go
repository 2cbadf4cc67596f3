package orchestrator

import (
	"fmt"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	nodex "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/nodes/orchestrator"
)

type Config struct {
	DisplayCap   int `envconfig:"DISPLAY_CAP" split_words:"true" default:"15"`
	NarrowingCap int `envconfig:"NARROWING_CAP" split_words:"true" default:"20"`
	ProductTopK  int `envconfig:"PRODUCT_TOP_K" split_words:"true" default:"3"`
}

func DefaultConfig() Config {
	d := nodex.DefaultReplyConfig()
	return Config{DisplayCap: d.DisplayCap, NarrowingCap: d.NarrowingCap, ProductTopK: d.ProductTopK}
}

func (c Config) Validate() error {
	if c.DisplayCap <= 0 {
		return fmt.Errorf("%w: display cap must be > 0", contractx.ErrValidation)
	}
	if c.NarrowingCap < c.DisplayCap {
		return fmt.Errorf("%w: narrowing cap must be >= display cap", contractx.ErrValidation)
	}
	if c.ProductTopK <= 0 {
		return fmt.Errorf("%w: product top_k must be > 0", contractx.ErrValidation)
	}
	return nil
}

func (c Config) reply() nodex.ReplyConfig {
	return nodex.ReplyConfig{DisplayCap: c.DisplayCap, NarrowingCap: c.NarrowingCap, ProductTopK: c.ProductTopK}
}
