package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	openrouterx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/pkg/openrouter"
)

// Driver selects the completion backend behind the intent classifier.
type Driver string

const (
	DriverNone   Driver = "none"
	DriverEino   Driver = "eino"
	DriverOpenAI Driver = "openai"
)

type Config struct {
	Driver             Driver        `envconfig:"DRIVER" default:"none"`
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"256"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`
}

func (c Config) driver() Driver {
	d := Driver(strings.ToLower(strings.TrimSpace(string(c.Driver))))
	if d == "" {
		return DriverNone
	}
	return d
}

func (c Config) Validate() error {
	switch c.driver() {
	case DriverNone:
		return nil
	case DriverEino, DriverOpenAI:
	default:
		return fmt.Errorf("%w: unknown classifier driver %q", contractx.ErrValidation, c.Driver)
	}

	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: classifier api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: classifier model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouter() openrouterx.Config {
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              strings.TrimSpace(c.Model),
		MaxCompletionToken: c.MaxCompletionToken,
		Temperature:        c.Temperature,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}
