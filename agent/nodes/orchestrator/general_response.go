package orchestratornode

import (
	"fmt"
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

const (
	GreetingReply = "Hello! I'm here to help you with calculations, product searches, and finding outlets. What would you like to do?"
	HelpReply     = `I can help you with:
- Mathematical calculations (e.g., "What's 2 + 2?")
- Searching for products (e.g., "Show me tumblers")
- Finding outlet locations (e.g., "Outlets in Petaling Jaya")

What would you like to do?`
	DefaultReply = "I'm here to help! You can ask me to calculate something, search for products, or find outlet locations. What would you like to do?"
)

var (
	greetingPattern = regexp.MustCompile(`(?i)\b(?:hello|hi|hey|greetings)\b`)
	helpPattern     = regexp.MustCompile(`(?i)\b(?:help|what can you do|capabilities)\b`)
)

func GeneralResponse(in *GraphState) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	in.Reply = GeneralReply(in.Text)
	return in, nil
}

func GeneralReply(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case greetingPattern.MatchString(text):
		return GreetingReply
	case helpPattern.MatchString(text):
		return HelpReply
	default:
		return DefaultReply
	}
}
