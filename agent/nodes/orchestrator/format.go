package orchestratornode

import (
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
	slotsx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/slots"
	toolx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/tool"
)

const productDisplayLimit = 3

func FormatCalculator(out contractx.ToolOutput) string {
	if out.Success {
		if v, ok := out.Result.(float64); ok {
			return fmt.Sprintf("The answer is %s.", toolx.FormatNumber(v))
		}
		return fmt.Sprintf("The answer is %v.", out.Result)
	}
	if out.Cause == nil && out.Error != "" {
		// the calculator understood the request but rejected it
		return fmt.Sprintf("Sorry, I couldn't calculate that: %s.", strings.TrimRight(out.Error, "."))
	}
	return apology(out, "I couldn't calculate that.")
}

func FormatProducts(out contractx.ToolOutput) string {
	if !out.Success {
		return apology(out, "I couldn't search for products.")
	}

	resp, _ := out.Result.(contractx.ProductSearchResponse)
	if len(resp.Results) == 0 {
		return "I couldn't find any products matching your search."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d product(s):\n", len(resp.Results))
	for i, p := range resp.Results {
		if i == productDisplayLimit {
			break
		}
		fmt.Fprintf(&b, "%d. %s", i+1, orUnknown(p.Name))
		if p.Price != "" {
			fmt.Fprintf(&b, " - %s", p.Price)
		}
		b.WriteString("\n")
	}
	if s := strings.TrimSpace(resp.Summary); s != "" {
		fmt.Fprintf(&b, "\n%s", s)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatOutlets answers an outlet lookup: one outlet in a sentence, a short
// list with a disambiguation prompt, or a request to narrow a long one.
func FormatOutlets(outlets []contractx.Outlet, cfg ReplyConfig) string {
	switch n := len(outlets); {
	case n == 0:
		return "I couldn't find any outlets matching your search."
	case n == 1:
		return describeOutlet(outlets[0])
	case cfg.NarrowingCap > 0 && n > cfg.NarrowingCap:
		return fmt.Sprintf("I found %d outlets. Please add a location, such as a district or area, so I can narrow them down.", n)
	}

	limit := len(outlets)
	if cfg.DisplayCap > 0 && limit > cfg.DisplayCap {
		limit = cfg.DisplayCap
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I found %d outlets:\n", len(outlets))
	for i, o := range outlets[:limit] {
		fmt.Fprintf(&b, "%d. %s — %s\n", i+1, orUnknown(o.Name), orUnknownLocation(o.Location))
	}
	if rest := len(outlets) - limit; rest > 0 {
		fmt.Fprintf(&b, "...and %d more.\n", rest)
	}
	b.WriteString("\nWhich outlet are you referring to?")
	return b.String()
}

// FormatFollowup answers a question about one known outlet.
func FormatFollowup(o contractx.Outlet, kind contractx.Followup) string {
	name := orUnknown(o.Name)
	hours := strings.TrimSpace(o.Hours)

	switch kind {
	case contractx.FollowupOpenTime:
		if open, _, ok := slotsx.SplitHours(hours); ok {
			return fmt.Sprintf("%s opens at %s.", name, open)
		}
	case contractx.FollowupCloseTime:
		if _, closing, ok := slotsx.SplitHours(hours); ok {
			return fmt.Sprintf("%s closes at %s.", name, closing)
		}
	case contractx.FollowupServices:
		if s := strings.TrimSpace(o.Services); s != "" {
			return fmt.Sprintf("%s offers: %s.", name, strings.TrimRight(s, "."))
		}
		return fmt.Sprintf("I don't have service details for %s.", name)
	case contractx.FollowupLocation:
		return fmt.Sprintf("%s is located at %s.", name, orUnknownLocation(o.Location))
	}

	if hours == "" {
		return fmt.Sprintf("I don't have opening hours for %s.", name)
	}
	return fmt.Sprintf("%s is open %s.", name, hours)
}

func FormatNotFound(reference string) string {
	return fmt.Sprintf("Sorry, I couldn't find information about '%s'.", reference)
}

func describeOutlet(o contractx.Outlet) string {
	s := fmt.Sprintf("%s is located at %s", orUnknown(o.Name), orUnknownLocation(o.Location))
	if h := strings.TrimSpace(o.Hours); h != "" {
		s += fmt.Sprintf(" and is open %s", h)
	}
	return s + "."
}

// apology turns a failed tool output into a user-facing reply. An open
// circuit is reported as temporary unavailability.
func apology(out contractx.ToolOutput, fallback string) string {
	if errors.Is(out.Cause, contractx.ErrCircuitOpen) {
		return "Sorry, " + out.Error
	}
	return "Sorry, " + fallback
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func orUnknownLocation(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown location"
	}
	return s
}
