package slots

import (
	"regexp"
	"strings"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

var (
	openPattern       = regexp.MustCompile(`\bopen(?:s|ing|ed)?\b`)
	closePattern      = regexp.MustCompile(`\bclos(?:e|es|ing|ed)\b`)
	hoursPattern      = regexp.MustCompile(`\b(?:hours?|operating|time|times|schedule)\b`)
	openingHourPhrase = regexp.MustCompile(`\b(?:opening|open|operating|business)\s+(?:hours?|times?)\b`)
	servicesPattern   = regexp.MustCompile(`(?i)\b(?:services?|facilit(?:y|ies)|amenit(?:y|ies)|dine[- ]in|drive[- ]thru|delivery|wifi|wi-fi)\b`)
	locationPattern   = regexp.MustCompile(`\b(?:address|where is|where's|located|location|directions?)\b`)

	referenceNoisePattern = regexp.MustCompile(
		`(?i)\b(?:what's|whats|what|when|which|does|do|did|is|it's|its|it|the|a|an|time|times|hours?|opening|opens|open|closing|closes|close|services?|offer|offers|have|has|address|located|location|where's|where|outlet|branch|store|one|please|tell|me|about|at|for|of|in|there|they|this|that|today|tonight|until|till|and|how|get|are|was|will|can|could|you|your|i|my|on|to|from|by|usually|now|still)\b`,
	)
	prepositionReferencePattern = regexp.MustCompile(
		`(?i)\b(?:at|for|of|in)\s+(?:the\s+)?(.+?)(?:\s+(?:outlet|branch|store|one))?\s*(?:[?.!,]|$)`,
	)
	codeReferencePattern = regexp.MustCompile(`(?i)\b([a-z]{1,5})\s?(\d{1,3}[a-z]?)\b`)
	codeStopwords        = map[string]bool{
		"at": true, "by": true, "to": true, "in": true, "on": true, "is": true, "it": true,
		"of": true, "am": true, "pm": true, "for": true, "and": true, "till": true, "until": true,
	}

	hoursSeparatorPattern = regexp.MustCompile(`\s*[-–—]\s*`)
	hoursLabelPattern     = regexp.MustCompile(`^[A-Za-z][A-Za-z ,\-–]*:\s*`)
	openPrefixes          = []string{"opens at", "open at", "opens from", "open from", "opens", "open", "from"}
	closePrefixes         = []string{"closes at", "close at", "closes", "close", "until", "till", "to"}
)

// DetectFollowup reports which attribute of a known outlet text asks about.
// Time questions take precedence over services and location.
func DetectFollowup(text string) (contractx.Followup, bool) {
	lower := Normalize(text)
	hasOpen := openPattern.MatchString(lower)
	hasClose := closePattern.MatchString(lower)

	switch {
	case hasOpen && hasClose:
		return contractx.FollowupHours, true
	case openingHourPhrase.MatchString(lower), strings.Contains(lower, "opening time"):
		return contractx.FollowupHours, true
	case hasClose:
		return contractx.FollowupCloseTime, true
	case hasOpen:
		return contractx.FollowupOpenTime, true
	case hoursPattern.MatchString(lower):
		return contractx.FollowupHours, true
	case servicesPattern.MatchString(lower):
		return contractx.FollowupServices, true
	case locationPattern.MatchString(lower):
		return contractx.FollowupLocation, true
	default:
		return "", false
	}
}

// OutletReferences lists candidate outlet references in text, most specific
// first: the lead segment before a comma, a prepositional phrase, a short
// area code (e.g. "SS 2"), then whatever is left once question words are gone.
func OutletReferences(text string) []string {
	text = strings.ReplaceAll(text, "’", "'")
	var out []string
	seen := make(map[string]bool, 4)
	add := func(candidate string) {
		candidate = cleanReference(candidate)
		key := strings.ToLower(candidate)
		if len(candidate) < MinValueLength || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, candidate)
	}

	if idx := strings.Index(text, ","); idx > 0 {
		lead := text[:idx]
		if _, ok := DetectFollowup(lead); !ok {
			add(lead)
		}
	}
	if m := prepositionReferencePattern.FindStringSubmatch(text); len(m) == 2 {
		add(m[1])
	}
	for _, m := range codeReferencePattern.FindAllStringSubmatch(text, -1) {
		if codeStopwords[strings.ToLower(m[1])] {
			continue
		}
		add(m[0])
	}
	add(text)
	return out
}

func cleanReference(s string) string {
	s = servicesPattern.ReplaceAllString(s, " ")
	return cleanup(referenceNoisePattern.ReplaceAllString(s, " "))
}

// SplitHours splits a free-text hours string such as "Opens 8:00 AM – Closes
// 10:00 PM" into its opening and closing parts.
func SplitHours(hours string) (string, string, bool) {
	hours = strings.TrimSpace(hoursLabelPattern.ReplaceAllString(strings.TrimSpace(hours), ""))
	parts := hoursSeparatorPattern.Split(hours, 2)
	if len(parts) != 2 {
		return "", "", false
	}

	open := stripPrefixes(parts[0], openPrefixes)
	closing := stripPrefixes(parts[1], closePrefixes)
	if open == "" || closing == "" {
		return "", "", false
	}
	return open, closing, true
}

func stripPrefixes(s string, prefixes []string) string {
	s = strings.TrimSpace(s)
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p+" ") || strings.HasPrefix(lower, p+":") {
			return strings.TrimSpace(strings.TrimLeft(s[len(p):], ": "))
		}
	}
	return s
}
