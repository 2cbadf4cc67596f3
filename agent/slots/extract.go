// Package slots pulls slot values out of raw user text. Every function here is
// pure and safe for concurrent use.
package slots

import (
	"regexp"
	"strings"
)

// MinValueLength is the shortest extracted value treated as present.
const MinValueLength = 3

const (
	AllProductsQuery = "all products"
	AllOutletsQuery  = "all"
)

var (
	numericExpressionPattern = regexp.MustCompile(
		`\(?\s*-?\d+(?:\.\d+)?(?:\s*(?:\*\*|//|[+\-*/%^×÷])\s*\(?\s*-?\d+(?:\.\d+)?\s*\)?)+`,
	)
	calculatorTriggerPattern = regexp.MustCompile(`\b(?:calculate|compute|what is|what's|whats|math|arithmetic)\b`)
	expressionTailPattern    = regexp.MustCompile(`(?i)\b(?:calculate|compute|what is|what's|whats)\s+(.+)`)

	operatorWords = []struct {
		pattern *regexp.Regexp
		symbol  string
	}{
		{regexp.MustCompile(`(?i)\bto the power of\b`), "**"},
		{regexp.MustCompile(`(?i)\bmultiplied by\b`), "*"},
		{regexp.MustCompile(`(?i)\bdivided by\b`), "/"},
		{regexp.MustCompile(`(?i)\btimes\b`), "*"},
		{regexp.MustCompile(`(?i)\bplus\b`), "+"},
		{regexp.MustCompile(`(?i)\bminus\b`), "-"},
		{regexp.MustCompile(`(?i)\bmod(?:ulo)?\b`), "%"},
	}

	productTriggerPattern = regexp.MustCompile(
		`\b(?:products?|items?|merchandise|buy|purchase|tumblers?|mugs?|bottles?|drinkware|cups?|flasks?)\b`,
	)
	productStripPattern = regexp.MustCompile(
		`(?i)\b(?:show|find|search|searching|looking for|what|do you have|can you|i want|please|me|for|any|products?|items?)\b`,
	)
	allProductsPhrases = []string{
		"show products", "show me products", "show all products", "show me all products",
		"all products", "list products", "list all products", "what products", "which products",
		"any products", "products available", "available products",
	}

	outletTriggerPattern = regexp.MustCompile(
		`\b(?:outlets?|locations?|stores?|branch(?:es)?|where|near|nearby|nearest|find)\b`,
	)
	outletStripPattern = regexp.MustCompile(
		`(?i)\b(?:find|show|list|where|are|is|there|any|the|me|please|outlets?|locations?|stores?|branch(?:es)?)\b`,
	)
	leadingPrepositionPattern = regexp.MustCompile(`(?i)^(?:(?:located|located in|in|at|near|around|within|from)\s+)+`)
	allOutletsPhrases         = []string{
		"near me", "nearby", "all outlets", "all locations", "all stores", "all branches",
		"list outlets", "show outlets", "show all outlets", "every outlet",
	}

	// Known districts served by the outlet service, lower case.
	districts = []string{
		"petaling jaya", "kuala lumpur", "selangor", "subang jaya", "subang", "shah alam",
		"cheras", "bangsar", "damansara", "puchong", "klang", "ampang", "mont kiara",
		"kepong", "setapak", "cyberjaya", "putrajaya", "seri kembangan", "kajang", "bukit jalil",
	}
	districtAbbrevPattern = regexp.MustCompile(`\b(?:pj|kl|ss\s?\d+|usj\s?\d+)\b`)
	districtAliases       = map[string]string{
		"pj": "Petaling Jaya",
		"kl": "Kuala Lumpur",
	}

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// Normalize lower-cases text and folds typographic apostrophes.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "’", "'")
	return strings.ToLower(strings.TrimSpace(text))
}

// IsCalculation reports whether text looks like an arithmetic request.
func IsCalculation(text string) bool {
	lower := Normalize(replaceOperatorWords(text))
	return numericExpressionPattern.MatchString(lower) || calculatorTriggerPattern.MatchString(lower)
}

// ExtractExpression returns the arithmetic expression in text or "".
// A numeric-operator run wins over the text following a trigger word.
func ExtractExpression(text string) string {
	norm := replaceOperatorWords(strings.ReplaceAll(text, "’", "'"))
	if m := numericExpressionPattern.FindString(norm); m != "" {
		return present(balanceParens(strings.TrimSpace(m)))
	}
	if m := expressionTailPattern.FindStringSubmatch(norm); len(m) == 2 {
		return present(trimPunctuation(m[1]))
	}
	return ""
}

// IsProductRequest reports whether text mentions products or a product category.
func IsProductRequest(text string) bool {
	return productTriggerPattern.MatchString(Normalize(text))
}

// ExtractProductQuery strips trigger words; catalogue-wide phrases collapse
// to AllProductsQuery.
func ExtractProductQuery(text string) string {
	lower := Normalize(trimPunctuation(text))
	for _, phrase := range allProductsPhrases {
		if strings.Contains(lower, phrase) {
			return AllProductsQuery
		}
	}
	return present(cleanup(productStripPattern.ReplaceAllString(text, " ")))
}

// IsOutletRequest reports whether text asks about outlets or names a district.
func IsOutletRequest(text string) bool {
	lower := Normalize(text)
	if outletTriggerPattern.MatchString(lower) || districtAbbrevPattern.MatchString(lower) {
		return true
	}
	for _, d := range districts {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// ExtractLocationQuery strips trigger words; "near me" style phrases
// collapse to AllOutletsQuery.
func ExtractLocationQuery(text string) string {
	lower := Normalize(trimPunctuation(text))
	for _, phrase := range allOutletsPhrases {
		if strings.Contains(lower, phrase) {
			return AllOutletsQuery
		}
	}

	q := cleanup(outletStripPattern.ReplaceAllString(text, " "))
	q = cleanup(leadingPrepositionPattern.ReplaceAllString(q, ""))
	if alias, ok := districtAliases[strings.ToLower(q)]; ok {
		return alias
	}
	return present(q)
}

func replaceOperatorWords(text string) string {
	for _, w := range operatorWords {
		text = w.pattern.ReplaceAllString(text, w.symbol)
	}
	return text
}

func balanceParens(s string) string {
	open := strings.Count(s, "(")
	closed := strings.Count(s, ")")
	for ; open > closed && strings.HasPrefix(s, "("); open-- {
		s = strings.TrimSpace(s[1:])
	}
	for ; closed > open && strings.HasSuffix(s, ")"); closed-- {
		s = strings.TrimSpace(s[:len(s)-1])
	}
	return s
}

func trimPunctuation(s string) string {
	return strings.Trim(strings.TrimSpace(s), " ?!.,;:'\"")
}

func cleanup(s string) string {
	return trimPunctuation(whitespacePattern.ReplaceAllString(s, " "))
}

func present(s string) string {
	if len(strings.TrimSpace(s)) < MinValueLength {
		return ""
	}
	return strings.TrimSpace(s)
}
