package outletdb

import (
	"strings"
)

type searchPlan struct {
	All     bool
	Columns []string
	Terms   []string
}

var listQueries = map[string]bool{
	"all": true, "list": true, "all outlets": true, "every outlet": true, "everything": true,
}

var districtAliases = []struct {
	name  string
	alias string
}{
	{"Petaling Jaya", "pj"},
	{"Kuala Lumpur", "kl"},
	{"Selangor", ""},
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// planSearch maps a lookup query onto columns and ILIKE terms. Known
// districts and their abbreviations search district and location; anything
// else is matched against name, location and district.
func planSearch(query string) searchPlan {
	q := strings.Join(strings.Fields(query), " ")
	lower := strings.ToLower(q)
	if lower == "" || listQueries[lower] {
		return searchPlan{All: true}
	}

	words := strings.Fields(strings.Trim(lower, "?.!,"))
	for _, d := range districtAliases {
		if strings.Contains(lower, strings.ToLower(d.name)) || (d.alias != "" && hasWord(words, d.alias)) {
			terms := []string{d.name}
			if d.alias != "" {
				terms = append(terms, strings.ToUpper(d.alias))
			}
			return searchPlan{Columns: []string{"district", "location"}, Terms: terms}
		}
	}

	return searchPlan{Columns: []string{"name", "location", "district"}, Terms: []string{q}}
}

func hasWord(words []string, w string) bool {
	for _, x := range words {
		if x == w {
			return true
		}
	}
	return false
}

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
