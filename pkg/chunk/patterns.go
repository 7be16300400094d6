package chunk

import "regexp"

// headerRule classifies a single line as a structural section header.
// Rules are evaluated top to bottom; the first match wins.
type headerRule struct {
	name    string
	pattern *regexp.Regexp
}

// headerRules is the ordered table of section header shapes found in
// regulatory documents: numbered sections, clauses, articles, bare numbered
// headings, annexes, and chapters.
var headerRules = []headerRule{
	{
		name:    "section_clause_article",
		pattern: regexp.MustCompile(`^(?:SECTION|Section|CLAUSE|Clause|ARTICLE|Article)\s+\d+(?:\.\d+)*[:.\s]`),
	},
	{
		name:    "numbered_heading",
		pattern: regexp.MustCompile(`^\d+(?:\.\d+)*\s+[A-Z][A-Za-z\s]+$`),
	},
	{
		name:    "annex",
		pattern: regexp.MustCompile(`^(?:ANNEX|Annex)\s+[A-Z]`),
	},
	{
		name:    "chapter",
		pattern: regexp.MustCompile(`^(?:CHAPTER|Chapter)\s+\d+`),
	},
}

var clausePattern = regexp.MustCompile(`\d+(?:\.\d+)*`)

// MatchHeader reports whether line is a structural section header and, if so,
// the clause number embedded in it ("" when the header carries none).
func MatchHeader(line string) (bool, string) {
	for _, rule := range headerRules {
		if rule.pattern.MatchString(line) {
			return true, clausePattern.FindString(line)
		}
	}
	return false, ""
}
