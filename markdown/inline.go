package markdown

import "regexp"

// InlineRule is a single substitution of the inline formatter: every
// non-overlapping shortest match of Pattern is replaced with Template
// (regexp expansion syntax).
type InlineRule struct {
	Name     string
	Pattern  *regexp.Regexp
	Template string
}

// Order matters: each rule works on the output of the previous one, bold
// must consume "**" pairs before italic sees single stars.
var inlineRules = [...]InlineRule{
	{Name: "bold", Pattern: regexp.MustCompile(`\*\*(.*?)\*\*`), Template: "<strong>${1}</strong>"},
	{Name: "italic", Pattern: regexp.MustCompile(`\*(.*?)\*`), Template: "<em>${1}</em>"},
	{Name: "strikethrough", Pattern: regexp.MustCompile(`~~(.*?)~~`), Template: "<s>${1}</s>"},
	{Name: "link", Pattern: regexp.MustCompile(`\[(.*?)\]\((.*?)\)`), Template: `<a href="${2}">${1}</a>`},
}

// InlineRules returns a copy of the inline rule table in application order.
func InlineRules() []InlineRule {
	return append([]InlineRule(nil), inlineRules[:]...)
}

// FormatInline applies all inline rules to a single line.
func FormatInline(line string) string {
	for i := range inlineRules {
		line = inlineRules[i].Pattern.ReplaceAllString(line, inlineRules[i].Template)
	}
	return line
}
