package css

import (
	"bytes"
	"io"
	"strings"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// Rule is a ruleset: group of selectors sharing declarations.
type Rule struct {
	Selectors    []string
	Declarations []Declaration
}

// Get returns value of the last declaration of property, later declarations
// override earlier ones.
func (r Rule) Get(property string) (string, bool) {
	for i := len(r.Declarations) - 1; i >= 0; i-- {
		if strings.EqualFold(r.Declarations[i].Property, property) {
			return r.Declarations[i].Value, true
		}
	}
	return "", false
}

// AtRule is an @-rule. Conditional rules (@media, @supports) carry nested
// rules, descriptor rules (@font-face, @page) carry declarations, statement
// rules (@import, @charset) carry only prelude.
type AtRule struct {
	Name         string
	Prelude      string
	Block        bool
	Rules        []Rule
	Declarations []Declaration
}

// Item is a top level stylesheet entry, exactly one field is set.
type Item struct {
	Rule   *Rule
	AtRule *AtRule
}

// Stylesheet keeps parsed items in source order.
type Stylesheet struct {
	Items    []Item
	Imports  []string
	Warnings []string
}

// Rules returns top level rules.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, it := range s.Items {
		if it.Rule != nil {
			rules = append(rules, *it.Rule)
		}
	}
	return rules
}

// RulesBySelector returns top level rules listing selector.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var rules []Rule
	for _, r := range s.Rules() {
		for _, sel := range r.Selectors {
			if sel == selector {
				rules = append(rules, r)
				break
			}
		}
	}
	return rules
}

// String returns normalized CSS text.
func (s *Stylesheet) String() string {
	var buf bytes.Buffer
	_, _ = s.WriteTo(&buf)
	return buf.String()
}

// WriteTo writes normalized CSS: one declaration per line, two spaces indent,
// items in source order.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	for i, it := range s.Items {
		if i > 0 {
			sb.WriteByte('\n')
		}
		switch {
		case it.Rule != nil:
			writeRule(&sb, "", *it.Rule)
		case it.AtRule != nil:
			writeAtRule(&sb, it.AtRule)
		}
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func writeRule(sb *strings.Builder, indent string, r Rule) {
	sb.WriteString(indent)
	sb.WriteString(strings.Join(r.Selectors, ", "))
	sb.WriteString(" {\n")
	writeDeclarations(sb, indent+"  ", r.Declarations)
	sb.WriteString(indent)
	sb.WriteString("}\n")
}

func writeDeclarations(sb *strings.Builder, indent string, decls []Declaration) {
	for _, d := range decls {
		sb.WriteString(indent)
		sb.WriteString(d.Property)
		sb.WriteString(": ")
		sb.WriteString(d.Value)
		if d.Important {
			sb.WriteString(" !important")
		}
		sb.WriteString(";\n")
	}
}

func writeAtRule(sb *strings.Builder, ar *AtRule) {
	sb.WriteString(ar.Name)
	if strings.EqualFold(ar.Name, "@import") {
		sb.WriteString(` url("`)
		sb.WriteString(cssEscapeDoubleQuoted(importURL(ar.Prelude)))
		sb.WriteString("\");\n")
		return
	}
	if len(ar.Prelude) > 0 {
		sb.WriteByte(' ')
		sb.WriteString(ar.Prelude)
	}
	if !ar.Block {
		sb.WriteString(";\n")
		return
	}
	sb.WriteString(" {\n")
	writeDeclarations(sb, "  ", ar.Declarations)
	for _, r := range ar.Rules {
		writeRule(sb, "  ", r)
	}
	sb.WriteString("}\n")
}

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// importURL extracts location from @import prelude: "x", 'x', url(x) or
// url("x"). Media list after location is dropped.
func importURL(prelude string) string {
	s := strings.TrimSpace(prelude)
	if rest, ok := strings.CutPrefix(strings.ToLower(s), "url("); ok {
		if end := strings.IndexByte(rest, ')'); end >= 0 {
			return unquote(s[4 : 4+end])
		}
		return unquote(s[4:])
	}
	if len(s) > 0 && (s[0] == '"' || s[0] == '\'') {
		if end := strings.IndexByte(s[1:], s[0]); end >= 0 {
			return s[1 : 1+end]
		}
	}
	if sp := strings.IndexByte(s, ' '); sp > 0 {
		return s[:sp]
	}
	return s
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
