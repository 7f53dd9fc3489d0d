// Package css parses stylesheets embedded into generated pages.
package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// maxErrors limits consecutive parse errors before giving up on input.
const maxErrors = 16

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css")}
}

// parseState is per call state, Parser itself is reusable.
type parseState struct {
	*Parser
	p      *css.Parser
	sheet  *Stylesheet
	source string
	fails  int
}

// Parse parses CSS text into a Stylesheet. Problems are collected in
// Stylesheet.Warnings, parsing never fails.
// The optional source parameter identifies what's being parsed.
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	st := &parseState{
		Parser: p,
		p:      css.NewParser(parse.NewInput(bytes.NewReader(data)), false),
		sheet:  &Stylesheet{},
	}
	if len(source) > 0 && source[0] != "" {
		st.source = source[0]
		p.log.Debug("Parsing CSS", zap.String("source", st.source), zap.Int("bytes", len(data)))
	}

	for {
		gt, _, data := st.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if st.failed() {
				return st.sheet
			}
			continue

		case css.AtRuleGrammar:
			ar := &AtRule{Name: strings.ToLower(string(data)), Prelude: joinTokens(st.p.Values())}
			if ar.Name == "@import" {
				url := importURL(ar.Prelude)
				if url == "" {
					st.warn("empty @import ignored")
					break
				}
				st.sheet.Imports = append(st.sheet.Imports, url)
				p.log.Debug("Parsed @import", zap.String("url", url))
			}
			st.sheet.Items = append(st.sheet.Items, Item{AtRule: ar})

		case css.BeginAtRuleGrammar:
			ar := &AtRule{Name: strings.ToLower(string(data)), Prelude: joinTokens(st.p.Values()), Block: true}
			if st.parseAtRuleBlock(ar) {
				st.sheet.Items = append(st.sheet.Items, Item{AtRule: ar})
			}

		case css.BeginRulesetGrammar:
			if r, ok := st.parseRuleset(data); ok {
				st.sheet.Items = append(st.sheet.Items, Item{Rule: r})
			}

		case css.TokenGrammar:
			st.warn(fmt.Sprintf("unexpected token %q", string(data)))
		}
		st.fails = 0
	}
}

// failed records current parser error and reports whether parsing should
// stop.
func (st *parseState) failed() bool {
	err := st.p.Err()
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	st.warn(err.Error())
	st.fails++
	return st.fails >= maxErrors
}

func (st *parseState) warn(msg string) {
	if st.source != "" {
		msg = st.source + ": " + msg
	}
	st.sheet.Warnings = append(st.sheet.Warnings, msg)
	st.log.Debug("CSS problem", zap.String("problem", msg))
}

// parseRuleset reads declarations up to the end of ruleset. Rulesets without
// usable selectors are dropped.
func (st *parseState) parseRuleset(data []byte) (*Rule, bool) {
	r := &Rule{Selectors: splitSelectors(data, st.p.Values())}
	var ok bool
	r.Declarations, ok = st.parseDeclarations(css.EndRulesetGrammar)
	if len(r.Selectors) == 0 {
		st.warn("ruleset without selector ignored")
		return nil, false
	}
	return r, ok
}

// parseAtRuleBlock reads block contents of at-rule. Nested at-rules are not
// supported and skipped.
func (st *parseState) parseAtRuleBlock(ar *AtRule) bool {
	for {
		gt, _, data := st.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if st.failed() {
				return len(ar.Rules) > 0 || len(ar.Declarations) > 0
			}
			continue
		case css.EndAtRuleGrammar:
			return true
		case css.DeclarationGrammar:
			if d, ok := st.declaration(data); ok {
				ar.Declarations = append(ar.Declarations, d)
			}
		case css.BeginRulesetGrammar:
			if r, ok := st.parseRuleset(data); ok {
				ar.Rules = append(ar.Rules, *r)
			}
		case css.BeginAtRuleGrammar:
			st.warn("nested " + string(data) + " is not supported")
			st.skipBlock()
		case css.TokenGrammar:
			// body of unknown at-rule, keep it out of output
			st.warn(fmt.Sprintf("unsupported at-rule %s", ar.Name))
			st.skipBlock()
			return false
		}
		st.fails = 0
	}
}

// parseDeclarations collects declarations until end grammar.
func (st *parseState) parseDeclarations(end css.GrammarType) ([]Declaration, bool) {
	var decls []Declaration
	for {
		gt, _, data := st.p.Next()
		switch gt {
		case end:
			return decls, true
		case css.ErrorGrammar:
			if st.failed() {
				return decls, len(decls) > 0
			}
			continue
		case css.DeclarationGrammar:
			if d, ok := st.declaration(data); ok {
				decls = append(decls, d)
			}
		case css.CustomPropertyGrammar:
			decls = append(decls, Declaration{Property: string(data), Value: strings.TrimSpace(joinTokens(st.p.Values()))})
		}
		st.fails = 0
	}
}

func (st *parseState) declaration(name []byte) (Declaration, bool) {
	d := Declaration{Property: strings.ToLower(string(name))}
	value := joinTokens(st.p.Values())
	d.Value, d.Important = cutImportant(value)
	if d.Value == "" {
		st.warn(fmt.Sprintf("empty value for %q ignored", d.Property))
		return d, false
	}
	return d, true
}

// skipBlock skips tokens until the matching end of current block.
func (st *parseState) skipBlock() {
	depth := 1
	for depth > 0 {
		gt, _, _ := st.p.Next()
		switch gt {
		case css.ErrorGrammar:
			if st.failed() {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// joinTokens builds text from tokens collapsing whitespace and dropping
// comments.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

// splitSelectors splits selector list on top level commas.
func splitSelectors(data []byte, values []css.Token) []string {
	var (
		selectors []string
		current   []css.Token
		depth     int
	)
	if len(data) > 0 {
		current = append(current, css.Token{TokenType: css.IdentToken, Data: data})
	}
	flush := func() {
		if s := joinTokens(current); s != "" {
			selectors = append(selectors, s)
		}
		current = current[:0]
	}
	for _, t := range values {
		switch t.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth--
		case css.CommaToken:
			if depth == 0 {
				flush()
				continue
			}
		}
		current = append(current, t)
	}
	flush()
	return selectors
}

// cutImportant strips "!important" suffix.
func cutImportant(value string) (string, bool) {
	v := strings.TrimSpace(value)
	if len(v) < len("important") || !strings.EqualFold(v[len(v)-len("important"):], "important") {
		return v, false
	}
	rest := strings.TrimSpace(v[:len(v)-len("important")])
	if before, ok := strings.CutSuffix(rest, "!"); ok {
		return strings.TrimSpace(before), true
	}
	return v, false
}
