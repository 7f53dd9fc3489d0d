package markdown

import "strings"

// Marker is a literal line prefix together with the block type it switches
// the classifier to and the way matching line is turned into block text.
type Marker struct {
	Prefix string
	Type   BlockType
	// Strip removes Prefix from the line before inline formatting.
	Strip bool
	// Open and Close wrap formatted line. When Literal is set it replaces
	// the line altogether.
	Open, Close string
	Literal     string
}

const fence = "```"

// Header markers must stay longest first: "# " is a prefix of every other
// header marker.
var markers = [...]Marker{
	{Prefix: fence, Type: Code},
	{Prefix: "###### ", Type: Header(6), Strip: true, Open: "<h6>", Close: "</h6>"},
	{Prefix: "##### ", Type: Header(5), Strip: true, Open: "<h5>", Close: "</h5>"},
	{Prefix: "#### ", Type: Header(4), Strip: true, Open: "<h4>", Close: "</h4>"},
	{Prefix: "### ", Type: Header(3), Strip: true, Open: "<h3>", Close: "</h3>"},
	{Prefix: "## ", Type: Header(2), Strip: true, Open: "<h2>", Close: "</h2>"},
	{Prefix: "# ", Type: Header(1), Strip: true, Open: "<h1>", Close: "</h1>"},
	{Prefix: "> ", Type: Blockquote, Strip: true},
	// ordered items keep "1. " in the text, unordered items drop "* " so it
	// is never seen by italic rule
	{Prefix: "1. ", Type: OrderedList, Open: "<li>", Close: "</li>"},
	{Prefix: "* ", Type: UnorderedList, Strip: true, Open: "<li>", Close: "</li>"},
	{Prefix: "---", Type: HorizontalRule, Literal: "<hr>"},
	{Prefix: "***", Type: HorizontalRule, Literal: "<hr>"},
	{Prefix: "___", Type: HorizontalRule, Literal: "<hr>"},
}

// Markers returns a copy of the marker table in evaluation order.
func Markers() []Marker {
	return append([]Marker(nil), markers[:]...)
}

// MatchMarker returns first marker from the table the (trimmed) line starts
// with.
func MatchMarker(line string) (Marker, bool) {
	for _, m := range markers {
		if strings.HasPrefix(line, m.Prefix) {
			return m, true
		}
	}
	return Marker{}, false
}

func (m Marker) fragment(line string) string {
	if len(m.Literal) > 0 {
		return m.Literal
	}
	if m.Strip {
		line = strings.TrimPrefix(line, m.Prefix)
	}
	return m.Open + FormatInline(line) + m.Close
}

// Classify walks lines of a raw block and decides its type. Every line
// overwrites block type, so the last line determines how the whole block is
// rendered. Once a fence is seen the rest of the block is copied verbatim.
func Classify(rb RawBlock) Block {
	var (
		typ    = Raw
		parts  = make([]string, 0, len(rb.Lines))
		inCode bool
	)

	for _, line := range rb.Lines {
		if inCode {
			// closing fence ends code body, the block stays code
			if strings.HasPrefix(strings.TrimSpace(line), fence) {
				continue
			}
			parts = append(parts, line)
			continue
		}

		line = strings.TrimSpace(line)
		m, ok := MatchMarker(line)
		if !ok {
			typ = Paragraph
			parts = append(parts, FormatInline(line))
			continue
		}

		typ = m.Type
		if typ.Kind == KindCode {
			inCode = true
			continue
		}
		parts = append(parts, m.fragment(line))
	}
	return Block{Text: strings.Join(parts, "\n"), Type: typ, Line: rb.Line}
}
