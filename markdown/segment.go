package markdown

import "strings"

// Segment splits document into raw blocks separated by blank lines. Blank
// lines are never stored and order of blocks follows the document.
func Segment(text string) []RawBlock {
	var (
		blocks []RawBlock
		cur    RawBlock
	)

	flush := func() {
		if len(cur.Lines) == 0 {
			return
		}
		blocks = append(blocks, cur)
		cur = RawBlock{}
	}

	for i, line := range strings.Split(text, "\n") {
		// CRLF input must segment exactly as LF input
		line = strings.TrimSuffix(line, "\r")
		if len(line) == 0 {
			flush()
			continue
		}
		if len(cur.Lines) == 0 {
			cur.Line = i + 1
		}
		cur.Lines = append(cur.Lines, line)
	}
	flush()
	return blocks
}

// Text returns block lines joined back with line breaks.
func (b RawBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}
