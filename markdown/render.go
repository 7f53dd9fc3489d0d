package markdown

import "strings"

var wrappers = map[Kind][2]string{
	KindParagraph:     {"<p>", "</p>"},
	KindBlockquote:    {"<blockquote>", "</blockquote>"},
	KindOrderedList:   {"<ol>", "</ol>"},
	KindUnorderedList: {"<ul>", "</ul>"},
	KindCode:          {"<pre><code>", "</code></pre>"},
}

// Render returns HTML fragment for a single block. Headers, rules and raw
// blocks are already tagged during classification and are emitted as is.
// No escaping is performed.
func Render(b Block) string {
	var sb strings.Builder
	writeBlock(&sb, b)
	return sb.String()
}

// RenderAll concatenates fragments of all blocks in order.
func RenderAll(blocks []Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		writeBlock(&sb, b)
	}
	return sb.String()
}

func writeBlock(sb *strings.Builder, b Block) {
	w, ok := wrappers[b.Type.Kind]
	if ok {
		sb.WriteString(w[0])
	}
	sb.WriteString(b.Text)
	if ok {
		sb.WriteString(w[1])
	}
	sb.WriteByte('\n')
}
