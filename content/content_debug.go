package content

import (
	"maps"
	"slices"
	"sort"

	"github.com/maruel/natural"

	"mdc/utils/debug"
)

// String returns a readable tree of the parsed document.
// It exists solely for manual inspection during debugging.
func (c *Content) String() string {
	if c == nil {
		return "<nil Content>"
	}

	tw := debug.NewTreeWriter()
	tw.Line(0, "Content id=%s", c.ID)
	tw.TextBlock(1, "Source", c.SrcName)
	tw.TextBlock(1, "Title", c.Title)
	tw.TextBlock(1, "Encoding", c.Encoding)

	counts := make(map[string]int)
	for _, b := range c.Blocks {
		counts[b.Type.String()]++
	}
	tw.Line(1, "Block types: %d", len(counts))
	keys := slices.Collect(maps.Keys(counts))
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		tw.Line(2, "%s: %d", k, counts[k])
	}

	tw.Line(1, "Blocks: %d", len(c.Blocks))
	for i, b := range c.Blocks {
		tw.Line(2, "Block[%d] line=%d type=%s", i, b.Line, b.Type)
		tw.MultiLine(3, "Text", b.Text)
	}
	return tw.String()
}
