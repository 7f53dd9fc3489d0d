package markdown

import "strconv"

// Kind is the closed set of block level constructs the classifier knows about.
type Kind int

const (
	// KindRaw is the default for a block whose lines matched no marker.
	KindRaw Kind = iota
	KindParagraph
	KindBlockquote
	KindHeader
	KindOrderedList
	KindUnorderedList
	KindCode
	KindHorizontalRule
)

var kindNames = [...]string{
	KindRaw:            "raw",
	KindParagraph:      "paragraph",
	KindBlockquote:     "blockquote",
	KindHeader:         "header",
	KindOrderedList:    "ordered-list",
	KindUnorderedList:  "unordered-list",
	KindCode:           "code",
	KindHorizontalRule: "horizontal-rule",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// BlockType is a Kind plus header level. Level is only meaningful for
// KindHeader (1..6) and is zero otherwise.
type BlockType struct {
	Kind  Kind
	Level int
}

var (
	Raw            = BlockType{Kind: KindRaw}
	Paragraph      = BlockType{Kind: KindParagraph}
	Blockquote     = BlockType{Kind: KindBlockquote}
	OrderedList    = BlockType{Kind: KindOrderedList}
	UnorderedList  = BlockType{Kind: KindUnorderedList}
	Code           = BlockType{Kind: KindCode}
	HorizontalRule = BlockType{Kind: KindHorizontalRule}
)

// Header returns header block type of requested level, level is clamped
// to 1..6.
func Header(level int) BlockType {
	return BlockType{Kind: KindHeader, Level: min(max(level, 1), 6)}
}

func (t BlockType) String() string {
	if t.Kind == KindHeader {
		return t.Kind.String() + "(" + strconv.Itoa(t.Level) + ")"
	}
	return t.Kind.String()
}

// RawBlock is contiguous run of non-blank lines as produced by Segment.
type RawBlock struct {
	// Line is 1-based number of the first line of the block in the source.
	Line  int
	Lines []string
}

// Block is classified raw block ready for rendering. Text is already inline
// formatted, except for code blocks which carry their lines verbatim.
type Block struct {
	Text string
	Type BlockType
	// Line is 1-based number of the first source line of the block.
	Line int
}
