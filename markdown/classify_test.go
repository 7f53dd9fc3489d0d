package markdown

import (
	"strings"
	"testing"
)

func TestMarkersOrdering(t *testing.T) {
	ms := Markers()
	// a marker must never be hidden behind an earlier marker whose prefix
	// it starts with
	for i, later := range ms {
		for _, earlier := range ms[:i] {
			if strings.HasPrefix(later.Prefix, earlier.Prefix) {
				t.Errorf("marker %q is shadowed by earlier marker %q", later.Prefix, earlier.Prefix)
			}
		}
	}

	level := 7
	for _, m := range ms {
		if m.Type.Kind != KindHeader {
			continue
		}
		if m.Type.Level != level-1 {
			t.Errorf("header marker %q has level %d, want %d", m.Prefix, m.Type.Level, level-1)
		}
		level = m.Type.Level
		if want := strings.Repeat("#", level) + " "; m.Prefix != want {
			t.Errorf("header level %d prefix = %q, want %q", level, m.Prefix, want)
		}
	}
	if level != 1 {
		t.Errorf("header markers end at level %d, want 1", level)
	}
}

func TestMarkersReturnsCopy(t *testing.T) {
	ms := Markers()
	ms[0].Prefix = "changed"
	if Markers()[0].Prefix == "changed" {
		t.Error("Markers() exposes internal table")
	}
}

func TestMatchMarker(t *testing.T) {
	tests := []struct {
		line  string
		want  BlockType
		match bool
	}{
		{"###### Six", Header(6), true},
		{"##### Five", Header(5), true},
		{"#### Four", Header(4), true},
		{"### Three", Header(3), true},
		{"## Two", Header(2), true},
		{"# One", Header(1), true},
		{"#NoSpace", BlockType{}, false},
		{"> quote", Blockquote, true},
		{">no space", BlockType{}, false},
		{"1. first", OrderedList, true},
		{"2. second", BlockType{}, false},
		{"* item", UnorderedList, true},
		{"---", HorizontalRule, true},
		{"***", HorizontalRule, true},
		{"___", HorizontalRule, true},
		{"```go", Code, true},
		{"plain", BlockType{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			m, ok := MatchMarker(tt.line)
			if ok != tt.match {
				t.Fatalf("MatchMarker(%q) matched = %v, want %v", tt.line, ok, tt.match)
			}
			if ok && m.Type != tt.want {
				t.Errorf("MatchMarker(%q) type = %v, want %v", tt.line, m.Type, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		lines    []string
		wantType BlockType
		wantText string
	}{
		{
			name:     "longest header marker first",
			lines:    []string{"###### Six"},
			wantType: Header(6),
			wantText: "<h6>Six</h6>",
		},
		{
			name:     "header text is inline formatted",
			lines:    []string{"## A *b*"},
			wantType: Header(2),
			wantText: "<h2>A <em>b</em></h2>",
		},
		{
			name:     "paragraph lines are trimmed",
			lines:    []string{"  first  ", "second"},
			wantType: Paragraph,
			wantText: "first\nsecond",
		},
		{
			name:     "blockquote marker stripped",
			lines:    []string{"> quoted **text**"},
			wantType: Blockquote,
			wantText: "quoted <strong>text</strong>",
		},
		{
			name:     "ordered list keeps full line",
			lines:    []string{"1. one", "1. two"},
			wantType: OrderedList,
			wantText: "<li>1. one</li>\n<li>1. two</li>",
		},
		{
			name:     "unordered list strips marker",
			lines:    []string{"* one", "* two ~~x~~"},
			wantType: UnorderedList,
			wantText: "<li>one</li>\n<li>two <s>x</s></li>",
		},
		{
			name:     "horizontal rule",
			lines:    []string{"___"},
			wantType: HorizontalRule,
			wantText: "<hr>",
		},
		{
			name:     "last matching line wins",
			lines:    []string{"# Title", "plain"},
			wantType: Paragraph,
			wantText: "<h1>Title</h1>\nplain",
		},
		{
			name:     "marker after plain line overrides paragraph",
			lines:    []string{"plain", "> quote"},
			wantType: Blockquote,
			wantText: "plain\nquote",
		},
		{
			name:     "code is verbatim and sticky",
			lines:    []string{"```", "  *not* formatted", "# not a header"},
			wantType: Code,
			wantText: "  *not* formatted\n# not a header",
		},
		{
			name:     "closing fence is not part of the body",
			lines:    []string{"```go", "x := 1", "```", "after fence"},
			wantType: Code,
			wantText: "x := 1\nafter fence",
		},
		{
			name:     "fence after paragraph lines",
			lines:    []string{"intro **x**", "```", "**y**"},
			wantType: Code,
			wantText: "intro <strong>x</strong>\n**y**",
		},
		{
			name:     "empty block stays raw",
			lines:    nil,
			wantType: Raw,
			wantText: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := Classify(RawBlock{Line: 3, Lines: tt.lines})
			if b.Type != tt.wantType {
				t.Errorf("Classify() type = %v, want %v", b.Type, tt.wantType)
			}
			if b.Text != tt.wantText {
				t.Errorf("Classify() text = %q, want %q", b.Text, tt.wantText)
			}
			if b.Line != 3 {
				t.Errorf("Classify() line = %d, want 3", b.Line)
			}
		})
	}
}

func TestHeaderClamp(t *testing.T) {
	if got := Header(0).Level; got != 1 {
		t.Errorf("Header(0).Level = %d, want 1", got)
	}
	if got := Header(9).Level; got != 6 {
		t.Errorf("Header(9).Level = %d, want 6", got)
	}
	if got := Header(4).String(); got != "header(4)" {
		t.Errorf("Header(4).String() = %q, want %q", got, "header(4)")
	}
	if got := Kind(42).String(); got != "Kind(42)" {
		t.Errorf("Kind(42).String() = %q", got)
	}
}
