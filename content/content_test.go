package content

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"

	"mdc/config"
	"mdc/markdown"
	"mdc/state"
)

func testContext(t *testing.T, doc config.DocumentConfig) context.Context {
	t.Helper()
	ctx := state.ContextWithEnv(context.Background())
	state.EnvFromContext(ctx).Cfg = &config.Config{Version: 1, Document: doc}
	return ctx
}

func TestPrepare(t *testing.T) {
	src := "# Hello *world*\n\n* one\n* two\n\n```\ncode\n```\n"
	ctx := testContext(t, config.DocumentConfig{})

	c, err := Prepare(ctx, strings.NewReader(src), "docs/readme.md", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if c.Title != "Hello world" {
		t.Errorf("Title = %q, want %q", c.Title, "Hello world")
	}
	if c.Encoding != "utf-8" {
		t.Errorf("Encoding = %q, want utf-8", c.Encoding)
	}
	if c.ID.Version() != 7 {
		t.Errorf("ID version = %d, want 7", c.ID.Version())
	}
	if len(c.Blocks) != 3 {
		t.Fatalf("got %d blocks, want 3", len(c.Blocks))
	}
	if got, want := c.HTML(), markdown.ToHTML(src); got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestPrepareWorkers(t *testing.T) {
	var sb strings.Builder
	for i := range 50 {
		if i%2 == 0 {
			sb.WriteString("## section\n\n")
		} else {
			sb.WriteString("plain **text**\n\n")
		}
	}
	ctx := testContext(t, config.DocumentConfig{Workers: 4})

	c, err := Prepare(ctx, strings.NewReader(sb.String()), "many.md", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if got, want := c.HTML(), markdown.ToHTML(sb.String()); got != want {
		t.Errorf("parallel HTML differs from sequential:\n%s\nwant:\n%s", got, want)
	}
}

func TestPrepareTitle(t *testing.T) {
	tests := []struct {
		name string
		src  string
		file string
		want string
	}{
		{name: "first header", src: "intro\n\n## Second\n\n# First", file: "a.md", want: "Second"},
		{name: "header in paragraph block", src: "# Title\nplain line", file: "a.md", want: "Title"},
		{name: "code is skipped", src: "```\n# not a title\n```\n\n### Real", file: "a.md", want: "Real"},
		{name: "fallback to base name", src: "no headers here", file: "dir/notes.markdown", want: "notes"},
		{name: "empty header falls back", src: "# ", file: "x/empty.md", want: "empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testContext(t, config.DocumentConfig{})
			c, err := Prepare(ctx, strings.NewReader(tt.src), tt.file, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if c.Title != tt.want {
				t.Errorf("Title = %q, want %q", c.Title, tt.want)
			}
		})
	}
}

func TestPrepareEncoding(t *testing.T) {
	t.Run("bom is stripped", func(t *testing.T) {
		ctx := testContext(t, config.DocumentConfig{})
		src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("# Title")...)
		c, err := Prepare(ctx, bytes.NewReader(src), "a.md", zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if c.Text != "# Title" {
			t.Errorf("Text = %q, want %q", c.Text, "# Title")
		}
	})

	t.Run("detected legacy encoding", func(t *testing.T) {
		ctx := testContext(t, config.DocumentConfig{})
		c, err := Prepare(ctx, bytes.NewReader([]byte("caf\xe9")), "a.md", zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if c.Text != "café" {
			t.Errorf("Text = %q, want %q", c.Text, "café")
		}
		if c.Encoding != "windows-1252" {
			t.Errorf("Encoding = %q, want windows-1252", c.Encoding)
		}
	})

	t.Run("zip code page does not affect content", func(t *testing.T) {
		ctx := testContext(t, config.DocumentConfig{})
		state.EnvFromContext(ctx).CodePage = charmap.Windows1251
		c, err := Prepare(ctx, strings.NewReader("plain"), "a.md", zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if c.Encoding != "utf-8" {
			t.Errorf("Encoding = %q, want utf-8", c.Encoding)
		}
	})

	t.Run("configured encoding", func(t *testing.T) {
		ctx := testContext(t, config.DocumentConfig{InputEncoding: "windows-1251"})
		// "Привет" in windows-1251
		src := []byte{0xCF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}
		c, err := Prepare(ctx, bytes.NewReader(src), "a.md", zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if c.Text != "Привет" {
			t.Errorf("Text = %q, want %q", c.Text, "Привет")
		}
		if c.Encoding != "windows-1251" {
			t.Errorf("Encoding = %q, want windows-1251", c.Encoding)
		}
	})

	t.Run("unknown configured encoding", func(t *testing.T) {
		ctx := testContext(t, config.DocumentConfig{InputEncoding: "no-such-charset"})
		if _, err := Prepare(ctx, strings.NewReader("x"), "a.md", zaptest.NewLogger(t)); err == nil {
			t.Fatal("expected error for unknown encoding")
		}
	})
}

func TestPrepareNormalize(t *testing.T) {
	src := "cafe\u0301"
	for _, normalize := range []bool{false, true} {
		ctx := testContext(t, config.DocumentConfig{NormalizeUnicode: normalize})
		c, err := Prepare(ctx, strings.NewReader(src), "a.md", zaptest.NewLogger(t))
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		want := src
		if normalize {
			want = "caf\u00e9"
		}
		if c.Text != want {
			t.Errorf("normalize=%v: Text = %q, want %q", normalize, c.Text, want)
		}
	}
}

func TestPrepareRejectsBinary(t *testing.T) {
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}
	ctx := testContext(t, config.DocumentConfig{})

	_, err := Prepare(ctx, bytes.NewReader(png), "image.md", zaptest.NewLogger(t))
	if !errors.Is(err, ErrBinary) {
		t.Fatalf("Prepare() error = %v, want ErrBinary", err)
	}
}

func TestPrepareAcceptsTextWithSignaturePrefix(t *testing.T) {
	ctx := testContext(t, config.DocumentConfig{})

	for _, text := range []string{
		"BMW notes\n",
		"BMW and BMI notes\n\n# Title\n",
		"MZ-80\n",
		"ID3 tags explained\n",
	} {
		t.Run(text, func(t *testing.T) {
			c, err := Prepare(ctx, strings.NewReader(text), "notes.md", zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			if c.HTML() != markdown.ToHTML(text) {
				t.Errorf("HTML() = %q, want %q", c.HTML(), markdown.ToHTML(text))
			}
		})
	}
}

func TestPrepareCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(testContext(t, config.DocumentConfig{}))
	cancel()

	if _, err := Prepare(ctx, strings.NewReader("# x"), "a.md", zaptest.NewLogger(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Prepare() error = %v, want context.Canceled", err)
	}
}

func TestHeaderTexts(t *testing.T) {
	tests := []struct {
		fragment string
		want     []string
	}{
		{fragment: "<h1>Plain</h1>", want: []string{"Plain"}},
		{fragment: "<h3>A <em>b</em> <a href=\"x\">c</a></h3>", want: []string{"A b c"}},
		{fragment: "<li>item</li>\n<h2>Later</h2>\n<h4>Last</h4>", want: []string{"Later", "Last"}},
		{fragment: "<li>item</li>"},
		{fragment: "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			got := headerTexts(tt.fragment)
			if !slices.Equal(got, tt.want) {
				t.Errorf("headerTexts() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentHeaders(t *testing.T) {
	src := "# One\n\ntext\n\n```\n<h2>fake</h2>\n```\n\n## Two\n### Three"
	c, err := Prepare(testContext(t, config.DocumentConfig{}), strings.NewReader(src), "a.md", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	want := []string{"One", "Two", "Three"}
	if got := c.Headers(); !slices.Equal(got, want) {
		t.Errorf("Headers() = %q, want %q", got, want)
	}
}

func TestContentString(t *testing.T) {
	ctx := testContext(t, config.DocumentConfig{})
	c, err := Prepare(ctx, strings.NewReader("# T\n\npara\n\nmore"), "t.md", zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	out := c.String()
	for _, want := range []string{
		"Content id=" + c.ID.String(),
		`Title: "T"`,
		"Block types: 2",
		"header(1): 1",
		"paragraph: 2",
		"Block[0] line=1 type=header(1)",
		"Block[2] line=5 type=paragraph",
		`"<h1>T</h1>"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}

	var nilContent *Content
	if nilContent.String() != "<nil Content>" {
		t.Error("nil Content String() mismatch")
	}
}
