// Package content prepares markdown source for conversion: reads and decodes
// it, parses it into classified blocks and collects document metadata.
package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/unicode/norm"

	"mdc/markdown"
	"mdc/state"
)

// ErrBinary is returned for input which looks like known binary format.
var ErrBinary = errors.New("input is not a text document")

// Content is parsed markdown document.
type Content struct {
	SrcName  string
	ID       uuid.UUID
	Title    string
	Encoding string
	Text     string
	Blocks   []markdown.Block
}

// HTML returns rendered fragment.
func (c *Content) HTML() string {
	return markdown.RenderAll(c.Blocks)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Prepare reads markdown source from r and parses it. srcName is used for
// logging and as title fallback. Conversion settings come from environment
// stored in ctx.
func Prepare(ctx context.Context, r io.Reader, srcName string, log *zap.Logger) (*Content, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	env := state.EnvFromContext(ctx)
	log = log.Named("content")

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read source: %w", err)
	}

	// some signatures are two or three printable bytes ("BM", "MZ", "ID3"),
	// valid UTF-8 is always taken as text
	if !utf8.Valid(data) {
		if kind, _ := filetype.Match(data); kind != filetype.Unknown {
			return nil, fmt.Errorf("%w: detected %s (%s)", ErrBinary, kind.Extension, kind.MIME.Value)
		}
	}

	var enc encoding.Encoding
	if env.Cfg != nil && len(env.Cfg.Document.InputEncoding) > 0 {
		if enc, err = ianaindex.IANA.Encoding(env.Cfg.Document.InputEncoding); err != nil || enc == nil {
			return nil, fmt.Errorf("unknown input encoding %q", env.Cfg.Document.InputEncoding)
		}
	}
	text, encName, err := decode(data, enc)
	if err != nil {
		return nil, fmt.Errorf("unable to decode source: %w", err)
	}

	workers := 0
	if env.Cfg != nil {
		workers = env.Cfg.Document.Workers
		if env.Cfg.Document.NormalizeUnicode {
			text = norm.NFC.String(text)
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("unable to generate document id: %w", err)
	}

	c := &Content{
		SrcName:  srcName,
		ID:       id,
		Encoding: encName,
		Text:     text,
		Blocks:   markdown.New(markdown.WithLogger(log), markdown.WithWorkers(workers)).Parse(text),
	}
	c.Title = documentTitle(c.Blocks)
	if len(c.Title) == 0 {
		c.Title = strings.TrimSuffix(filepath.Base(srcName), filepath.Ext(srcName))
	}

	log.Debug("Content prepared",
		zap.String("source", srcName), zap.Stringer("id", c.ID), zap.String("encoding", encName),
		zap.Int("blocks", len(c.Blocks)), zap.String("title", c.Title))
	return c, nil
}

// decode converts data to UTF-8. When enc is nil encoding is detected from
// BOM and content.
func decode(data []byte, enc encoding.Encoding) (string, string, error) {
	var name string
	switch {
	case enc == nil && utf8.Valid(data):
		// detection only looks at the head of the input and may cut a rune
		enc, name = encoding.Nop, "utf-8"
	case enc == nil:
		enc, name, _ = charset.DetermineEncoding(data, "text/plain")
	default:
		if name, _ = ianaindex.IANA.Name(enc); len(name) == 0 {
			name = "forced"
		}
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", name, err
	}
	return string(bytes.TrimPrefix(out, utf8BOM)), name, nil
}

// Headers returns text of every header in document order.
func (c *Content) Headers() []string {
	var out []string
	for _, b := range c.Blocks {
		if b.Type.Kind == markdown.KindCode {
			continue
		}
		out = append(out, headerTexts(b.Text)...)
	}
	return out
}

// documentTitle returns text of the first header found in the document.
// Headers may end up inside blocks of other types (last line decides block
// type), so every non-code block is searched.
func documentTitle(blocks []markdown.Block) string {
	for _, b := range blocks {
		if b.Type.Kind == markdown.KindCode {
			continue
		}
		if titles := headerTexts(b.Text); len(titles) > 0 {
			return titles[0]
		}
	}
	return ""
}

// headerTexts extracts text content of h1-h6 elements from fragment.
func headerTexts(fragment string) []string {
	z := html.NewTokenizer(strings.NewReader(fragment))

	var (
		out   []string
		sb    strings.Builder
		depth int
		tag   string
	)
	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			name, _ := z.TagName()
			if depth == 0 && isHeaderTag(string(name)) {
				tag = string(name)
			}
			if len(tag) > 0 {
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if len(tag) == 0 {
				continue
			}
			depth--
			if depth == 0 || string(name) == tag {
				out = append(out, strings.TrimSpace(sb.String()))
				sb.Reset()
				depth, tag = 0, ""
			}
		case html.TextToken:
			if len(tag) > 0 {
				sb.Write(z.Text())
			}
		}
	}
}

func isHeaderTag(name string) bool {
	return len(name) == 2 && name[0] == 'h' && name[1] >= '1' && name[1] <= '6'
}
