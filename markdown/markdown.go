// Package markdown converts markdown text into HTML fragment in a single
// left to right pass. Document is split into blank line separated raw
// blocks, every raw block is classified line by line and rendered with the
// block level tag of its final type.
package markdown

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Converter holds conversion settings. It has no mutable state and is safe
// for concurrent use.
type Converter struct {
	log     *zap.Logger
	workers int
}

// Option configures Converter.
type Option func(*Converter)

// WithLogger sets logger used to trace classification decisions at debug
// level.
func WithLogger(log *zap.Logger) Option {
	return func(c *Converter) {
		if log != nil {
			c.log = log
		}
	}
}

// WithWorkers allows classification of up to n raw blocks at the same time
// (errgroup limit). Values below 2 keep conversion sequential.
func WithWorkers(n int) Option {
	return func(c *Converter) {
		c.workers = n
	}
}

// New creates Converter.
func New(options ...Option) *Converter {
	c := &Converter{log: zap.NewNop(), workers: 1}
	for _, opt := range options {
		opt(c)
	}
	c.log = c.log.Named("markdown")
	return c
}

var defaultConverter = New()

// ToHTML converts markdown document to HTML fragment using default settings.
func ToHTML(markdown string) string {
	return defaultConverter.Convert(markdown)
}

// Convert converts markdown document to HTML fragment.
func (c *Converter) Convert(markdown string) string {
	return RenderAll(c.Parse(markdown))
}

// Parse segments and classifies document without rendering it.
func (c *Converter) Parse(markdown string) []Block {
	start := time.Now()

	raw := Segment(markdown)
	blocks := make([]Block, len(raw))

	if c.workers < 2 || len(raw) < 2 {
		for i := range raw {
			blocks[i] = c.classify(raw[i])
		}
	} else {
		// classification cannot fail, the group only bounds concurrency;
		// every goroutine owns its slot and document order is kept by index
		var g errgroup.Group
		g.SetLimit(c.workers)
		for i := range raw {
			g.Go(func() error {
				blocks[i] = c.classify(raw[i])
				return nil
			})
		}
		_ = g.Wait() // always nil
	}

	c.log.Debug("Document parsed",
		zap.Int("bytes", len(markdown)), zap.Int("blocks", len(blocks)),
		zap.Int("workers", c.workers), zap.Duration("elapsed", time.Since(start)))
	return blocks
}

func (c *Converter) classify(rb RawBlock) Block {
	b := Classify(rb)
	if ce := c.log.Check(zap.DebugLevel, "Block classified"); ce != nil {
		ce.Write(zap.Int("line", rb.Line), zap.Int("lines", len(rb.Lines)), zap.Stringer("type", b.Type))
	}
	return b
}
