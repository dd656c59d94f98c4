// Package batch normalizes citation lists with a bounded worker pool.
//
// Input is one citation per line; blank lines and lines starting with
// "#" are skipped. Lines are parsed concurrently but results reach the
// Sink in input order.
package batch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FocuswithJustin/pubid/core/pubid"
	"github.com/FocuswithJustin/pubid/internal/logging"
)

// DefaultChunkSize is the number of lines parsed between sink flushes.
const DefaultChunkSize = 1024

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// Config controls a batch run.
type Config struct {
	// Workers is the number of concurrent parsers (0 = GOMAXPROCS).
	Workers int

	// ChunkSize is how many lines are parsed before results are handed
	// to the sink (0 = DefaultChunkSize).
	ChunkSize int

	// RunID labels progress logs.
	RunID string
}

// Result is the outcome for one input line.
type Result struct {
	Line      int
	Input     string
	Canonical string
	Full      string
	Err       error
}

// OK reports whether the line parsed.
func (r Result) OK() bool { return r.Err == nil }

// Sink receives results in input order, one call at a time.
type Sink interface {
	Write(ctx context.Context, r Result) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, r Result) error

func (f SinkFunc) Write(ctx context.Context, r Result) error { return f(ctx, r) }

// Summary totals a finished run.
type Summary struct {
	Parsed   int           `json:"parsed"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}

// Total is the number of citations processed.
func (s Summary) Total() int { return s.Parsed + s.Failed }

type line struct {
	num  int
	text string
}

// Run parses every citation read from r with p and writes the results to
// sink. Parse failures are counted and passed to the sink, not returned;
// Run fails only on read, sink or context errors.
func Run(ctx context.Context, cfg Config, p pubid.Interface, r io.Reader, sink Sink) (Summary, error) {
	start := time.Now()
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var sum Summary
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	chunk := make([]line, 0, chunkSize)
	flush := func() error {
		results, err := parseChunk(ctx, workers, p, chunk)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.OK() {
				sum.Parsed++
			} else {
				sum.Failed++
				logging.ParseFailure(ctx, res.Input, res.Err, "line", res.Line)
			}
			if err := sink.Write(ctx, res); err != nil {
				return fmt.Errorf("sink: %w", err)
			}
		}
		chunk = chunk[:0]
		logging.BatchProgress(cfg.RunID, sum.Parsed, sum.Failed)
		return nil
	}

	num := 0
	for scanner.Scan() {
		num++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		chunk = append(chunk, line{num: num, text: text})
		if len(chunk) == chunkSize {
			if err := flush(); err != nil {
				return sum, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return sum, fmt.Errorf("read input: %w", err)
	}
	if len(chunk) > 0 {
		if err := flush(); err != nil {
			return sum, err
		}
	}

	sum.Duration = time.Since(start)
	return sum, nil
}

// parseChunk parses lines concurrently. Each worker writes only its own
// slot of results, so order is preserved without locking.
func parseChunk(ctx context.Context, workers int, p pubid.Interface, lines []line) ([]Result, error) {
	results := make([]Result, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, l := range lines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := Result{Line: l.num, Input: l.text}
			id, err := p.Parse(l.text)
			if err != nil {
				res.Err = err
			} else {
				res.Canonical = id.String()
				res.Full = id.Full()
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
