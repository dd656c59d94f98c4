package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/FocuswithJustin/pubid/core/catalog"
	errs "github.com/FocuswithJustin/pubid/core/errors"
	"github.com/FocuswithJustin/pubid/core/xml"
)

// Format selects how a WriterSink encodes results.
type Format string

const (
	// Text writes one rendered identifier per line; failures become
	// "# error: ..." comment lines so the output can be fed back in.
	Text Format = "text"
	// JSON writes one JSON object per line.
	JSON Format = "json"
)

// WriterSink encodes results onto an io.Writer.
type WriterSink struct {
	w      io.Writer
	format Format
	full   bool
}

// NewWriterSink returns a sink writing format to w. With full set, text
// output uses the full rendering instead of the canonical one.
func NewWriterSink(w io.Writer, format Format, full bool) (*WriterSink, error) {
	switch format {
	case Text, JSON:
	case "":
		format = Text
	default:
		return nil, errs.NewUnsupported("output format", fmt.Sprintf("%q", format))
	}
	return &WriterSink{w: w, format: format, full: full}, nil
}

type jsonResult struct {
	Line      int    `json:"line"`
	Input     string `json:"input"`
	Canonical string `json:"canonical,omitempty"`
	Full      string `json:"full,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Write implements Sink.
func (s *WriterSink) Write(_ context.Context, r Result) error {
	switch s.format {
	case JSON:
		out := jsonResult{Line: r.Line, Input: r.Input, Canonical: r.Canonical, Full: r.Full}
		if r.Err != nil {
			out.Error = r.Err.Error()
		}
		data, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(s.w, "%s\n", data)
		return err
	default:
		if r.Err != nil {
			_, err := fmt.Fprintf(s.w, "# error: line %d: %v\n", r.Line, r.Err)
			return err
		}
		text := r.Canonical
		if s.full {
			text = r.Full
		}
		_, err := fmt.Fprintln(s.w, text)
		return err
	}
}

// CatalogSink records every result under one catalog run.
type CatalogSink struct {
	store *catalog.Store
	runID string
}

// NewCatalogSink returns a sink recording into run runID of store.
func NewCatalogSink(store *catalog.Store, runID string) *CatalogSink {
	return &CatalogSink{store: store, runID: runID}
}

// Write implements Sink.
func (s *CatalogSink) Write(ctx context.Context, r Result) error {
	e := catalog.Entry{
		Seq:       r.Line,
		Raw:       r.Input,
		Canonical: r.Canonical,
		Full:      r.Full,
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	}
	return s.store.Record(ctx, s.runID, e)
}

// MultiSink fans each result out to every sink in order, stopping at the
// first error.
func MultiSink(sinks ...Sink) Sink {
	return SinkFunc(func(ctx context.Context, r Result) error {
		for _, s := range sinks {
			if err := s.Write(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
}

// FromXML extracts the citations selected by expr from an XML document
// and returns them as line input for Run.
func FromXML(r io.Reader, expr string) (io.Reader, error) {
	citations, err := xml.Citations(r, expr)
	if err != nil {
		return nil, err
	}
	return strings.NewReader(strings.Join(citations, "\n")), nil
}
