package verify

import (
	"context"
	"errors"
	"log/slog"
)

// Result is the sole artifact returned to the caller. Data is present
// iff Success is true; Error is present iff it is false.
type Result struct {
	Success bool     `json:"success"`
	Data    *Receipt `json:"data,omitempty"`
	Error   string   `json:"error,omitempty"`
}

func failure(msg string) Result {
	return Result{Success: false, Error: msg}
}

// Pipeline composes fetch, fallback fetch, parse, extract, normalize
// and validate for one institution. Institutions differ only in which
// fetch strategies occupy the primary and fallback tiers and which
// field table applies.
type Pipeline struct {
	Institution Institution
	Primary     Fetcher
	// Fallback is the single alternate retrieval tier, attempted only
	// after the primary fails with a network or parse error. Nil for
	// institutions with one endpoint.
	Fallback Fetcher
	// Usable decides, at the fetch stage, whether a parsed document is
	// worth extracting from. A document that parses but is plainly not
	// a populated receipt (an empty shell page) counts as unusable
	// content and sends the pipeline to the fallback tier.
	Usable func(doc *Document) error
	// PreCheck runs against the parsed document before extraction:
	// structured institutions gate on their own reported status here.
	PreCheck func(doc *Document) error
	Fields   []FieldSpec
}

// Verify runs the full pipeline for one reference. Every error is
// converted into a failed Result at this boundary; nothing escapes.
func (p *Pipeline) Verify(ctx context.Context, ref Reference) Result {
	if err := ref.Validate(); err != nil {
		return failure(err.Error())
	}

	doc, err := p.retrieve(ctx, ref)
	if err != nil {
		return failure(surfacedMessage(err))
	}

	if p.PreCheck != nil {
		if err := p.PreCheck(doc); err != nil {
			return failure(surfacedMessage(err))
		}
	}

	record := ExtractRecord(doc, p.Fields)
	receipt, missing := buildReceipt(p.Institution, p.Fields, record)
	if len(missing) > 0 {
		err := &ValidationError{Missing: missing}
		slog.Warn("receipt failed validation",
			"institution", p.Institution,
			"reference", ref.Value,
			"missing", missing,
		)
		return failure(err.Error())
	}

	return Result{Success: true, Data: receipt}
}

// retrieve walks the fetch tiers: primary, then on network or parse
// failure the single declared fallback. A parsed-but-incomplete
// document never re-enters here; validation failures are terminal.
func (p *Pipeline) retrieve(ctx context.Context, ref Reference) (*Document, error) {
	doc, err := p.fetchAndParse(ctx, p.Primary, ref)
	if err == nil {
		return doc, nil
	}
	if p.Fallback == nil || !retriable(err) {
		return nil, err
	}

	slog.Info("primary fetch failed, trying fallback",
		"institution", p.Institution,
		"reference", ref.Value,
		"error", err,
	)
	return p.fetchAndParse(ctx, p.Fallback, ref)
}

func (p *Pipeline) fetchAndParse(ctx context.Context, fetcher Fetcher, ref Reference) (*Document, error) {
	raw, err := fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(raw)
	if err != nil {
		return nil, err
	}
	if p.Usable != nil {
		if err := p.Usable(doc); err != nil {
			return nil, &ParseError{Format: doc.Format, Err: err}
		}
	}
	return doc, nil
}

func retriable(err error) bool {
	var netErr *NetworkError
	var parseErr *ParseError
	return errors.As(err, &netErr) || errors.As(err, &parseErr)
}

// surfacedMessage maps internal error kinds onto the caller-facing
// message patterns. Raw transport and parser detail stays in the logs.
func surfacedMessage(err error) string {
	var rejection *UpstreamRejection
	if errors.As(err, &rejection) {
		return rejection.Error()
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return "error parsing receipt data"
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return "failed to fetch receipt"
	}
	return err.Error()
}
