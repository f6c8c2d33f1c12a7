// Package verify implements the receipt retrieval-and-extraction
// engine: one pipeline per institution, each composing a primary fetch,
// an optional fallback fetch, format parsing, rule-cascade field
// extraction, normalization and required-field validation into a single
// call returning a uniform result envelope.
package verify

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Config carries the per-institution endpoint templates and shared
// fetch tuning. Endpoints are overridable so tests can point pipelines
// at local fixtures.
type Config struct {
	CBEReceiptURL       string
	TelebirrReceiptURL  string
	TelebirrRelayURL    string
	DashenReceiptURL    string
	CBEBirrReceiptURL   string
	AbyssiniaReceiptURL string

	FetchTimeout    time.Duration
	BrowserSessions int
	// UpstreamRPS bounds request throughput per fetcher; zero means
	// unlimited.
	UpstreamRPS float64
}

// DefaultConfig returns the production endpoints.
func DefaultConfig() Config {
	return Config{
		CBEReceiptURL:       "https://apps.cbe.com.et:100",
		TelebirrReceiptURL:  "https://transactioninfo.ethiotelecom.et/receipt",
		TelebirrRelayURL:    "https://transactionslip.ethiotelecom.et/receipt",
		DashenReceiptURL:    "https://receipt.dashensuperapp.com/receipt",
		CBEBirrReceiptURL:   "https://cbebirrportal.cbe.com.et:8080/receipt",
		AbyssiniaReceiptURL: "https://cs.bankofabyssinia.com/slink",
		FetchTimeout:        DefaultFetchTimeout,
		BrowserSessions:     DefaultBrowserSessions,
	}
}

func (c Config) limiter() *rate.Limiter {
	if c.UpstreamRPS <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(c.UpstreamRPS), 1)
}

// Verifier dispatches verification calls to the matching institution
// pipeline. Calls are independent and share no mutable state.
type Verifier struct {
	pipelines map[Institution]*Pipeline
}

// New builds a verifier with every institution pipeline wired from the
// config. The CBE browser fallback shares one bounded session pool.
func New(cfg Config) *Verifier {
	browser := NewBrowserFetcher(cbeReceiptURL(cfg.CBEReceiptURL), FormatPDF, cfg.BrowserSessions,
		WithTimeout(cfg.FetchTimeout),
		WithInsecureTLS(),
	)
	return NewWithFallback(cfg, browser)
}

// NewWithFallback builds a verifier with an explicit CBE fallback
// fetcher, letting tests substitute the browser tier.
func NewWithFallback(cfg Config, cbeFallback Fetcher) *Verifier {
	pipelines := map[Institution]*Pipeline{
		InstitutionCBE:       newCBEPipeline(cfg, cbeFallback),
		InstitutionTelebirr:  newTelebirrPipeline(cfg),
		InstitutionDashen:    newDashenPipeline(cfg),
		InstitutionCBEBirr:   newCBEBirrPipeline(cfg),
		InstitutionAbyssinia: newAbyssiniaPipeline(cfg),
	}
	return &Verifier{pipelines: pipelines}
}

// Verify runs the pipeline for the reference's institution.
func (v *Verifier) Verify(ctx context.Context, ref Reference) Result {
	pipeline, ok := v.pipelines[ref.Institution]
	if !ok {
		return failure(fmt.Sprintf("unknown institution: %q", ref.Institution))
	}
	return pipeline.Verify(ctx, ref)
}
