// Package classify turns an uploaded receipt photo into an institution
// tag plus the reference values needed to verify it. The capability is
// optional: a deployment without a vision model simply asks the caller
// for manual reference entry.
package classify

import "context"

// Classification is the vision model's reading of a receipt photo.
type Classification struct {
	Institution   string `json:"institution"`
	Reference     string `json:"reference"`
	AccountSuffix string `json:"account_suffix,omitempty"`
	Phone         string `json:"phone,omitempty"`
}

// Classifier reads a receipt photo and identifies the issuing
// institution and transaction reference.
type Classifier interface {
	Classify(ctx context.Context, imageData []byte, contentType string) (*Classification, error)
	// Close releases the underlying model client.
	Close() error
}
