package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dagmawib/receipt-verifier/internal/classify"
	"github.com/dagmawib/receipt-verifier/internal/verify"
)

// Verifier is the engine surface the service depends on.
type Verifier interface {
	Verify(ctx context.Context, ref verify.Reference) verify.Result
}

// IDGenerator generates unique IDs for stored records
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service wires the verification engine, the optional image
// classifier, and the key/usage store together for the HTTP surface.
type Service struct {
	db          DB
	verifier    Verifier
	classifier  classify.Classifier // nil when no vision model is configured
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a Service with default ID generator and time
// source. classifier may be nil.
func NewService(db DB, verifier Verifier, classifier classify.Classifier) *Service {
	return &Service{
		db:          db,
		verifier:    verifier,
		classifier:  classifier,
		idGenerator: &defaultIDGenerator{},
		timeSource:  &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a Service with custom dependencies for testing
func NewServiceWithDeps(db DB, verifier Verifier, classifier classify.Classifier, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:          db,
		verifier:    verifier,
		classifier:  classifier,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Verify runs one verification call and records its outcome against
// the calling key.
func (s *Service) Verify(ctx context.Context, keyID string, ref verify.Reference) verify.Result {
	result := s.verifier.Verify(ctx, ref)
	s.recordUsage(keyID, string(ref.Institution), result.Success)
	return result
}

// VerifyImage classifies an uploaded receipt photo and verifies the
// transaction it identifies. Without a configured vision model this is
// a normal degraded branch, not an error.
func (s *Service) VerifyImage(ctx context.Context, keyID string, imageData []byte, contentType string) verify.Result {
	if s.classifier == nil {
		return verify.Result{
			Success: false,
			Error:   "image classification is not configured; manual reference entry required",
		}
	}

	classification, err := s.classifier.Classify(ctx, imageData, contentType)
	if err != nil {
		slog.Error("Failed to classify receipt image",
			"content_type", contentType,
			"image_size", len(imageData),
			"error", err,
		)
		return verify.Result{Success: false, Error: "could not read receipt image; manual reference entry required"}
	}

	institution, err := verify.ParseInstitution(classification.Institution)
	if err != nil {
		return verify.Result{Success: false, Error: err.Error()}
	}

	return s.Verify(ctx, keyID, verify.Reference{
		Institution:   institution,
		Value:         classification.Reference,
		AccountSuffix: classification.AccountSuffix,
		Phone:         classification.Phone,
	})
}

// recordUsage keeps the statistics trail. Failure to record never
// fails the verification call itself.
func (s *Service) recordUsage(keyID, institution string, success bool) {
	entry := &UsageEntry{
		ID:          s.idGenerator.Generate(),
		KeyID:       keyID,
		Institution: institution,
		Success:     success,
		CreatedAt:   s.timeSource.Now(),
	}
	if err := s.db.SaveUsage(entry); err != nil {
		slog.Warn("Failed to record usage", "key_id", keyID, "error", err)
	}
}

// CreateKey issues a new API key.
func (s *Service) CreateKey(name string) (*APIKey, error) {
	if name == "" {
		return nil, fmt.Errorf("key name is required")
	}
	key := &APIKey{
		ID:        s.idGenerator.Generate(),
		Key:       uuid.NewString(),
		Name:      name,
		Active:    true,
		CreatedAt: s.timeSource.Now(),
	}
	if err := s.db.SaveKey(key); err != nil {
		return nil, fmt.Errorf("saving api key: %w", err)
	}
	return key, nil
}

// Authenticate resolves a presented secret to an active key.
func (s *Service) Authenticate(secret string) (*APIKey, error) {
	if secret == "" {
		return nil, fmt.Errorf("api key required")
	}
	key, err := s.db.GetKeyBySecret(secret)
	if err != nil {
		return nil, fmt.Errorf("unknown api key")
	}
	if !key.Active {
		return nil, fmt.Errorf("api key is deactivated")
	}
	return key, nil
}

// ListKeys returns every issued key.
func (s *Service) ListKeys() ([]*APIKey, error) {
	keys, err := s.db.ListKeys()
	if err != nil {
		return nil, fmt.Errorf("listing api keys: %w", err)
	}
	return keys, nil
}

// RevokeKey removes a key.
func (s *Service) RevokeKey(id string) error {
	if _, err := s.db.GetKey(id); err != nil {
		return fmt.Errorf("getting api key: %w", err)
	}
	if err := s.db.DeleteKey(id); err != nil {
		return fmt.Errorf("deleting api key: %w", err)
	}
	return nil
}

// Stats aggregates the usage trail.
func (s *Service) Stats() (*UsageStats, error) {
	entries, err := s.db.ListUsage()
	if err != nil {
		return nil, fmt.Errorf("listing usage: %w", err)
	}
	stats := &UsageStats{ByInstitution: make(map[string]int)}
	for _, entry := range entries {
		stats.Total++
		if entry.Success {
			stats.Succeeded++
		} else {
			stats.Failed++
		}
		stats.ByInstitution[entry.Institution]++
	}
	return stats, nil
}
