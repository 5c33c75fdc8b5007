package extractor

import (
	"context"
	"urlextract/pkg/domain"
)

//go:generate mockgen -package mockextractor -source=interface.go -destination=mock/mockextractor.go *
type Extractor interface {
	Extract(ctx context.Context, text string) (*domain.Extraction, error)
	ExtractBatch(ctx context.Context, texts []string) ([]domain.Extraction, error)
}
