package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/gophishfree/risk-engine/internal/domain"
)

// Storage defines the contract for persisting scan history
type Storage interface {
	// Email operations
	CreateScannedEmail(ctx context.Context, email *domain.ScannedEmail) error
	GetScannedEmail(ctx context.Context, id uuid.UUID) (*domain.ScannedEmail, error)

	// Assessment operations
	CreateAssessment(ctx context.Context, assessment *domain.RiskAssessment) error
	GetRecentAssessments(ctx context.Context, limit int) ([]domain.RiskAssessment, error)
	GetHighRiskAssessments(ctx context.Context, limit int) ([]domain.RiskAssessment, error)

	// Lifecycle
	Close() error
}
