package ports

import (
	"context"

	"github.com/aretw0/igkernel/pkg/domain"
)

// StatusStore defines the interface for publishing kernel status snapshots.
type StatusStore interface {
	// Save stores the snapshot for an IG instance.
	Save(ctx context.Context, instanceID string, status *domain.Status) error

	// Load retrieves the snapshot for an IG instance.
	// Returns domain.ErrStatusNotFound if none was saved.
	Load(ctx context.Context, instanceID string) (*domain.Status, error)

	// Delete removes the snapshot for an IG instance.
	Delete(ctx context.Context, instanceID string) error
}
