package database

import (
	"context"

	"github.com/domiapp/domi-backend/internal/models"
	"github.com/google/uuid"
)

// ClipRepositoryInterface defines the interface for clip repository operations
// This interface enables better testability by allowing mock implementations
type ClipRepositoryInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Clip, error)
	ApplyPatch(ctx context.Context, id uuid.UUID, patch *models.ClipPatch) error
}

// UserRepositoryInterface defines the interface for user repository operations
type UserRepositoryInterface interface {
	GetByProviderID(ctx context.Context, providerID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
}

// Ensure concrete types implement the interfaces
var (
	_ ClipRepositoryInterface = (*ClipRepository)(nil)
	_ UserRepositoryInterface = (*UserRepository)(nil)
)
