package auth

import (
	"context"

	"github.com/cinedex/cinedex/internal/domain"
)

// Repository defines the storage contract for accounts.
type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, id string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
}
