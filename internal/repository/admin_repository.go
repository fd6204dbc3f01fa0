package repository

import (
	"context"

	"github.com/fixdesk/servicedesk/internal/domain"
)

type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error)
	Create(ctx context.Context, admin *domain.AdminUser) error
}
