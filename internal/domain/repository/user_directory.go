package repository

import (
	"context"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
)

// UserDirectory reads users owned by the host application.
type UserDirectory interface {
	// CurrentUser returns the live record of the session user carried by ctx.
	CurrentUser(ctx context.Context) (*entity.User, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
}
