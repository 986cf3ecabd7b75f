package repository

import (
	"context"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
)

// CustomerMappingRepository persists the user → provider customer link.
// GetByUserID returns (nil, nil) when no link exists.
type CustomerMappingRepository interface {
	GetByUserID(ctx context.Context, userID string) (*entity.CustomerMapping, error)
	Upsert(ctx context.Context, mapping *entity.CustomerMapping) error
}
