package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/model"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/repository"
)

type customerMappingRepository struct {
	db *gorm.DB
}

func NewCustomerMappingRepository(db *gorm.DB) repository.CustomerMappingRepository {
	return &customerMappingRepository{
		db: db,
	}
}

// modelToEntity converts a model.CustomerMapping to entity.CustomerMapping
func (r *customerMappingRepository) modelToEntity(m *model.CustomerMapping) *entity.CustomerMapping {
	if m == nil {
		return nil
	}
	return &entity.CustomerMapping{
		ID:                 m.ID,
		UserID:             m.UserID,
		ProviderCustomerID: m.ProviderCustomerID,
		Email:              m.Email,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func (r *customerMappingRepository) GetByUserID(ctx context.Context, userID string) (*entity.CustomerMapping, error) {
	var mapping model.CustomerMapping
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.modelToEntity(&mapping), nil
}

// Upsert links userID to the customer, replacing any previous link
func (r *customerMappingRepository) Upsert(ctx context.Context, mapping *entity.CustomerMapping) error {
	now := time.Now().UTC()
	row := &model.CustomerMapping{
		UserID:             mapping.UserID,
		ProviderCustomerID: mapping.ProviderCustomerID,
		Email:              mapping.Email,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider_customer_id", "email", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		return err
	}

	mapping.UpdatedAt = now
	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = now
	}
	return nil
}
