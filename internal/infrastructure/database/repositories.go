package database

import (
	"gorm.io/gorm"

	"github.com/nexusmerchants/orderforms-stripe/internal/adapter/repository"
	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainRepo "github.com/nexusmerchants/orderforms-stripe/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	CustomerMapping domainRepo.CustomerMappingRepository
	Users           domainRepo.UserDirectory
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, users config.UsersConfig) *Repositories {
	return &Repositories{
		CustomerMapping: repository.NewCustomerMappingRepository(db),
		Users:           repository.NewUserDirectory(db, users),
	}
}
