package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/model"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/repository"
	"github.com/nexusmerchants/orderforms-stripe/internal/middleware/auth"
)

// userDirectory reads the host application's user table and the session user
// placed in the request context by the auth middleware.
type userDirectory struct {
	db  *gorm.DB
	cfg config.UsersConfig
}

func NewUserDirectory(db *gorm.DB, cfg config.UsersConfig) repository.UserDirectory {
	return &userDirectory{
		db:  db,
		cfg: cfg,
	}
}

// CurrentUser loads the session user's live row; the token only vouches for the id.
func (r *userDirectory) CurrentUser(ctx context.Context) (*entity.User, error) {
	session, ok := auth.UserFromContext(ctx)
	if !ok || session.ID == "" {
		return nil, domainErrors.ErrNoSessionUser
	}

	user, err := r.GetUserByID(ctx, session.ID)
	if domainErrors.IsNotFound(err) {
		return nil, domainErrors.ErrNoSessionUser
	}
	return user, err
}

func (r *userDirectory) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	var row model.HostUser
	err := r.db.WithContext(ctx).
		Table(r.cfg.Table).
		Select(selectAs(r.cfg.IDColumn, "id"), selectAs(r.cfg.EmailColumn, "email")).
		Where(clause.Eq{Column: clause.Column{Name: r.cfg.IDColumn}, Value: id}).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}

	return &entity.User{ID: row.ID, Email: row.Email}, nil
}

func selectAs(column, alias string) string {
	if column == alias {
		return column
	}
	return column + " AS " + alias
}
