package usecase

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/nexusmerchants/orderforms-stripe/internal/config"
	domainCache "github.com/nexusmerchants/orderforms-stripe/internal/domain/cache"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/entity"
	domainErrors "github.com/nexusmerchants/orderforms-stripe/internal/domain/errors"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/provider"
	"github.com/nexusmerchants/orderforms-stripe/internal/domain/repository"
	"github.com/nexusmerchants/orderforms-stripe/internal/infrastructure/metrics"
	apperrors "github.com/nexusmerchants/orderforms-stripe/pkg/errors"
)

// Resolution sources recorded in metrics
const (
	sourceCache   = "cache"
	sourceLink    = "link"
	sourceEmail   = "email"
	sourceCreated = "created"
)

// CustomerResolver finds the billing customer of a user through the chain
// cache → persisted link → email lookup → create.
type CustomerResolver struct {
	gateway  provider.BillingGateway
	mappings repository.CustomerMappingRepository
	users    repository.UserDirectory
	cache    *snapshotCache
	events   *EventEmitter
	metrics  *metrics.Metrics
	logger   *zap.Logger

	dedupe           bool
	verifyCachedLink bool
	inflight         singleflight.Group
}

// NewCustomerResolver creates a resolver. A nil gateway makes every resolution
// fail with a CONFIGURATION error.
func NewCustomerResolver(
	gateway provider.BillingGateway,
	mappings repository.CustomerMappingRepository,
	users repository.UserDirectory,
	store domainCache.Store,
	cfg config.BillingConfig,
	events *EventEmitter,
	m *metrics.Metrics,
	logger *zap.Logger,
) *CustomerResolver {
	return &CustomerResolver{
		gateway:          gateway,
		mappings:         mappings,
		users:            users,
		cache:            newSnapshotCache(store, cfg.CachePrefix, cfg.CacheTTL, m, logger),
		events:           events,
		metrics:          m,
		logger:           logger,
		dedupe:           cfg.DedupeEnabled(),
		verifyCachedLink: cfg.VerifyCachedLink,
	}
}

// Resolve returns the customer of userID, or of the session user when userID is empty.
func (r *CustomerResolver) Resolve(ctx context.Context, userID string, expand []string) (*entity.CustomerRecord, error) {
	if r.gateway == nil {
		return nil, domainErrors.ErrGatewayUnavailable
	}

	user, err := r.LookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return r.ResolveUser(ctx, user, expand)
}

// LookupUser reads userID from the host directory, or the session user when empty.
func (r *CustomerResolver) LookupUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return r.users.CurrentUser(ctx)
	}
	return r.users.GetUserByID(ctx, userID)
}

// ResolveUser runs the resolution chain for an already loaded user.
func (r *CustomerResolver) ResolveUser(ctx context.Context, user *entity.User, expand []string) (*entity.CustomerRecord, error) {
	if r.gateway == nil {
		return nil, domainErrors.ErrGatewayUnavailable
	}
	if !r.dedupe {
		return r.resolve(ctx, user, expand)
	}

	key := user.ID
	if len(expand) > 0 {
		key += "|" + strings.Join(expand, ",")
	}

	// the shared resolution must outlive the request that started it
	shared := context.WithoutCancel(ctx)
	ch := r.inflight.DoChan(key, func() (interface{}, error) {
		return r.resolve(shared, user, expand)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			r.logger.Debug("Joined in-flight customer resolution", zap.String("user_id", user.ID))
		}
		return res.Val.(*entity.CustomerRecord), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Link returns the persisted customer link of userID, or nil
func (r *CustomerResolver) Link(ctx context.Context, userID string) (*entity.CustomerMapping, error) {
	return r.mappings.GetByUserID(ctx, userID)
}

func (r *CustomerResolver) resolve(ctx context.Context, user *entity.User, expand []string) (*entity.CustomerRecord, error) {
	key := r.cache.keys.Customer(user.ID)

	if cached, ok := lookup[*entity.CustomerRecord](ctx, r.cache, "customer", key); ok && cached != nil {
		if !r.verifyCachedLink || r.cachedLinkValid(ctx, user, cached) {
			r.metrics.RecordResolution(sourceCache)
			return cached, nil
		}
	}

	rec, source, err := r.resolveRemote(ctx, user, expand)
	if err != nil {
		return nil, err
	}

	r.cache.put(ctx, key, rec)
	r.metrics.RecordResolution(source)

	r.logger.Info("Customer resolved",
		zap.String("user_id", user.ID),
		zap.String("customer_id", rec.ID),
		zap.String("source", source))
	return rec, nil
}

func (r *CustomerResolver) resolveRemote(ctx context.Context, user *entity.User, expand []string) (*entity.CustomerRecord, string, error) {
	mapping, err := r.mappings.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, "", apperrors.Wrap(err, "failed to read customer link")
	}

	deleted := false
	if mapping != nil && mapping.ProviderCustomerID != "" {
		res, err := r.gateway.GetCustomer(ctx, mapping.ProviderCustomerID, expand)
		if err != nil {
			return nil, "", err
		}

		switch {
		case res.Usable():
			return res.Customer, sourceLink, nil
		case res.Status == entity.LookupDeleted:
			deleted = true
			r.logger.Info("Linked customer was deleted, creating a new one",
				zap.String("user_id", user.ID),
				zap.String("customer_id", mapping.ProviderCustomerID))
		default:
			r.logger.Warn("Linked customer not found, falling back to email lookup",
				zap.String("user_id", user.ID),
				zap.String("customer_id", mapping.ProviderCustomerID))
		}
	}

	// a deleted customer goes straight to creation
	if !deleted {
		rec, err := r.findByEmail(ctx, user)
		if err != nil {
			return nil, "", err
		}
		if rec != nil {
			return rec, sourceEmail, nil
		}
	}

	rec, err := r.create(ctx, user)
	if err != nil {
		return nil, "", err
	}
	return rec, sourceCreated, nil
}

func (r *CustomerResolver) findByEmail(ctx context.Context, user *entity.User) (*entity.CustomerRecord, error) {
	email := user.NormalizedEmail()
	if email == "" {
		return nil, nil
	}

	found, err := r.gateway.FindCustomersByEmail(ctx, email, 1)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 || found[0] == nil {
		return nil, nil
	}

	rec := found[0]
	if err := r.link(ctx, user, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (r *CustomerResolver) create(ctx context.Context, user *entity.User) (*entity.CustomerRecord, error) {
	rec, err := r.gateway.CreateCustomer(ctx, user.Email, user.ID)
	if err != nil {
		return nil, err
	}
	if err := r.link(ctx, user, rec); err != nil {
		return nil, err
	}

	r.events.Emit(ctx, entity.EventCustomerCreated, user.ID, rec.ID, map[string]any{
		"email": rec.Email,
	})
	return rec, nil
}

func (r *CustomerResolver) link(ctx context.Context, user *entity.User, rec *entity.CustomerRecord) error {
	err := r.mappings.Upsert(ctx, &entity.CustomerMapping{
		UserID:             user.ID,
		ProviderCustomerID: rec.ID,
		Email:              user.NormalizedEmail(),
	})
	if err != nil {
		return apperrors.Wrap(err, "failed to persist customer link")
	}
	return nil
}

// cachedLinkValid drops snapshots that no longer match the persisted link
func (r *CustomerResolver) cachedLinkValid(ctx context.Context, user *entity.User, cached *entity.CustomerRecord) bool {
	mapping, err := r.mappings.GetByUserID(ctx, user.ID)
	if err != nil {
		r.logger.Warn("Could not verify cached customer, keeping snapshot",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return true
	}
	if mapping == nil || mapping.ProviderCustomerID != cached.ID {
		r.logger.Info("Cached customer does not match persisted link",
			zap.String("user_id", user.ID),
			zap.String("cached_customer_id", cached.ID))
		return false
	}
	return true
}
