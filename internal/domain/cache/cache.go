package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is a key/value store with per-key TTL.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Keys builds namespaced cache keys.
type Keys struct {
	Prefix string
}

func (k Keys) Customer(userID string) string {
	return k.Prefix + "customer:" + userID
}

func (k Keys) Cards(customerID string) string {
	return k.Prefix + "cards:" + customerID
}

func (k Keys) Invoices(customerID string) string {
	return k.Prefix + "invoices:" + customerID
}

func (k Keys) Subscriptions(customerID string) string {
	return k.Prefix + "subscriptions:" + customerID
}

// CustomerLists returns every list key derived from a customer id.
func (k Keys) CustomerLists(customerID string) []string {
	return []string{k.Cards(customerID), k.Invoices(customerID), k.Subscriptions(customerID)}
}

// GetJSON decodes the value stored under key into T.
func GetJSON[T any](ctx context.Context, s Store, key string) (T, error) {
	var v T
	data, err := s.Get(ctx, key)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, err
	}
	return v, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}
