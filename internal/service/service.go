package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shop-service/internal/apperr"
	"shop-service/internal/models"
	"shop-service/internal/store"
)

// EventPublisher is the outbound side of the notification pipeline
type EventPublisher interface {
	PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error
}

// SessionStore keeps the single live token id of each user
type SessionStore interface {
	SetSession(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error
	GetSession(ctx context.Context, userID int64) (string, error)
	DeleteSession(ctx context.Context, userID int64) error
}

// IdempotencyStore remembers which checkout request produced which order
type IdempotencyStore interface {
	ClaimIdempotencyKey(ctx context.Context, userID int64, key string, ttl time.Duration) (bool, error)
	GetIdempotencyKey(ctx context.Context, userID int64, key string) (result string, pending bool, err error)
	SetIdempotencyKey(ctx context.Context, userID int64, key, result string, ttl time.Duration) error
	ReleaseIdempotencyKey(ctx context.Context, userID int64, key string) error
}

// Page is one page of a list endpoint
type Page[T any] struct {
	Items      []T
	TotalItems int
	Page       int
	PerPage    int
}

// TotalPages returns the number of pages needed for TotalItems
func (p Page[T]) TotalPages() int {
	if p.PerPage <= 0 {
		return 0
	}
	return (p.TotalItems + p.PerPage - 1) / p.PerPage
}

func newPage[T any](items []T, total int, params store.ListParams) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Items: items, TotalItems: total, Page: params.Page, PerPage: params.Limit}
}

// storeErr translates store sentinels into client-facing errors about entity.
// Anything unrecognised is wrapped and ends up as an internal error.
func storeErr(err error, entity string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(entity + " not found")
	case errors.Is(err, store.ErrForeignKeyViolation):
		return apperr.ConstraintViolation(entity + " is referenced by other records")
	case errors.Is(err, store.ErrUniqueViolation):
		return apperr.Conflict(entity + " already exists")
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return fmt.Errorf("%s: %w", entity, err)
}
