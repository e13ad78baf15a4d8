package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store/memory"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakePublisher struct {
	mu         sync.Mutex
	registered []*models.UserRegisteredEvent
	created    []*models.OrderCreatedEvent
	changed    []*models.OrderStatusChangedEvent
	err        error
}

func (p *fakePublisher) PublishUserRegistered(ctx context.Context, event *models.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, event)
	return p.err
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, event)
	return p.err
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, event *models.OrderStatusChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changed = append(p.changed, event)
	return p.err
}

type fakeSessions struct {
	mu       sync.Mutex
	sessions map[int64]string
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[int64]string{}}
}

func (f *fakeSessions) SetSession(ctx context.Context, userID int64, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[userID] = tokenID
	return nil
}

func (f *fakeSessions) GetSession(ctx context.Context, userID int64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[userID], nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, userID)
	return nil
}

const pending = "pending"

type fakeIdempotency struct {
	mu   sync.Mutex
	keys map[string]string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]string{}}
}

func idemKey(userID int64, key string) string {
	return fmt.Sprintf("%d:%s", userID, key)
}

func (f *fakeIdempotency) ClaimIdempotencyKey(ctx context.Context, userID int64, key string, ttl time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := idemKey(userID, key)
	if _, ok := f.keys[k]; ok {
		return false, nil
	}
	f.keys[k] = pending
	return true, nil
}

func (f *fakeIdempotency) GetIdempotencyKey(ctx context.Context, userID int64, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.keys[idemKey(userID, key)]
	if !ok {
		return "", false, nil
	}
	if v == pending {
		return "", true, nil
	}
	return v, false, nil
}

func (f *fakeIdempotency) SetIdempotencyKey(ctx context.Context, userID int64, key, result string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[idemKey(userID, key)] = result
	return nil
}

func (f *fakeIdempotency) ReleaseIdempotencyKey(ctx context.Context, userID int64, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, idemKey(userID, key))
	return nil
}

func boolPtr(b bool) *bool    { return &b }
func int64Ptr(n int64) *int64 { return &n }
func intPtr(n int) *int       { return &n }

// seedUser inserts a user directly into the store
func seedUser(t *testing.T, db *memory.Store, email, role string) *models.User {
	t.Helper()
	hash, err := auth.NewPasswordHasher(bcrypt.MinCost).Hash("secret123")
	require.NoError(t, err)
	user := &models.User{
		Name:         "Test User",
		Email:        email,
		Phone:        "0123456789",
		Address:      "1 Main Street",
		PasswordHash: hash,
		Role:         role,
		Verify:       true,
	}
	require.NoError(t, db.CreateUser(context.Background(), user))
	return user
}

// seedCatalog inserts a category with two products priced 50 and 100
func seedCatalog(t *testing.T, db *memory.Store) (*models.Category, *models.Product, *models.Product) {
	t.Helper()
	ctx := context.Background()
	category := &models.Category{Name: "Drinks", Desc: "Cold drinks", Status: true}
	require.NoError(t, db.CreateCategory(ctx, category))

	cola := &models.Product{Name: "Cola", Price: 50, Status: true, CategoryID: category.ID}
	require.NoError(t, db.CreateProduct(ctx, cola))
	juice := &models.Product{Name: "Juice", Price: 100, Status: true, CategoryID: category.ID}
	require.NoError(t, db.CreateProduct(ctx, juice))
	return category, cola, juice
}
