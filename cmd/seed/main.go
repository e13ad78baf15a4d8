// Command seed loads an administrator, a few demo customers and a small
// catalog into an empty database. Accounts that already exist are skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"shop-service/config"
	"shop-service/internal/auth"
	"shop-service/internal/models"
	"shop-service/internal/store"
	"shop-service/internal/util"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type seedProduct struct {
	name   string
	price  int64
	weight string
	origin string
}

var catalog = map[string][]seedProduct{
	"Drinks": {
		{name: "Cola", price: 15000, weight: "0.33", origin: "Vietnam"},
		{name: "Orange Juice", price: 25000, weight: "1.00", origin: "Thailand"},
	},
	"Snacks": {
		{name: "Potato Chips", price: 18000, weight: "0.15", origin: "Vietnam"},
		{name: "Peanuts", price: 12000, weight: "0.20", origin: "Vietnam"},
	},
	"Dairy": {
		{name: "Fresh Milk", price: 32000, weight: "1.00", origin: "New Zealand"},
	},
}

func main() {
	adminEmail := flag.String("admin-email", "admin@shop.local", "administrator email")
	adminPassword := flag.String("admin-password", "admin123", "administrator password")
	withCatalog := flag.Bool("catalog", true, "seed categories and products")
	flag.Parse()

	cfg := config.Load()
	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	if err := store.Migrate(cfg.Database.URL, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	users := []models.User{
		{Name: "Administrator", Email: *adminEmail, Phone: "0900000000", Address: "Head office", Gender: true, Role: models.RoleAdmin},
		{Name: "Jane Doe", Email: "jane@shop.local", Phone: "0911111111", Address: "12 Market Street", Role: models.RoleUser},
		{Name: "John Doe", Email: "john@shop.local", Phone: "0922222222", Address: "34 Harbor Road", Gender: true, Role: models.RoleUser},
	}

	err = db.WithTx(ctx, func(repo store.Repository) error {
		for i := range users {
			password := "secret123"
			if users[i].Role == models.RoleAdmin {
				password = *adminPassword
			}
			created, err := seedUser(ctx, repo, hasher, &users[i], password)
			if err != nil {
				return err
			}
			if created {
				logger.Info("Seeded user", zap.String("email", users[i].Email), zap.String("role", users[i].Role))
			}
		}

		if !*withCatalog {
			return nil
		}
		return seedCatalog(ctx, repo, logger)
	})
	if err != nil {
		logger.Fatal("Seeding failed", zap.Error(err))
	}

	logger.Info("Seeding complete")
}

func seedUser(ctx context.Context, repo store.Repository, hasher *auth.PasswordHasher, user *models.User, password string) (bool, error) {
	_, err := repo.GetUserByEmail(ctx, user.Email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, err
	}

	user.PasswordHash, err = hasher.Hash(password)
	if err != nil {
		return false, err
	}
	user.Verify = true
	return true, repo.CreateUser(ctx, user)
}

func seedCatalog(ctx context.Context, repo store.Repository, logger *zap.Logger) error {
	existing, total, err := repo.ListCategories(ctx, store.ListParams{Page: 1, Limit: 1})
	if err != nil {
		return err
	}
	if total > 0 {
		logger.Info("Catalog already present, skipping", zap.Int("categories", total), zap.Int("sampled", len(existing)))
		return nil
	}

	today := models.NewDate(time.Now())
	for name, products := range catalog {
		category := &models.Category{Name: name, Desc: name + " section", Status: true}
		if err := repo.CreateCategory(ctx, category); err != nil {
			return err
		}

		for _, p := range products {
			product := &models.Product{Name: p.name, Price: p.price, Status: true, CategoryID: category.ID}
			if err := repo.CreateProduct(ctx, product); err != nil {
				return err
			}

			detail := &models.ProductDetail{
				ProductID: product.ID,
				Intro:     p.name,
				Desc:      p.name + " from " + p.origin,
				Weight:    decimal.RequireFromString(p.weight),
				Mfg:       today,
				Exp:       models.NewDate(today.AddDate(1, 0, 0)),
				Origin:    p.origin,
				Manual:    "Store in a cool, dry place",
			}
			if err := repo.CreateProductDetail(ctx, detail); err != nil {
				return err
			}
		}
		logger.Info("Seeded category", zap.String("category", name), zap.Int("products", len(products)))
	}
	return nil
}
