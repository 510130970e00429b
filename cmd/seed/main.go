package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/ssrocks/rishop-backend/internal/config"
	"github.com/ssrocks/rishop-backend/internal/db"
	"github.com/ssrocks/rishop-backend/internal/logging"
	"github.com/ssrocks/rishop-backend/internal/model"
	"github.com/ssrocks/rishop-backend/internal/repository"
	"go.uber.org/zap"
)

type seedUser struct {
	UID      string
	Username string
	Email    string
}

type seedProduct struct {
	Seller      int
	Name        string
	Description string
	Category    string
	Price       uint
	Stock       int
}

var users = []seedUser{
	{UID: "seed-sam", Username: "sam", Email: "sam@example.edu"},
	{UID: "seed-bea", Username: "bea", Email: "bea@example.edu"},
	{UID: "seed-kai", Username: "kai", Email: "kai@example.edu"},
}

var products = []seedProduct{
	{Seller: 0, Name: "Calculus: Early Transcendentals", Description: "8th edition, a few highlights in chapter 3.", Category: "books", Price: 2500, Stock: 1},
	{Seller: 0, Name: "Desk lamp", Description: "Warm LED, adjustable arm.", Category: "home", Price: 999, Stock: 2},
	{Seller: 1, Name: "Graphing calculator", Description: "TI-84 Plus, batteries included.", Category: "electronics", Price: 6000, Stock: 1},
	{Seller: 1, Name: "Mini fridge", Description: "Fits under a dorm desk. Pickup only.", Category: "home", Price: 8000, Stock: 1},
	{Seller: 2, Name: "Road bike", Description: "54cm frame, new tires last semester.", Category: "sports", Price: 30000, Stock: 1},
	{Seller: 2, Name: "Lab coat", Description: "Size M, worn for one term.", Category: "clothing", Price: 1200, Stock: 3},
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, repository.NewProductRepository(conn))
	if err != nil {
		return err
	}
	if !canSeed {
		logger.Info("products already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	var created int
	err = repository.NewTransactor(conn).WithinTransaction(ctx, func(r *repository.Repositories) error {
		sellers := make([]*model.User, len(users))
		for i, su := range users {
			u, err := ensureUser(ctx, r.Users, su)
			if err != nil {
				return err
			}
			sellers[i] = u
		}
		for _, sp := range products {
			p := &model.Product{
				Name:             sp.Name,
				Description:      sp.Description,
				Category:         sp.Category,
				Price:            sp.Price,
				StockQuantity:    sp.Stock,
				ProductAvailable: sp.Stock > 0,
				SellerID:         sellers[sp.Seller].ID,
			}
			if err := r.Products.Create(ctx, p); err != nil {
				return fmt.Errorf("insert product %q: %w", sp.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("seeded products", zap.Int("count", created), zap.Int("users", len(users)))
	return nil
}

func ensureUser(ctx context.Context, repo repository.UserRepository, su seedUser) (*model.User, error) {
	if u, err := repo.FindByUID(ctx, su.UID); err == nil {
		return u, nil
	}
	email := su.Email
	u := &model.User{UID: su.UID, Username: su.Username, Email: &email}
	if err := repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("insert user %q: %w", su.Username, err)
	}
	return u, nil
}

func shouldSeed(ctx context.Context, repo repository.ProductRepository) (bool, error) {
	cnt, err := repo.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count products: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}
