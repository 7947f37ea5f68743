// Package seed prepares a fresh database: the first admin and optional demo data.
package seed

import (
	"context"
	"errors"
	"fmt"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Options struct {
	AdminUsername string
	AdminPassword string
	DemoData      bool
}

type demoSale struct {
	product string
	qty     int
	soldBy  string
}

var demoProducts = []model.Product{
	{Name: "Soap Bar", Price: decimal.RequireFromString("25.00"), Cost: decimal.RequireFromString("10.00"), Quantity: 100, Category: "Toiletries"},
	{Name: "Notebook", Price: decimal.RequireFromString("80.00"), Cost: decimal.RequireFromString("40.00"), Quantity: 50, Category: "Stationery"},
	{Name: "Bottle Water", Price: decimal.RequireFromString("20.00"), Cost: decimal.RequireFromString("8.00"), Quantity: 200, Category: "Beverages"},
}

var demoSales = []demoSale{
	{"Soap Bar", 3, "cashier1"},
	{"Notebook", 2, "cashier2"},
	{"Bottle Water", 5, "cashier1"},
}

// Run is safe to call on every start; each step only acts on an empty table.
func Run(ctx context.Context, db *gorm.DB, opts Options) error {
	userRepo := repository.NewUserRepo(db)
	productRepo := repository.NewProductRepo(db)
	saleRepo := repository.NewSaleRepo(db)

	if err := ensureAdmin(ctx, userRepo, opts.AdminUsername, opts.AdminPassword); err != nil {
		return err
	}
	if !opts.DemoData {
		return nil
	}

	n, err := productRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n == 0 {
		for _, p := range demoProducts {
			p.CreatedBy = model.SystemPrincipal.Username
			p.UpdatedBy = model.SystemPrincipal.Username
			if err := productRepo.Create(ctx, &p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.Name, err)
			}
		}
		log.Info().Int("count", len(demoProducts)).Msg("demo products created")
	}

	n, err = saleRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count sales: %w", err)
	}
	if n > 0 {
		return nil
	}

	products, err := productRepo.FindAll(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	byName := make(map[string]model.Product, len(products))
	for _, p := range products {
		byName[p.Name] = p
	}

	// Demo sales go through the recorder so stock is adjusted the same way.
	recorder := service.NewSaleService(productRepo, saleRepo, db, cache.Noop{}, nil)
	recorded := 0
	for _, s := range demoSales {
		p, ok := byName[s.product]
		if !ok || p.Quantity < s.qty {
			continue
		}
		cashier := model.Principal{Username: s.soldBy, Role: model.RoleCashier}
		if _, err := recorder.RecordSale(ctx, cashier, &service.RecordSaleRequest{ProductID: p.ID, Quantity: s.qty}); err != nil {
			return fmt.Errorf("seed sale %s: %w", s.product, err)
		}
		recorded++
	}
	log.Info().Int("count", recorded).Msg("demo sales created and inventory adjusted")
	return nil
}

func ensureAdmin(ctx context.Context, repo repository.UserRepository, username, password string) error {
	if username == "" {
		return nil
	}
	_, err := repo.FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("find admin: %w", err)
	}

	admin := &model.User{
		Username: username,
		Role:     model.RoleAdmin,
		Status:   model.StatusApproved,
	}
	admin.CreatedBy = model.SystemPrincipal.Username
	admin.UpdatedBy = model.SystemPrincipal.Username
	if err := admin.SetPassword(password); err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := repo.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Str("username", username).Msg("admin account created")
	return nil
}
