// Package testutil provides an in-memory database for package tests.
package testutil

import (
	"fmt"
	"testing"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/pkg/database"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB returns a migrated, isolated SQLite database. The pool is limited to one
// connection so concurrent transactions serialize the way row locks do in Postgres.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite pool: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// SeedProduct inserts a product with two-decimal price and cost strings.
func SeedProduct(t testing.TB, db *gorm.DB, name, price, cost string, quantity int, category string) *model.Product {
	t.Helper()

	p := &model.Product{
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Cost:     decimal.RequireFromString(cost),
		Quantity: quantity,
		Category: category,
	}
	p.CreatedBy = "test"
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("seed product %s: %v", name, err)
	}
	return p
}

// SeedUser inserts an account with the given role and status.
func SeedUser(t testing.TB, db *gorm.DB, username, password string, role model.Role, status model.AccountStatus) *model.User {
	t.Helper()

	u := &model.User{Username: username, Role: role, Status: status}
	if err := u.SetPassword(password); err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u.CreatedBy = "test"
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}
