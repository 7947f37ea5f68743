package service_test

import (
	"testing"
	"time"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/service"
	"go-pos-inventory/internal/testutil"
	"go-pos-inventory/internal/ws"
	"go-pos-inventory/pkg/jwt"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	hub       *ws.Hub
	issuer    *jwt.Issuer
	users     repository.UserRepository
	products  repository.ProductRepository
	sales     repository.SaleRepository
	auth      service.AuthService
	accounts  service.UserService
	inventory service.InventoryService
	recorder  service.SaleService
	reports   service.ReportService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, cache.Noop{}, false)
}

func newFixtureWith(t *testing.T, reportCache cache.ReportCache, allowRegistration bool) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:       db,
		hub:      ws.NewHub(),
		issuer:   jwt.NewIssuer("test-secret", time.Hour),
		users:    repository.NewUserRepo(db),
		products: repository.NewProductRepo(db),
		sales:    repository.NewSaleRepo(db),
	}
	f.auth = service.NewAuthService(f.users, f.issuer, allowRegistration)
	f.accounts = service.NewUserService(f.users, f.hub)
	f.inventory = service.NewInventoryService(f.products, db, f.hub)
	f.recorder = service.NewSaleService(f.products, f.sales, db, reportCache, f.hub)
	f.reports = service.NewReportService(f.users, f.products, f.sales, reportCache, service.ReportOptions{
		LowStockThreshold: 10,
		RecentSalesLimit:  10,
	})
	return f
}

func (f *fixture) cashier(t *testing.T, username string) model.Principal {
	t.Helper()
	return testutil.SeedUser(t, f.db, username, "secret1", model.RoleCashier, model.StatusApproved).Principal()
}

func (f *fixture) admin(t *testing.T) model.Principal {
	t.Helper()
	return testutil.SeedUser(t, f.db, "admin", "admin123", model.RoleAdmin, model.StatusApproved).Principal()
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got.String())
}
