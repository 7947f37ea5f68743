package repository_test

import (
	"context"
	"testing"
	"time"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSale(productID uuid.UUID, name string, qty int, price, cost, soldBy string, at time.Time) *model.Sale {
	p := decimal.RequireFromString(price)
	c := decimal.RequireFromString(cost)
	q := decimal.NewFromInt(int64(qty))
	return &model.Sale{
		ProductID:    productID,
		ProductName:  name,
		QuantitySold: qty,
		UnitPrice:    p,
		UnitCost:     c,
		TotalAmount:  p.Mul(q),
		TotalCost:    c.Mul(q),
		SoldBy:       soldBy,
		CreatedAt:    at,
	}
}

func seedSales(t *testing.T, db *gorm.DB) (soap, notebook uuid.UUID) {
	t.Helper()
	repo := repository.NewSaleRepo(db)
	soap, notebook = uuid.New(), uuid.New()
	now := time.Now()

	for _, s := range []*model.Sale{
		newSale(soap, "Soap Bar", 3, "25.00", "10.00", "cashier1", now.Add(-3*time.Minute)),
		newSale(notebook, "Notebook", 2, "80.00", "40.00", "cashier2", now.Add(-2*time.Minute)),
		newSale(soap, "Soap Bar", 1, "25.00", "10.00", "cashier2", now.Add(-1*time.Minute)),
	} {
		require.NoError(t, repo.CreateTx(db, s))
	}
	return soap, notebook
}

func TestSaleRepo_ProductSummary(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSaleRepo(db)
	soap, notebook := seedSales(t, db)

	rows, err := repo.ProductSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, notebook, rows[0].ProductID)
	assert.EqualValues(t, 2, rows[0].TotalSold)
	assert.True(t, rows[0].Revenue.Equal(decimal.RequireFromString("160.00")))

	assert.Equal(t, soap, rows[1].ProductID)
	assert.Equal(t, "Soap Bar", rows[1].ProductName)
	assert.EqualValues(t, 4, rows[1].TotalSold)
	assert.True(t, rows[1].Revenue.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, rows[1].Cost.Equal(decimal.RequireFromString("40.00")))
}

func TestSaleRepo_ProductSummaryUsesLatestName(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSaleRepo(db)
	soap := uuid.New()
	now := time.Now()

	for _, s := range []*model.Sale{
		newSale(soap, "Soap Bar", 3, "25.00", "10.00", "cashier1", now.Add(-2*time.Minute)),
		newSale(soap, "Soap Bar XL", 2, "25.00", "10.00", "cashier1", now.Add(-1*time.Minute)),
	} {
		require.NoError(t, repo.CreateTx(db, s))
	}

	rows, err := repo.ProductSummary(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, soap, rows[0].ProductID)
	assert.Equal(t, "Soap Bar XL", rows[0].ProductName)
	assert.EqualValues(t, 5, rows[0].TotalSold)
	assert.True(t, rows[0].Revenue.Equal(decimal.RequireFromString("125.00")))
}

func TestSaleRepo_CashierSummaryAndTotals(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSaleRepo(db)
	ctx := context.Background()
	seedSales(t, db)

	rows, err := repo.CashierSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "cashier2", rows[0].SoldBy)
	assert.EqualValues(t, 2, rows[0].Transactions)
	assert.True(t, rows[0].Revenue.Equal(decimal.RequireFromString("185.00")))
	assert.Equal(t, "cashier1", rows[1].SoldBy)

	totals, err := repo.Totals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, totals.Transactions)
	assert.EqualValues(t, 6, totals.Units)
	assert.True(t, totals.Revenue.Equal(decimal.RequireFromString("260.00")))
	assert.True(t, totals.Cost.Equal(decimal.RequireFromString("120.00")))

	mine, err := repo.TotalsBySeller(ctx, "cashier1")
	require.NoError(t, err)
	assert.True(t, mine.Revenue.Equal(decimal.RequireFromString("75.00")))

	none, err := repo.TotalsBySeller(ctx, "nobody")
	require.NoError(t, err)
	assert.True(t, none.Revenue.IsZero())
}

func TestSaleRepo_RecentOrdering(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewSaleRepo(db)
	ctx := context.Background()
	seedSales(t, db)

	recent, err := repo.FindRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "cashier2", recent[0].SoldBy)
	assert.Equal(t, 1, recent[0].QuantitySold)

	mine, err := repo.FindRecentBySeller(ctx, "cashier1", 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Soap Bar", mine[0].ProductName)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[0].CreatedAt.After(all[2].CreatedAt))
}

func TestSaleRepo_Immutable(t *testing.T) {
	db := testutil.NewDB(t)
	seedSales(t, db)

	var sale model.Sale
	require.NoError(t, db.First(&sale).Error)

	sale.QuantitySold = 99
	assert.ErrorIs(t, db.Save(&sale).Error, model.ErrImmutableSale)
	assert.ErrorIs(t, db.Delete(&sale).Error, model.ErrImmutableSale)
}
