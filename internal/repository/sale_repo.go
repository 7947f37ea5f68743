package repository

import (
	"context"
	"time"

	"go-pos-inventory/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleRepository interface {
	CreateTx(tx *gorm.DB, sale *model.Sale) error
	FindAll(ctx context.Context) ([]model.Sale, error)
	FindRecent(ctx context.Context, limit int) ([]model.Sale, error)
	FindRecentBySeller(ctx context.Context, username string, limit int) ([]model.Sale, error)
	Count(ctx context.Context) (int64, error)
	Totals(ctx context.Context) (*SaleTotals, error)
	TotalsBySeller(ctx context.Context, username string) (*SaleTotals, error)
	ProductSummary(ctx context.Context) ([]ProductSalesRow, error)
	CashierSummary(ctx context.Context) ([]CashierSalesRow, error)
	DailyTrend(ctx context.Context, startDate, endDate time.Time) ([]DailySalesRow, error)
}

// SaleTotals is a revenue/cost rollup over a set of sales.
type SaleTotals struct {
	Transactions int64           `json:"transactions"`
	Units        int64           `json:"units"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
}

type ProductSalesRow struct {
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	TotalSold   int64           `json:"total_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
}

type CashierSalesRow struct {
	SoldBy       string          `json:"sold_by"`
	Transactions int64           `json:"transactions"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
}

// DailySalesRow feeds the sales trend chart.
type DailySalesRow struct {
	Date    string          `json:"date"`
	Units   int64           `json:"units"`
	Revenue decimal.Decimal `json:"revenue"`
	Cost    decimal.Decimal `json:"cost"`
}

const totalsSelect = `
	COUNT(*) as transactions,
	COALESCE(SUM(quantity_sold), 0) as units,
	COALESCE(SUM(total_amount), 0) as revenue,
	COALESCE(SUM(total_cost), 0) as cost`

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) CreateTx(tx *gorm.DB, sale *model.Sale) error {
	return tx.Create(sale).Error
}

func (r *saleRepo) FindAll(ctx context.Context) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindRecent(ctx context.Context, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&sales).Error
	return sales, err
}

func (r *saleRepo) FindRecentBySeller(ctx context.Context, username string, limit int) ([]model.Sale, error) {
	var sales []model.Sale
	err := r.db.WithContext(ctx).
		Where("sold_by = ?", username).
		Order("created_at DESC").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}

func (r *saleRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Count(&n).Error
	return n, err
}

func (r *saleRepo) Totals(ctx context.Context) (*SaleTotals, error) {
	var totals SaleTotals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Select(totalsSelect).Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *saleRepo) TotalsBySeller(ctx context.Context, username string) (*SaleTotals, error) {
	var totals SaleTotals
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(totalsSelect).
		Where("sold_by = ?", username).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &totals, nil
}

// ProductSummary groups sales by product id. The name shown is the one on the
// product's latest sale, so a renamed product stays a single row. Products that
// were deleted afterwards are still included.
func (r *saleRepo) ProductSummary(ctx context.Context) ([]ProductSalesRow, error) {
	var rows []ProductSalesRow
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`
			sales.product_id as product_id,
			(SELECT latest.product_name FROM sales latest
				WHERE latest.product_id = sales.product_id
				ORDER BY latest.created_at DESC, latest.id DESC LIMIT 1) as product_name,
			COALESCE(SUM(sales.quantity_sold), 0) as total_sold,
			COALESCE(SUM(sales.total_amount), 0) as revenue,
			COALESCE(SUM(sales.total_cost), 0) as cost
		`).
		Group("sales.product_id").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) CashierSummary(ctx context.Context) ([]CashierSalesRow, error) {
	var rows []CashierSalesRow
	err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`
			sold_by,
			COUNT(*) as transactions,
			COALESCE(SUM(total_amount), 0) as revenue,
			COALESCE(SUM(total_cost), 0) as cost
		`).
		Group("sold_by").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *saleRepo) DailyTrend(ctx context.Context, startDate, endDate time.Time) ([]DailySalesRow, error) {
	rows, err := r.db.WithContext(ctx).Model(&model.Sale{}).
		Select(`
			DATE(created_at) as date,
			COALESCE(SUM(quantity_sold), 0) as units,
			COALESCE(SUM(total_amount), 0) as revenue,
			COALESCE(SUM(total_cost), 0) as cost
		`).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Group("DATE(created_at)").
		Order("date ASC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []DailySalesRow
	for rows.Next() {
		var data DailySalesRow
		if err := rows.Scan(&data.Date, &data.Units, &data.Revenue, &data.Cost); err != nil {
			return nil, err
		}
		if len(data.Date) > 10 {
			data.Date = data.Date[:10]
		}
		results = append(results, data)
	}
	return results, rows.Err()
}
