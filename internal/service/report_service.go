package service

import (
	"context"
	"sort"
	"time"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const uncategorized = "Uncategorized"

var hundred = decimal.NewFromInt(100)

type ReportService interface {
	ProductSalesReport(ctx context.Context) ([]ProductSalesRow, error)
	CashierPerformanceReport(ctx context.Context) (*CashierPerformanceReport, error)
	SalesHistory(ctx context.Context) (*SalesHistory, error)
	DashboardStats(ctx context.Context) (*DashboardStats, error)
	CashierStats(ctx context.Context, username string) (*CashierStats, error)
	SalesTrend(ctx context.Context, days int) ([]repository.DailySalesRow, error)
	StockValuation(ctx context.Context) (*StockValuation, error)
}

type ProductSalesRow struct {
	ProductID   uuid.UUID        `json:"product_id"`
	ProductName string           `json:"product_name"`
	TotalSold   int64            `json:"total_sold"`
	Revenue     decimal.Decimal  `json:"revenue"`
	Cost        decimal.Decimal  `json:"cost"`
	Profit      decimal.Decimal  `json:"profit"`
	Margin      *decimal.Decimal `json:"margin"` // percent, nil without revenue
}

type CashierPerformanceRow struct {
	SoldBy       string          `json:"sold_by"`
	Transactions int64           `json:"transactions"`
	Revenue      decimal.Decimal `json:"revenue"`
	Cost         decimal.Decimal `json:"cost"`
	Profit       decimal.Decimal `json:"profit"`
}

type CashierPerformanceReport struct {
	Cashiers     []CashierPerformanceRow `json:"cashiers"`
	TotalRevenue decimal.Decimal         `json:"total_revenue"`
	TotalCost    decimal.Decimal         `json:"total_cost"`
	TotalProfit  decimal.Decimal         `json:"total_profit"`
}

type SalesHistory struct {
	Sales        []model.Sale    `json:"sales"`
	Count        int             `json:"count"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	TotalProfit  decimal.Decimal `json:"total_profit"`
}

type DashboardStats struct {
	TotalUsers    int64           `json:"total_users"`
	PendingUsers  int64           `json:"pending_users"`
	TotalProducts int64           `json:"total_products"`
	LowStockCount int64           `json:"low_stock"`
	LowStockBelow int             `json:"low_stock_threshold"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	RecentSales   []model.Sale    `json:"recent_sales"`
}

type CashierStats struct {
	Products []model.Product `json:"products"`
	MySales  []model.Sale    `json:"my_sales"`
	MyTotal  decimal.Decimal `json:"my_total"`
}

type StockValuationItem struct {
	ProductID   uuid.UUID       `json:"product_id"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	CostValue   decimal.Decimal `json:"cost_value"`
	RetailValue decimal.Decimal `json:"retail_value"`
}

type StockValuationCategory struct {
	Category    string               `json:"category"`
	Items       []StockValuationItem `json:"items"`
	Units       int                  `json:"units"`
	CostValue   decimal.Decimal      `json:"cost_value"`
	RetailValue decimal.Decimal      `json:"retail_value"`
}

type StockValuation struct {
	Categories  []StockValuationCategory `json:"categories"`
	Units       int                      `json:"units"`
	CostValue   decimal.Decimal          `json:"cost_value"`
	RetailValue decimal.Decimal          `json:"retail_value"`
	GeneratedAt time.Time                `json:"generated_at"`
}

// ReportOptions tunes the dashboards.
type ReportOptions struct {
	LowStockThreshold int
	RecentSalesLimit  int
}

type reportService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	reports     cache.ReportCache
	opts        ReportOptions
}

func NewReportService(uRepo repository.UserRepository, pRepo repository.ProductRepository, sRepo repository.SaleRepository, reports cache.ReportCache, opts ReportOptions) ReportService {
	if reports == nil {
		reports = cache.Noop{}
	}
	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = 10
	}
	if opts.RecentSalesLimit <= 0 {
		opts.RecentSalesLimit = 10
	}
	return &reportService{
		userRepo:    uRepo,
		productRepo: pRepo,
		saleRepo:    sRepo,
		reports:     reports,
		opts:        opts,
	}
}

// margin returns profit as a percentage of revenue, or nil when nothing was earned.
func margin(revenue, profit decimal.Decimal) *decimal.Decimal {
	if !revenue.IsPositive() {
		return nil
	}
	m := profit.Div(revenue).Mul(hundred).Round(2)
	return &m
}

// ProductSalesReport aggregates every sale by product, including products
// deleted since. Products that never sold are absent.
func (s *reportService) ProductSalesReport(ctx context.Context) ([]ProductSalesRow, error) {
	var cached []ProductSalesRow
	hit, gen := s.reports.Get(ctx, cache.KeyProductReport, &cached)
	if hit {
		return cached, nil
	}

	rows, err := s.saleRepo.ProductSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := make([]ProductSalesRow, len(rows))
	for i, r := range rows {
		profit := r.Revenue.Sub(r.Cost)
		report[i] = ProductSalesRow{
			ProductID:   r.ProductID,
			ProductName: r.ProductName,
			TotalSold:   r.TotalSold,
			Revenue:     r.Revenue,
			Cost:        r.Cost,
			Profit:      profit,
			Margin:      margin(r.Revenue, profit),
		}
	}

	s.store(ctx, cache.KeyProductReport, gen, report)
	return report, nil
}

func (s *reportService) CashierPerformanceReport(ctx context.Context) (*CashierPerformanceReport, error) {
	var cached CashierPerformanceReport
	hit, gen := s.reports.Get(ctx, cache.KeyCashierReport, &cached)
	if hit {
		return &cached, nil
	}

	rows, err := s.saleRepo.CashierSummary(ctx)
	if err != nil {
		return nil, err
	}

	report := &CashierPerformanceReport{
		Cashiers:     make([]CashierPerformanceRow, len(rows)),
		TotalRevenue: decimal.Zero,
		TotalCost:    decimal.Zero,
	}
	for i, r := range rows {
		report.Cashiers[i] = CashierPerformanceRow{
			SoldBy:       r.SoldBy,
			Transactions: r.Transactions,
			Revenue:      r.Revenue,
			Cost:         r.Cost,
			Profit:       r.Revenue.Sub(r.Cost),
		}
		report.TotalRevenue = report.TotalRevenue.Add(r.Revenue)
		report.TotalCost = report.TotalCost.Add(r.Cost)
	}
	report.TotalProfit = report.TotalRevenue.Sub(report.TotalCost)

	s.store(ctx, cache.KeyCashierReport, gen, report)
	return report, nil
}

func (s *reportService) SalesHistory(ctx context.Context) (*SalesHistory, error) {
	sales, err := s.saleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	h := &SalesHistory{Sales: sales, Count: len(sales), TotalRevenue: decimal.Zero, TotalCost: decimal.Zero}
	for _, sale := range sales {
		h.TotalRevenue = h.TotalRevenue.Add(sale.TotalAmount)
		h.TotalCost = h.TotalCost.Add(sale.TotalCost)
	}
	h.TotalProfit = h.TotalRevenue.Sub(h.TotalCost)
	return h, nil
}

func (s *reportService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{LowStockBelow: s.opts.LowStockThreshold}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalUsers, err = s.userRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.PendingUsers, err = s.userRepo.CountByStatus(gctx, model.StatusPending)
		return err
	})
	g.Go(func() (err error) {
		stats.TotalProducts, err = s.productRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.LowStockCount, err = s.productRepo.CountBelow(gctx, s.opts.LowStockThreshold)
		return err
	})
	g.Go(func() error {
		totals, err := s.saleRepo.Totals(gctx)
		if err != nil {
			return err
		}
		stats.TotalSales = totals.Revenue
		stats.TotalProfit = totals.Revenue.Sub(totals.Cost)
		return nil
	})
	g.Go(func() (err error) {
		stats.RecentSales, err = s.saleRepo.FindRecent(gctx, s.opts.RecentSalesLimit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

func (s *reportService) CashierStats(ctx context.Context, username string) (*CashierStats, error) {
	products, err := s.productRepo.FindAvailable(ctx)
	if err != nil {
		return nil, err
	}
	mine, err := s.saleRepo.FindRecentBySeller(ctx, username, s.opts.RecentSalesLimit)
	if err != nil {
		return nil, err
	}
	totals, err := s.saleRepo.TotalsBySeller(ctx, username)
	if err != nil {
		return nil, err
	}
	return &CashierStats{Products: products, MySales: mine, MyTotal: totals.Revenue}, nil
}

// SalesTrend returns per-day totals for the last days days.
func (s *reportService) SalesTrend(ctx context.Context, days int) ([]repository.DailySalesRow, error) {
	if days <= 0 {
		days = 7
	}
	if days > 365 {
		days = 365
	}
	endDate := time.Now()
	startDate := endDate.AddDate(0, 0, -days)
	return s.saleRepo.DailyTrend(ctx, startDate, endDate)
}

// StockValuation values stock on hand at cost and at retail, per category.
func (s *reportService) StockValuation(ctx context.Context) (*StockValuation, error) {
	products, err := s.productRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := map[string]*StockValuationCategory{}
	for _, p := range products {
		name := p.Category
		if name == "" {
			name = uncategorized
		}
		cat, ok := byCategory[name]
		if !ok {
			cat = &StockValuationCategory{Category: name, CostValue: decimal.Zero, RetailValue: decimal.Zero}
			byCategory[name] = cat
		}

		qty := decimal.NewFromInt(int64(p.Quantity))
		item := StockValuationItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Quantity:    p.Quantity,
			UnitCost:    p.Cost,
			UnitPrice:   p.Price,
			CostValue:   p.Cost.Mul(qty),
			RetailValue: p.Price.Mul(qty),
		}
		cat.Items = append(cat.Items, item)
		cat.Units += p.Quantity
		cat.CostValue = cat.CostValue.Add(item.CostValue)
		cat.RetailValue = cat.RetailValue.Add(item.RetailValue)
	}

	v := &StockValuation{CostValue: decimal.Zero, RetailValue: decimal.Zero, GeneratedAt: time.Now()}
	for _, cat := range byCategory {
		v.Categories = append(v.Categories, *cat)
		v.Units += cat.Units
		v.CostValue = v.CostValue.Add(cat.CostValue)
		v.RetailValue = v.RetailValue.Add(cat.RetailValue)
	}
	sort.Slice(v.Categories, func(i, j int) bool {
		return v.Categories[i].Category < v.Categories[j].Category
	})
	return v, nil
}

// store files a computed report under the generation read before computing it.
func (s *reportService) store(ctx context.Context, key string, gen int64, value interface{}) {
	if err := s.reports.Set(ctx, key, gen, value); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
