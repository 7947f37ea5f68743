package handler

import (
	"bytes"
	"fmt"
	"strconv"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/report"
	"go-pos-inventory/internal/service"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"
)

type ReportHandler struct {
	service   service.ReportService
	storeName string
}

func NewReportHandler(s service.ReportService, storeName string) *ReportHandler {
	return &ReportHandler{service: s, storeName: storeName}
}

// GetDashboard returns the admin overview or the cashier's own view
// GET /api/v1/dashboard
func (h *ReportHandler) GetDashboard(c *fiber.Ctx) error {
	p := principal(c)
	if p.Role == model.RoleAdmin {
		stats, err := h.service.DashboardStats(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"role": p.Role, "stats": stats})
	}

	stats, err := h.service.CashierStats(c.UserContext(), p.Username)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"role": p.Role, "stats": stats})
}

// GetSalesHistory GET /api/v1/sales/history
func (h *ReportHandler) GetSalesHistory(c *fiber.Ctx) error {
	history, err := h.service.SalesHistory(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(history)
}

// GetReports returns product and cashier performance side by side
// GET /api/v1/reports
func (h *ReportHandler) GetReports(c *fiber.Ctx) error {
	var (
		products []service.ProductSalesRow
		cashiers *service.CashierPerformanceReport
	)

	g, ctx := errgroup.WithContext(c.UserContext())
	g.Go(func() (err error) {
		products, err = h.service.ProductSalesReport(ctx)
		return err
	})
	g.Go(func() (err error) {
		cashiers, err = h.service.CashierPerformanceReport(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"product_sales":       products,
		"cashier_performance": cashiers.Cashiers,
		"overall_revenue":     cashiers.TotalRevenue,
		"overall_cost":        cashiers.TotalCost,
		"overall_profit":      cashiers.TotalProfit,
	})
}

// GetSalesTrend returns daily totals for charts
// Query params: days (default 7)
func (h *ReportHandler) GetSalesTrend(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days <= 0 {
		days = 7
	}

	data, err := h.service.SalesTrend(c.UserContext(), days)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"period": days,
		"data":   data,
	})
}

// GetStockValuation GET /api/v1/reports/valuation
func (h *ReportHandler) GetStockValuation(c *fiber.Ctx) error {
	v, err := h.service.StockValuation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(v)
}

// GetStockValuationPDF GET /api/v1/reports/valuation.pdf
func (h *ReportHandler) GetStockValuationPDF(c *fiber.Ctx) error {
	v, err := h.service.StockValuation(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := report.WriteStockValuation(&buf, v, h.storeName); err != nil {
		return respondError(c, err)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="stock-valuation-%s.pdf"`, v.GeneratedAt.Format("2006-01-02")))
	return c.Send(buf.Bytes())
}
