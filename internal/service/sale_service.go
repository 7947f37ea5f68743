package service

import (
	"context"
	"errors"
	"fmt"

	"go-pos-inventory/internal/cache"
	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	RecordSale(ctx context.Context, cashier model.Principal, req *RecordSaleRequest) (*model.Sale, error)
}

type RecordSaleRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"uuid_required"`
	Quantity  int       `json:"quantity" validate:"gt=0"`
}

type saleService struct {
	productRepo repository.ProductRepository
	saleRepo    repository.SaleRepository
	db          *gorm.DB
	reports     cache.ReportCache
	wsHub       *ws.Hub
}

func NewSaleService(pRepo repository.ProductRepository, sRepo repository.SaleRepository, db *gorm.DB, reports cache.ReportCache, hub *ws.Hub) SaleService {
	if reports == nil {
		reports = cache.Noop{}
	}
	return &saleService{
		productRepo: pRepo,
		saleRepo:    sRepo,
		db:          db,
		reports:     reports,
		wsHub:       hub,
	}
}

// RecordSale decrements stock and appends the sale in one transaction.
// The decrement is a single guarded UPDATE, so concurrent sales of the same
// product can never drive its quantity below zero.
func (s *saleService) RecordSale(ctx context.Context, cashier model.Principal, req *RecordSaleRequest) (*model.Sale, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	var sale *model.Sale
	var remaining int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.productRepo.FindByIDForUpdateTx(tx, req.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if product.Quantity < req.Quantity {
			return &InsufficientStockError{Product: product.Name, Available: product.Quantity, Requested: req.Quantity}
		}

		ok, err := s.productRepo.DecrementStock(tx, product.ID, req.Quantity, cashier.Username)
		if err != nil {
			return err
		}
		if !ok {
			// Another sale got there first; report what is left now.
			current, err := s.productRepo.FindByIDTx(tx, product.ID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductNotFound
				}
				return err
			}
			return &InsufficientStockError{Product: current.Name, Available: current.Quantity, Requested: req.Quantity}
		}

		qty := decimal.NewFromInt(int64(req.Quantity))
		sale = &model.Sale{
			ProductID:    product.ID,
			ProductName:  product.Name,
			QuantitySold: req.Quantity,
			UnitPrice:    product.Price,
			UnitCost:     product.Cost,
			TotalAmount:  product.Price.Mul(qty),
			TotalCost:    product.Cost.Mul(qty),
			SoldBy:       cashier.Username,
		}
		if cashier.UserID != uuid.Nil {
			id := cashier.UserID
			sale.CashierID = &id
		}
		if err := s.saleRepo.CreateTx(tx, sale); err != nil {
			return err
		}
		remaining = product.Quantity - req.Quantity
		if after, err := s.productRepo.FindByIDTx(tx, product.ID); err == nil {
			remaining = after.Quantity
		}
		return nil
	})
	if err != nil {
		var stockErr *InsufficientStockError
		if errors.Is(err, ErrProductNotFound) || errors.As(err, &stockErr) {
			return nil, err
		}
		return nil, fmt.Errorf("record sale: %w", err)
	}

	if err := s.reports.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("report cache invalidation failed")
	}

	s.wsHub.Publish(ws.Event{
		Type:    ws.EventSaleRecorded,
		Action:  "sale_created",
		Data:    sale,
		Actor:   cashier.Username,
		Message: fmt.Sprintf("%s sold %d x '%s'", cashier.Username, sale.QuantitySold, sale.ProductName),
	})
	s.wsHub.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: "stock_decremented",
		Data: map[string]interface{}{
			"id":        sale.ProductID,
			"name":      sale.ProductName,
			"new_stock": remaining,
		},
		Actor: cashier.Username,
	})
	return sale, nil
}
