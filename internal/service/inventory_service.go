package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-pos-inventory/internal/model"
	"go-pos-inventory/internal/repository"
	"go-pos-inventory/internal/ws"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type InventoryService interface {
	AddProduct(ctx context.Context, req *ProductRequest, actor model.Principal) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductUpdateRequest, actor model.Principal) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Principal) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListAvailable(ctx context.Context) ([]model.Product, error)
	ListAll(ctx context.Context) ([]model.Product, error)
}

type ProductRequest struct {
	Name     string           `json:"name" validate:"required,max=150"`
	Price    *decimal.Decimal `json:"price" validate:"required,gte=0"`
	Cost     *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
	Quantity *int             `json:"quantity" validate:"required,gte=0"`
	Category string           `json:"category" validate:"max=100"`
}

// ProductUpdateRequest overwrites only the fields that are present.
type ProductUpdateRequest struct {
	Name     *string          `json:"name" validate:"omitempty,max=150"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Cost     *decimal.Decimal `json:"cost" validate:"omitempty,gte=0"`
	Quantity *int             `json:"quantity" validate:"omitempty,gte=0"`
	Category *string          `json:"category" validate:"omitempty,max=100"`
}

type inventoryService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	wsHub       *ws.Hub
}

func NewInventoryService(pRepo repository.ProductRepository, db *gorm.DB, hub *ws.Hub) InventoryService {
	return &inventoryService{
		productRepo: pRepo,
		db:          db,
		wsHub:       hub,
	}
}

func (s *inventoryService) AddProduct(ctx context.Context, req *ProductRequest, actor model.Principal) (*model.Product, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)
	if err := validate(req); err != nil {
		return nil, err
	}

	cost := decimal.Zero
	if req.Cost != nil {
		cost = *req.Cost
	}

	product := &model.Product{
		Name:     req.Name,
		Price:    req.Price.Round(2),
		Cost:     cost.Round(2),
		Quantity: *req.Quantity,
		Category: req.Category,
	}
	product.CreatedBy = actor.Username
	product.UpdatedBy = actor.Username

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.publishStock("product_created", product, actor, fmt.Sprintf("%s created product '%s'", actor.Username, product.Name))
	return product, nil
}

// UpdateProduct applies every supplied field or none of them.
func (s *inventoryService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductUpdateRequest, actor model.Principal) (*model.Product, error) {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalid("name", "is required")
		}
		req.Name = &name
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var updated model.Product
	var oldQuantity int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Locked so a sale committing meanwhile is not undone by the save below.
		existing, err := s.productRepo.FindByIDForUpdateTx(tx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		oldQuantity = existing.Quantity

		if req.Name != nil {
			existing.Name = *req.Name
		}
		if req.Price != nil {
			existing.Price = req.Price.Round(2)
		}
		if req.Cost != nil {
			existing.Cost = req.Cost.Round(2)
		}
		if req.Quantity != nil {
			existing.Quantity = *req.Quantity
		}
		if req.Category != nil {
			existing.Category = strings.TrimSpace(*req.Category)
		}
		existing.UpdatedBy = actor.Username

		if err := s.productRepo.SaveTx(tx, existing); err != nil {
			return err
		}
		updated = *existing
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrProductNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.wsHub.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: "product_updated",
		Data: map[string]interface{}{
			"id":        updated.ID,
			"name":      updated.Name,
			"old_stock": oldQuantity,
			"new_stock": updated.Quantity,
			"price":     updated.Price,
		},
		Actor:   actor.Username,
		Message: fmt.Sprintf("%s updated product '%s'", actor.Username, updated.Name),
	})
	return &updated, nil
}

// DeleteProduct removes the product. Sales keep their own copy of its name and prices.
func (s *inventoryService) DeleteProduct(ctx context.Context, id uuid.UUID, actor model.Principal) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	s.publishStock("product_deleted", product, actor, fmt.Sprintf("%s deleted product '%s'", actor.Username, product.Name))
	return nil
}

func (s *inventoryService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *inventoryService) ListAvailable(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAvailable(ctx)
}

func (s *inventoryService) ListAll(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.FindAll(ctx)
}

func (s *inventoryService) publishStock(action string, p *model.Product, actor model.Principal, message string) {
	s.wsHub.Publish(ws.Event{
		Type:   ws.EventStockUpdate,
		Action: action,
		Data: map[string]interface{}{
			"id":       p.ID,
			"name":     p.Name,
			"quantity": p.Quantity,
			"price":    p.Price,
		},
		Actor:   actor.Username,
		Message: message,
	})
}
