package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var ErrImmutableSale = errors.New("sale records cannot be modified")

// Sale is an immutable record of one product sold at the register.
// ProductID carries no foreign key; the product may be deleted later while
// ProductName and the unit price/cost snapshot keep the history readable.
type Sale struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key;" json:"id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName  string          `gorm:"type:varchar(150)" json:"product_name"`
	QuantitySold int             `gorm:"not null" json:"quantity_sold"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unit_cost"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	TotalCost    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_cost"`
	SoldBy       string          `gorm:"type:varchar(100);index" json:"sold_by"`
	CashierID    *uuid.UUID      `gorm:"type:uuid" json:"cashier_id,omitempty"`
	CreatedAt    time.Time       `gorm:"index" json:"date"`
}

func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (s *Sale) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableSale
}

func (s *Sale) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableSale
}

// Profit is the margin realised by this sale.
func (s *Sale) Profit() decimal.Decimal {
	return s.TotalAmount.Sub(s.TotalCost)
}
