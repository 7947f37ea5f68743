package model

import "github.com/shopspring/decimal"

// Product is the single mutable source of truth for current stock.
type Product struct {
	BaseModel
	Name     string          `gorm:"type:varchar(150);not null;index" json:"name"`
	Price    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Cost     decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`
	Quantity int             `gorm:"not null;default:0;check:chk_products_quantity,quantity >= 0" json:"quantity"`
	Category string          `gorm:"type:varchar(100)" json:"category"`
}

// InStock reports whether the product can be offered at the register.
func (p *Product) InStock() bool {
	return p.Quantity > 0
}
