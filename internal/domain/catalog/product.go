package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikraya/backend/internal/domain/shared"
)

// ProductStatus represents the listing status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// Product represents a seller's product listing.
// The stock counter on this row is only ever adjusted through
// StockRepository.Adjust from within an order transaction.
type Product struct {
	shared.BaseAggregateRoot
	SellerID      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_product_seller_sku,priority:1"`
	SKU           string          `gorm:"type:varchar(50);not null;uniqueIndex:idx_product_seller_sku,priority:2"`
	Name          string          `gorm:"type:varchar(200);not null"`
	Description   string          `gorm:"type:text"`
	Unit          string          `gorm:"type:varchar(20);not null;default:'pcs'"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	StockQuantity int             `gorm:"not null;default:0"`
	Status        ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product listing
func NewProduct(sellerID uuid.UUID, sku, name string, sellingPrice decimal.Decimal) (*Product, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewValidationError("Seller ID cannot be empty")
	}
	if strings.TrimSpace(sku) == "" {
		return nil, shared.NewValidationError("Product SKU cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Product name cannot be empty")
	}
	if sellingPrice.IsNegative() {
		return nil, shared.NewValidationError("Selling price cannot be negative")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		SKU:               strings.ToUpper(sku),
		Name:              name,
		Unit:              "pcs",
		SellingPrice:      sellingPrice,
		Status:            ProductStatusActive,
	}, nil
}

// IsActive returns true if the product is listed
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// HasStock returns true if at least quantity units are available
func (p *Product) HasStock(quantity int) bool {
	return p.StockQuantity >= quantity
}
