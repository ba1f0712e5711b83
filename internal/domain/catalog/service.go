package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vikraya/backend/internal/domain/shared"
)

// Service represents a seller's service listing. Services carry no
// stock counter; fulfillment is scheduled through service orders.
type Service struct {
	shared.BaseAggregateRoot
	SellerID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name            string          `gorm:"type:varchar(200);not null"`
	Description     string          `gorm:"type:text"`
	Price           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	DurationMinutes int             `gorm:"not null;default:0"`
	Status          ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Service) TableName() string {
	return "services"
}

// IsActive returns true if the service is listed
func (s *Service) IsActive() bool {
	return s.Status == ProductStatusActive
}

// NewService creates a new service listing
func NewService(sellerID uuid.UUID, name string, price decimal.Decimal) (*Service, error) {
	if sellerID == uuid.Nil {
		return nil, shared.NewValidationError("Seller ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("Service name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewValidationError("Service price cannot be negative")
	}

	return &Service{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		SellerID:          sellerID,
		Name:              name,
		Price:             price,
		Status:            ProductStatusActive,
	}, nil
}
