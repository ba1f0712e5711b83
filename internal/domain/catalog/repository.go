package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository provides access to product listings
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	Save(ctx context.Context, product *Product) error
}

// ServiceRepository provides access to service listings
type ServiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Service, error)
	Save(ctx context.Context, service *Service) error
}

// StockRepository is the atomic stock adjustment primitive used by the
// order lifecycle. Adjust applies the delta in a single statement with
// a non-negative guard; it must only be invoked from within an order
// mutation's transaction so stock changes are never observed disjoint
// from the order event that caused them.
type StockRepository interface {
	Adjust(ctx context.Context, productID uuid.UUID, delta int) error
}
