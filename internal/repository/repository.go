package repository

import (
	"context"

	"github.com/trickreich/SuluSyliusProducerPlugin/internal/domain"
)

// ProductRepository loads hydrated product graphs from the catalogue.
type ProductRepository interface {
	// GetByCode returns the product with the given code. A missing product is
	// reported as apperrors.ErrNotFound.
	GetByCode(ctx context.Context, code string) (domain.Product, error)

	// GetByID returns the product with the given primary key.
	GetByID(ctx context.Context, id int64) (domain.Product, error)

	// ListCodes returns one page of product codes in code order together with
	// the total number of products.
	ListCodes(ctx context.Context, limit, offset int) ([]string, int, error)
}
