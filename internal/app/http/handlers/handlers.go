package handlers

import (
	"context"

	"go.uber.org/zap"

	"logolate/go_backend/internal/domain/cart"
	"logolate/go_backend/internal/domain/catalog"
	"logolate/go_backend/internal/domain/quote"
	"logolate/go_backend/internal/domain/quote/pdf"
	"logolate/go_backend/internal/infra/backend"
)

// Backoffice is the slice of the REST backend the storefront and admin screens use.
type Backoffice interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, p catalog.Product) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error

	ListCategories(ctx context.Context) ([]catalog.Category, error)
	CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error)
	UpdateCategory(ctx context.Context, id string, c catalog.Category) (catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListBudgets(ctx context.Context, status quote.Status) ([]quote.Quote, error)
	GetBudget(ctx context.Context, id string) (quote.Quote, error)
	UpdateBudgetStatus(ctx context.Context, id string, status quote.Status) (quote.Quote, error)

	GeneralConfig(ctx context.Context) (backend.GeneralConfig, error)
	UpdateGeneralConfig(ctx context.Context, cfg backend.GeneralConfig) (backend.GeneralConfig, error)
}

type Handlers struct {
	Carts   *cart.Registry
	Catalog *catalog.Service
	Quotes  *quote.Assembler
	Backend Backoffice
	PDF     pdf.Generator
	Log     *zap.Logger
}

func New(carts *cart.Registry, cat *catalog.Service, quotes *quote.Assembler, b Backoffice, gen pdf.Generator, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		Carts:   carts,
		Catalog: cat,
		Quotes:  quotes,
		Backend: b,
		PDF:     gen,
		Log:     log,
	}
}
