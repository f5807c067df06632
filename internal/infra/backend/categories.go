package backend

import (
	"context"
	"net/http"

	"logolate/go_backend/internal/domain/catalog"
)

type categoryBody struct {
	Nombre      string `json:"nombre"`
	Slug        string `json:"slug,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Imagen      string `json:"imagen,omitempty"`
}

func newCategoryBody(cat catalog.Category) categoryBody {
	return categoryBody{Nombre: cat.Name, Slug: cat.Slug, Descripcion: cat.Description, Imagen: cat.ImageURL}
}

func (c *Client) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	data, err := c.do(ctx, http.MethodGet, "/categories", nil, nil)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	return catalog.NormalizeCategories(data)
}

func (c *Client) CreateCategory(ctx context.Context, cat catalog.Category) (catalog.Category, error) {
	data, err := c.do(ctx, http.MethodPost, "/categories", nil, newCategoryBody(cat))
	if err != nil {
		return catalog.Category{}, err
	}
	return catalog.NormalizeCategory(data)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, cat catalog.Category) (catalog.Category, error) {
	data, err := c.do(ctx, http.MethodPut, "/categories/"+escape(id), nil, newCategoryBody(cat))
	if err != nil {
		return catalog.Category{}, err
	}
	return catalog.NormalizeCategory(data)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/categories/"+escape(id), nil, nil)
	return err
}
