package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"logolate/go_backend/internal/domain/catalog"
)

// productBody is the write shape the backend expects for products.
type productBody struct {
	Nombre         string  `json:"nombre"`
	Referencia     string  `json:"referencia"`
	Precio         float64 `json:"precio"`
	CantidadMinima int     `json:"cantidadMinima"`
	Categoria      string  `json:"categoria,omitempty"`
	Imagen         string  `json:"imagen,omitempty"`
	Descripcion    string  `json:"descripcion,omitempty"`
	Novedad        bool    `json:"novedad"`
	Activo         bool    `json:"activo"`
}

func newProductBody(p catalog.Product) productBody {
	return productBody{
		Nombre:         p.Name,
		Referencia:     p.Reference,
		Precio:         p.Price,
		CantidadMinima: p.MinimumOrderQuantity(),
		Categoria:      p.CategoryID,
		Imagen:         p.ImageURL,
		Descripcion:    p.Description,
		Novedad:        p.IsNew,
		Activo:         p.Active,
	}
}

func (c *Client) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	if id == "" {
		return catalog.Product{}, fmt.Errorf("get product: empty id")
	}
	data, err := c.do(ctx, http.MethodGet, "/products/"+escape(id), nil, nil)
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Normalize(data)
}

func (c *Client) ListProducts(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	q := url.Values{}
	if f.Category != "" {
		q.Set("categoria", f.Category)
	}
	if f.OnlyNew {
		q.Set("novedad", "true")
	}
	data, err := c.do(ctx, http.MethodGet, "/products", q, nil)
	if err != nil {
		return nil, err
	}
	if isNull(data) {
		return nil, nil
	}
	return catalog.NormalizeList(data)
}

func (c *Client) CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	data, err := c.do(ctx, http.MethodPost, "/products", nil, newProductBody(p))
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Normalize(data)
}

func (c *Client) UpdateProduct(ctx context.Context, id string, p catalog.Product) (catalog.Product, error) {
	data, err := c.do(ctx, http.MethodPut, "/products/"+escape(id), nil, newProductBody(p))
	if err != nil {
		return catalog.Product{}, err
	}
	return catalog.Normalize(data)
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/products/"+escape(id), nil, nil)
	return err
}
