package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Product is the single normalized product shape used everywhere past the
// backend boundary. The backend mixes _id/id, nombre/name and friends; those
// fallbacks are resolved once in Normalize and nowhere else.
type Product struct {
	ID           string  `json:"id"`
	LegacyID     int64   `json:"legacyId,omitempty"`
	Name         string  `json:"name"`
	Reference    string  `json:"reference"`
	Price        float64 `json:"price"`
	MinQuantity  int     `json:"minQuantity"`
	CategoryID   string  `json:"categoryId,omitempty"`
	CategoryName string  `json:"categoryName,omitempty"`
	ImageURL     string  `json:"imageUrl,omitempty"`
	Description  string  `json:"description,omitempty"`
	IsNew        bool    `json:"isNew"`
	Active       bool    `json:"active"`
}

// Key is the cart identity of the product: ID, or the legacy numeric id.
func (p Product) Key() string {
	if p.ID != "" {
		return p.ID
	}
	if p.LegacyID != 0 {
		return strconv.FormatInt(p.LegacyID, 10)
	}
	return ""
}

// MinimumOrderQuantity never returns less than 1.
func (p Product) MinimumOrderQuantity() int {
	if p.MinQuantity < 1 {
		return 1
	}
	return p.MinQuantity
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type rawProduct struct {
	MongoID              string          `json:"_id"`
	ID                   json.RawMessage `json:"id"`
	Nombre               string          `json:"nombre"`
	Name                 string          `json:"name"`
	Referencia           string          `json:"referencia"`
	Reference            string          `json:"reference"`
	Precio               *FlexNumber     `json:"precio"`
	Price                *FlexNumber     `json:"price"`
	CantidadMinima       *FlexNumber     `json:"cantidadMinima"`
	MinimumOrderQuantity *FlexNumber     `json:"minimumOrderQuantity"`
	Categoria            json.RawMessage `json:"categoria"`
	Category             json.RawMessage `json:"category"`
	Imagen               string          `json:"imagen"`
	Image                string          `json:"image"`
	Descripcion          string          `json:"descripcion"`
	Description          string          `json:"description"`
	Novedad              bool            `json:"novedad"`
	Activo               *bool           `json:"activo"`
}

type rawCategory struct {
	MongoID     string          `json:"_id"`
	ID          json.RawMessage `json:"id"`
	Nombre      string          `json:"nombre"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Descripcion string          `json:"descripcion"`
	Description string          `json:"description"`
	Imagen      string          `json:"imagen"`
}

// Normalize decodes one backend product record.
func Normalize(data []byte) (Product, error) {
	var raw rawProduct
	if err := json.Unmarshal(data, &raw); err != nil {
		return Product{}, fmt.Errorf("decode product: %w", err)
	}
	return raw.product(), nil
}

// NormalizeList decodes a JSON array of backend product records.
func NormalizeList(data []byte) ([]Product, error) {
	var raws []rawProduct
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}
	out := make([]Product, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.product())
	}
	return out, nil
}

// NormalizeCategories decodes a JSON array of backend category records.
func NormalizeCategories(data []byte) ([]Category, error) {
	var raws []rawCategory
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	out := make([]Category, 0, len(raws))
	for _, r := range raws {
		out = append(out, r.category())
	}
	return out, nil
}

// NormalizeCategory decodes one backend category record.
func NormalizeCategory(data []byte) (Category, error) {
	var raw rawCategory
	if err := json.Unmarshal(data, &raw); err != nil {
		return Category{}, fmt.Errorf("decode category: %w", err)
	}
	return raw.category(), nil
}

func (r rawProduct) product() Product {
	p := Product{
		ID:          strings.TrimSpace(r.MongoID),
		Name:        firstNonEmpty(r.Nombre, r.Name),
		Reference:   firstNonEmpty(r.Referencia, r.Reference),
		ImageURL:    firstNonEmpty(r.Imagen, r.Image),
		Description: firstNonEmpty(r.Descripcion, r.Description),
		IsNew:       r.Novedad,
		Active:      r.Activo == nil || *r.Activo,
	}
	legacy, legacyText := parseID(r.ID)
	p.LegacyID = legacy
	if p.ID == "" && legacy == 0 {
		p.ID = legacyText
	}
	switch {
	case r.Precio != nil:
		p.Price = float64(*r.Precio)
	case r.Price != nil:
		p.Price = float64(*r.Price)
	}
	switch {
	case r.CantidadMinima != nil:
		p.MinQuantity = int(*r.CantidadMinima)
	case r.MinimumOrderQuantity != nil:
		p.MinQuantity = int(*r.MinimumOrderQuantity)
	}
	if p.MinQuantity < 1 {
		p.MinQuantity = 1
	}
	cat := r.Categoria
	if len(cat) == 0 || bytes.Equal(cat, []byte("null")) {
		cat = r.Category
	}
	p.CategoryID, p.CategoryName = parseCategoryRef(cat)
	return p
}

func (r rawCategory) category() Category {
	c := Category{
		ID:          strings.TrimSpace(r.MongoID),
		Name:        firstNonEmpty(r.Nombre, r.Name),
		Slug:        strings.TrimSpace(r.Slug),
		Description: firstNonEmpty(r.Descripcion, r.Description),
		ImageURL:    strings.TrimSpace(r.Imagen),
	}
	if c.ID == "" {
		if n, text := parseID(r.ID); n != 0 {
			c.ID = strconv.FormatInt(n, 10)
		} else {
			c.ID = text
		}
	}
	return c
}

// parseCategoryRef accepts either a bare id string or a populated category object.
func parseCategoryRef(raw json.RawMessage) (id, name string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", ""
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return strings.TrimSpace(s), ""
		}
		return "", ""
	}
	var rc rawCategory
	if err := json.Unmarshal(raw, &rc); err != nil {
		return "", ""
	}
	c := rc.category()
	name = c.Name
	if c.Slug != "" {
		name = c.Slug
	}
	return c.ID, name
}

// parseID returns the numeric value of a legacy id, or its text when it is not numeric.
func parseID(raw json.RawMessage) (int64, string) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, ""
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		if v, err := n.Int64(); err == nil {
			return v, ""
		}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		s = strings.TrimSpace(s)
		if v, err := strconv.ParseInt(s, 10, 64); err == nil {
			return v, ""
		}
		return 0, s
	}
	return 0, ""
}

// FlexNumber is a backend number that may arrive as 12.5, "12.5" or "12,5".
type FlexNumber float64

func (f *FlexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			*f = 0
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", s)
		}
		*f = FlexNumber(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = FlexNumber(v)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
