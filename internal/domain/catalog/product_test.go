package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_SpanishFields(t *testing.T) {
	p, err := Normalize([]byte(`{
		"_id": "64f0c1",
		"nombre": "Bombón logo",
		"referencia": "BOM-01",
		"precio": 12.5,
		"cantidadMinima": 100,
		"categoria": {"_id": "c1", "nombre": "Chocolates", "slug": "chocolates"},
		"novedad": true
	}`))
	require.NoError(t, err)

	assert.Equal(t, "64f0c1", p.ID)
	assert.Equal(t, "Bombón logo", p.Name)
	assert.Equal(t, "BOM-01", p.Reference)
	assert.Equal(t, 12.5, p.Price)
	assert.Equal(t, 100, p.MinQuantity)
	assert.Equal(t, "c1", p.CategoryID)
	assert.Equal(t, "chocolates", p.CategoryName)
	assert.True(t, p.IsNew)
	assert.True(t, p.Active)
	assert.Equal(t, "64f0c1", p.Key())
}

func TestNormalize_EnglishFieldsAndLegacyID(t *testing.T) {
	p, err := Normalize([]byte(`{"id": 42, "name": "Caramelo", "reference": "CAR-9", "price": "8,00", "activo": false}`))
	require.NoError(t, err)

	assert.Equal(t, "", p.ID)
	assert.Equal(t, int64(42), p.LegacyID)
	assert.Equal(t, "42", p.Key())
	assert.Equal(t, "Caramelo", p.Name)
	assert.Equal(t, 8.0, p.Price)
	assert.Equal(t, 1, p.MinQuantity)
	assert.False(t, p.Active)
}

func TestNormalize_NonNumericIDIsKept(t *testing.T) {
	p, err := Normalize([]byte(`{"id": "abc", "nombre": "x"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", p.ID)
	assert.Equal(t, int64(0), p.LegacyID)
}

func TestNormalize_CategoryAsID(t *testing.T) {
	p, err := Normalize([]byte(`{"_id": "p", "categoria": "cat-7"}`))
	require.NoError(t, err)
	assert.Equal(t, "cat-7", p.CategoryID)
	assert.Empty(t, p.CategoryName)
}

func TestNormalize_BadPrice(t *testing.T) {
	_, err := Normalize([]byte(`{"_id": "p", "precio": "gratis"}`))
	assert.Error(t, err)
}

func TestProduct_Identityless(t *testing.T) {
	p := Product{Name: "sin id"}
	assert.Equal(t, "", p.Key())
	assert.Equal(t, 1, p.MinimumOrderQuantity())
}

func TestNormalizeCategories(t *testing.T) {
	cats, err := NormalizeCategories([]byte(`[{"_id":"a","nombre":"Chocolates","slug":"chocolates"},{"id":3,"name":"Caramelos"}]`))
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "a", cats[0].ID)
	assert.Equal(t, "chocolates", cats[0].Slug)
	assert.Equal(t, "3", cats[1].ID)
	assert.Equal(t, "Caramelos", cats[1].Name)
}
