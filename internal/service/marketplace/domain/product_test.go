package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	product, err := NewProduct("p1", "Tomatoes", "fresh", 2.5, 100, CategoryVegetables, "supplier-1")
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)
	assert.Equal(t, 100, product.Stock)
	assert.True(t, product.OwnedBy("supplier-1"))
	assert.False(t, product.OwnedBy("supplier-2"))

	// 库存为零是合法的，表示售罄而非下架
	_, err = NewProduct("p2", "Cumin", "", 5, 0, CategorySpices, "supplier-1")
	require.NoError(t, err)
}

func TestNewProductValidation(t *testing.T) {
	testCases := []struct {
		name  string
		build func() (*Product, error)
	}{
		{"missing supplier", func() (*Product, error) {
			return NewProduct("p1", "Tomatoes", "", 2.5, 10, CategoryVegetables, "")
		}},
		{"empty name", func() (*Product, error) {
			return NewProduct("p1", "", "", 2.5, 10, CategoryVegetables, "supplier-1")
		}},
		{"zero price", func() (*Product, error) {
			return NewProduct("p1", "Tomatoes", "", 0, 10, CategoryVegetables, "supplier-1")
		}},
		{"negative price", func() (*Product, error) {
			return NewProduct("p1", "Tomatoes", "", -1, 10, CategoryVegetables, "supplier-1")
		}},
		{"negative stock", func() (*Product, error) {
			return NewProduct("p1", "Tomatoes", "", 2.5, -1, CategoryVegetables, "supplier-1")
		}},
		{"bad category", func() (*Product, error) {
			return NewProduct("p1", "Tomatoes", "", 2.5, 10, Category("electronics"), "supplier-1")
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestParseCategory(t *testing.T) {
	for _, valid := range []string{"vegetables", "spices", "grains", "dairy", "others"} {
		category, err := ParseCategory(valid)
		require.NoError(t, err)
		assert.Equal(t, Category(valid), category)
	}

	_, err := ParseCategory("electronics")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}
