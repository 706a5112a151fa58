package embedding

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catlens/internal/domain"
)

func TestAspectText(t *testing.T) {
	item := domain.Item{
		ID:          "sku-1",
		Name:        "Cordless Drill",
		Description: "18V drill with two batteries",
		Category:    "tools",
		Brand:       "Acme",
		Price:       129.99,
	}

	title, ok := AspectText(item, domain.AspectTitle)
	assert.True(t, ok)
	assert.Equal(t, "Cordless Drill", title)

	attrs, ok := AspectText(item, domain.AspectAttributes)
	assert.True(t, ok)
	assert.Contains(t, attrs, "brand: Acme")
	assert.Contains(t, attrs, "category: tools")
	assert.Contains(t, attrs, "price: 129.99")

	full, ok := AspectText(item, domain.AspectFull)
	assert.True(t, ok)
	assert.Contains(t, full, "Cordless Drill")
	assert.Contains(t, full, "18V drill with two batteries")
}

func TestAspectText_Unbuildable(t *testing.T) {
	_, ok := AspectText(domain.Item{ID: "sku-1"}, domain.AspectTitle)
	assert.False(t, ok)

	_, ok = AspectText(domain.Item{ID: "sku-1"}, domain.AspectAttributes)
	assert.False(t, ok)

	_, ok = AspectText(domain.Item{ID: "sku-1", Name: "x"}, domain.AspectVisual)
	assert.False(t, ok)
}
