package embedding

import (
	"fmt"
	"strings"

	"catlens/internal/domain"
)

// AspectText composes the text embedded for one aspect of an item. The
// second return is false for aspects that cannot be built from item
// fields, such as visual embeddings that need image content.
func AspectText(item domain.Item, aspect domain.Aspect) (string, bool) {
	switch aspect {
	case domain.AspectTitle:
		return strings.TrimSpace(item.Name), item.Name != ""
	case domain.AspectAttributes:
		parts := make([]string, 0, 4)
		if item.Brand != "" {
			parts = append(parts, "brand: "+item.Brand)
		}
		if item.Category != "" {
			parts = append(parts, "category: "+item.Category)
		}
		if item.Price > 0 {
			parts = append(parts, fmt.Sprintf("price: %.2f", item.Price))
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, " | "), true
	case domain.AspectFull:
		parts := make([]string, 0, 4)
		for _, p := range []string{item.Name, item.Brand, item.Category, item.Description} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			return "", false
		}
		return strings.Join(parts, "\n"), true
	default:
		return "", false
	}
}
