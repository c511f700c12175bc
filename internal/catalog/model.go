package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Available   bool            `json:"available"`
	Quantity    int             `json:"quantity"`
}

// Summary is the product projection embedded in cart and order views.
type Summary struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageURL    string          `json:"imageUrl"`
	Available   bool            `json:"available"`
	Quantity    int             `json:"quantity"`
}

func (p Product) Summary() Summary {
	return Summary{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		ImageURL:    ImageURL(p.ID),
		Available:   p.Available,
		Quantity:    p.Quantity,
	}
}

// ImageURL returns the catalog image path for a product. Image storage itself
// lives outside this service.
func ImageURL(productID int) string {
	return fmt.Sprintf("/api/product/%d/image", productID)
}
