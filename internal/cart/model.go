package cart

import (
	"time"

	"github.com/shopspring/decimal"

	"shop-backend/internal/catalog"
)

// Line is one (product, quantity) row owned by a session. A session holds at
// most one line per product.
type Line struct {
	ID        int64
	SessionID string
	ProductID int
	Quantity  int
	UpdatedAt time.Time
}

// LineItem is a line joined with its live product.
type LineItem struct {
	Line    Line
	Product catalog.Product
}

type ViewItem struct {
	ID       int64           `json:"id"`
	Product  catalog.Summary `json:"product"`
	Quantity int             `json:"quantity"`
}

type View struct {
	Items       []ViewItem      `json:"items"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalItems  int             `json:"totalItems"`
}

func EmptyView() View {
	return View{Items: []ViewItem{}, TotalAmount: decimal.Zero}
}

// BuildView assembles the cart view: per-line product summaries, the exact
// decimal total and the summed item count.
func BuildView(items []LineItem) View {
	v := EmptyView()
	for _, it := range items {
		v.Items = append(v.Items, ViewItem{
			ID:       it.Line.ID,
			Product:  it.Product.Summary(),
			Quantity: it.Line.Quantity,
		})
		v.TotalAmount = v.TotalAmount.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Line.Quantity))))
		v.TotalItems += it.Line.Quantity
	}
	return v
}
