package cart

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"shop-backend/internal/apperr"
	"shop-backend/internal/catalog"
)

// Service owns the session-scoped cart lines. Its stock checks are advisory:
// they read the current quantity without locking, so two shoppers can both
// pass here against the same stock. The checkout engine re-runs the check
// inside a transaction and is the authority.
type Service struct {
	lines    Repository
	products catalog.Repository
	cache    ViewCache
	logger   *zap.Logger
}

func NewService(lines Repository, products catalog.Repository, cache ViewCache, logger *zap.Logger) *Service {
	return &Service{lines: lines, products: products, cache: cache, logger: logger}
}

// GetCart returns the session's cart view. An unknown or empty session yields
// an empty view, never an error.
func (s *Service) GetCart(ctx context.Context, sessionID string) (View, error) {
	if sessionID == "" {
		return EmptyView(), nil
	}

	if s.cache != nil {
		if v, ok := s.cache.Get(ctx, sessionID); ok {
			return v, nil
		}
	}

	items, err := s.lines.ListWithProducts(ctx, sessionID)
	if err != nil {
		return View{}, fmt.Errorf("list cart lines: %w", err)
	}

	v := BuildView(items)
	if s.cache != nil {
		s.cache.Set(ctx, sessionID, v)
	}
	return v, nil
}

// AddToCart upserts a line: a new product gets a fresh line, an existing one
// has its quantity incremented.
func (s *Service) AddToCart(ctx context.Context, sessionID string, productID, quantity int) (View, error) {
	if quantity <= 0 {
		return View{}, apperr.Validationf("quantity must be greater than 0")
	}

	p, err := s.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return View{}, apperr.Validationf("product not found with id: %d", productID)
		}
		return View{}, fmt.Errorf("load product %d: %w", productID, err)
	}
	if !p.Available {
		return View{}, apperr.Validationf("product is not available")
	}

	newQuantity := quantity
	existing, err := s.lines.FindByProduct(ctx, sessionID, productID)
	switch {
	case err == nil:
		newQuantity = existing.Quantity + quantity
	case errors.Is(err, apperr.ErrNotFound):
		// first line for this product
	default:
		return View{}, fmt.Errorf("find cart line: %w", err)
	}

	if p.Quantity < newQuantity {
		return View{}, apperr.Validationf("insufficient stock. available: %d", p.Quantity)
	}

	if existing.ID != 0 {
		err = s.lines.UpdateQuantity(ctx, existing.ID, newQuantity)
	} else {
		err = s.lines.Insert(ctx, &Line{SessionID: sessionID, ProductID: productID, Quantity: newQuantity})
	}
	if err != nil {
		return View{}, fmt.Errorf("save cart line: %w", err)
	}

	s.evict(ctx, sessionID)
	return s.GetCart(ctx, sessionID)
}

// UpdateItem overwrites a line's quantity. A quantity of zero or less removes
// the line; that is treated as removal, not an error.
func (s *Service) UpdateItem(ctx context.Context, sessionID string, lineID int64, quantity int) (View, error) {
	line, err := s.lines.FindByID(ctx, sessionID, lineID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return View{}, apperr.ErrNotFound
		}
		return View{}, fmt.Errorf("find cart line: %w", err)
	}

	if quantity <= 0 {
		if err := s.lines.Delete(ctx, sessionID, lineID); err != nil {
			return View{}, fmt.Errorf("delete cart line: %w", err)
		}
		s.evict(ctx, sessionID)
		return s.GetCart(ctx, sessionID)
	}

	p, err := s.products.Get(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return View{}, apperr.Validationf("product not found with id: %d", line.ProductID)
		}
		return View{}, fmt.Errorf("load product %d: %w", line.ProductID, err)
	}
	if p.Quantity < quantity {
		return View{}, apperr.Validationf("insufficient stock. available: %d", p.Quantity)
	}

	if err := s.lines.UpdateQuantity(ctx, lineID, quantity); err != nil {
		return View{}, fmt.Errorf("update cart line: %w", err)
	}

	s.evict(ctx, sessionID)
	return s.GetCart(ctx, sessionID)
}

// RemoveItem deletes a line scoped to the session. Removing an absent line is
// a no-op.
func (s *Service) RemoveItem(ctx context.Context, sessionID string, lineID int64) error {
	if err := s.lines.Delete(ctx, sessionID, lineID); err != nil {
		return fmt.Errorf("delete cart line: %w", err)
	}
	s.evict(ctx, sessionID)
	return nil
}

func (s *Service) ClearCart(ctx context.Context, sessionID string) error {
	if err := s.lines.Clear(ctx, sessionID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.evict(ctx, sessionID)
	return nil
}

func (s *Service) evict(ctx context.Context, sessionID string) {
	if s.cache != nil {
		s.cache.Evict(ctx, sessionID)
	}
}
