package cart

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// MaxQuantity is the most units of one product a cart line may hold.
const MaxQuantity = 999

// ProductFinder is the slice of the catalog the cart needs.
type ProductFinder interface {
	GetProduct(ctx context.Context, id uint) (models.Product, error)
}

// Service validates cart mutations before touching the store: a failed call
// leaves the stored cart exactly as it was.
type Service struct {
	store    Store
	products ProductFinder
}

func NewService(store Store, products ProductFinder) *Service {
	return &Service{store: store, products: products}
}

func (s *Service) Get(ctx context.Context, sessionID string) (Cart, error) {
	if err := checkSession(sessionID); err != nil {
		return Cart{}, err
	}
	return s.store.Load(ctx, sessionID)
}

// Add puts quantity units of productID in the session's cart. An existing
// line keeps its original snapshot and gains quantity.
func (s *Service) Add(ctx context.Context, sessionID string, productID uint, quantity int) (Cart, error) {
	if err := checkSession(sessionID); err != nil {
		return Cart{}, err
	}
	if quantity <= 0 {
		return Cart{}, apperr.Invalid("quantity", "must be a positive integer")
	}
	if quantity > MaxQuantity {
		return Cart{}, tooMany()
	}
	p, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return Cart{}, err
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if c.Quantity(p.ID) > MaxQuantity-quantity {
		return Cart{}, tooMany()
	}
	c.add(LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  quantity,
	})
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

// Update sets a line's quantity; quantity <= 0 removes the line.
func (s *Service) Update(ctx context.Context, sessionID string, productID uint, quantity int) (Cart, error) {
	if err := checkSession(sessionID); err != nil {
		return Cart{}, err
	}
	if quantity > MaxQuantity {
		return Cart{}, tooMany()
	}
	c, err := s.store.Load(ctx, sessionID)
	if err != nil {
		return Cart{}, err
	}
	if !c.set(productID, quantity) {
		return Cart{}, apperr.NotFound("cart item")
	}
	if err := s.store.Save(ctx, sessionID, c); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (s *Service) Remove(ctx context.Context, sessionID string, productID uint) (Cart, error) {
	return s.Update(ctx, sessionID, productID, 0)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := checkSession(sessionID); err != nil {
		return err
	}
	return s.store.Delete(ctx, sessionID)
}

func tooMany() error {
	return apperr.Invalid("quantity", fmt.Sprintf("must be at most %d per product", MaxQuantity))
}

func checkSession(id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Invalid("session", "missing session id")
	}
	return nil
}
