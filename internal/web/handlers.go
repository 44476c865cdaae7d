package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/contact"
	"storefront/internal/models"
)

type ViewData map[string]any

const productNotFound = "Product not found"

// fail maps err onto a response. Storage failures are logged and answered
// with a generic body.
func (s *Server) fail(c *gin.Context, op string, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(err.Error())})
	case apperr.KindValidation:
		body := gin.H{"error": err.Error()}
		var ve *apperr.ValidationError
		if errors.As(err, &ve) && ve.Field != "" {
			body["field"] = ve.Field
		}
		c.JSON(http.StatusBadRequest, body)
	default:
		s.Log.Error(op, zap.Error(err))
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// withCart adds the cart count the page header shows.
func (s *Server) withCart(c *gin.Context, data ViewData) ViewData {
	if data == nil {
		data = ViewData{}
	}
	count := 0
	if ct, err := s.Cart.Get(c.Request.Context(), sessionID(c)); err == nil {
		count = ct.Count()
	} else {
		s.Log.Warn("cart count unavailable", zap.Error(err))
	}
	data["cart_count"] = count
	return data
}

func (s *Server) health(c *gin.Context) {
	if err := s.Catalog.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) home(c *gin.Context) {
	featured, err := s.Catalog.ListFeatured(c.Request.Context(), s.FeaturedLimit)
	if err != nil {
		s.fail(c, "home", err)
		return
	}
	c.JSON(http.StatusOK, s.withCart(c, ViewData{"featured_products": featured}))
}

func (s *Server) products(c *gin.Context) {
	ctx := c.Request.Context()
	category := strings.TrimSpace(c.DefaultQuery("category", catalog.AllCategories))
	if category == "" {
		category = catalog.AllCategories
	}

	items, err := s.Catalog.ListProducts(ctx, category)
	if err != nil {
		s.fail(c, "products", err)
		return
	}
	categories, err := s.Catalog.ListCategoryNames(ctx)
	if err != nil {
		s.fail(c, "products", err)
		return
	}
	c.JSON(http.StatusOK, s.withCart(c, ViewData{
		"products":         items,
		"categories":       categories,
		"current_category": category,
	}))
}

func (s *Server) productDetail(c *gin.Context) {
	ctx := c.Request.Context()
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}
	p, err := s.Catalog.GetProduct(ctx, id)
	if err != nil {
		s.fail(c, "product detail", err)
		return
	}
	related, err := s.Catalog.GetRelated(ctx, p, catalog.DefaultRelatedLimit)
	if err != nil {
		s.fail(c, "product detail", err)
		return
	}
	c.JSON(http.StatusOK, s.withCart(c, ViewData{
		"product":          p,
		"related_products": related,
	}))
}

func (s *Server) apiProducts(c *gin.Context) {
	ctx := c.Request.Context()
	items, err := s.Catalog.ListProducts(ctx, catalog.AllCategories)
	if err != nil {
		s.fail(c, "api products", err)
		return
	}
	categories, err := s.Catalog.ListCategoryNames(ctx)
	if err != nil {
		s.fail(c, "api products", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": items, "categories": categories})
}

func (s *Server) apiProductDetail(c *gin.Context) {
	id, ok := parseID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": productNotFound})
		return
	}
	p, err := s.Catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		s.fail(c, "api product detail", err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ---------- cart ----------

type cartForm struct {
	ProductID string `form:"product_id" binding:"required"`
	Quantity  string `form:"quantity"`
	Next      string `form:"next"`
}

// parse reads the ids and quantity; defQty applies when quantity is absent.
func (f cartForm) parse(defQty int) (uint, int, error) {
	id, ok := parseID(f.ProductID)
	if !ok {
		return 0, 0, apperr.Invalid("product_id", "must be a positive integer")
	}
	raw := strings.TrimSpace(f.Quantity)
	if raw == "" {
		return id, defQty, nil
	}
	qty, err := strconv.Atoi(raw)
	if err != nil {
		return 0, 0, apperr.Invalid("quantity", "must be an integer")
	}
	return id, qty, nil
}

// redirectBack sends the visitor to a local next= path, or the cart.
func redirectBack(c *gin.Context, next string) {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/cart"
	}
	c.Redirect(http.StatusSeeOther, next)
}

// cartOutcome flashes the user-correctable failures and reports whether the
// request may continue with a redirect. Storage failures get a 500.
func (s *Server) cartOutcome(c *gin.Context, op string, err error, okMsg string) bool {
	switch apperr.KindOf(err) {
	case apperr.KindOK:
		flash(c, flashSuccess, okMsg)
		return true
	case apperr.KindValidation, apperr.KindNotFound:
		flash(c, flashWarning, capitalize(err.Error()))
		return true
	default:
		s.fail(c, op, err)
		return false
	}
}

func (s *Server) addToCart(c *gin.Context) {
	var form cartForm
	if err := c.ShouldBind(&form); err != nil {
		flash(c, flashWarning, "Please choose a product to add")
		redirectBack(c, form.Next)
		return
	}
	id, qty, err := form.parse(1)
	if err == nil {
		_, err = s.Cart.Add(c.Request.Context(), sessionID(c), id, qty)
	}
	if s.cartOutcome(c, "add to cart", err, "Item added to cart") {
		redirectBack(c, form.Next)
	}
}

func (s *Server) updateCart(c *gin.Context) {
	var form cartForm
	if err := c.ShouldBind(&form); err != nil {
		redirectBack(c, form.Next)
		return
	}
	id, qty, err := form.parse(0)
	if err == nil {
		_, err = s.Cart.Update(c.Request.Context(), sessionID(c), id, qty)
	}
	if s.cartOutcome(c, "update cart", err, "Cart updated") {
		redirectBack(c, form.Next)
	}
}

func (s *Server) removeFromCart(c *gin.Context) {
	var form cartForm
	if err := c.ShouldBind(&form); err != nil {
		redirectBack(c, form.Next)
		return
	}
	id, _, err := form.parse(0)
	if err == nil {
		_, err = s.Cart.Remove(c.Request.Context(), sessionID(c), id)
	}
	if s.cartOutcome(c, "remove from cart", err, "Item removed from cart") {
		redirectBack(c, form.Next)
	}
}

func (s *Server) viewCart(c *gin.Context) {
	ct, err := s.Cart.Get(c.Request.Context(), sessionID(c))
	if err != nil {
		s.fail(c, "view cart", err)
		return
	}
	c.JSON(http.StatusOK, ViewData{
		"cart":     ct.Summarize(),
		"messages": takeFlashes(c),
	})
}

// ---------- contact ----------

func (s *Server) submitContact(c *gin.Context) {
	var in contact.Input
	if err := c.ShouldBind(&in); err != nil {
		s.fail(c, "contact", apperr.Invalid("", "malformed form"))
		return
	}
	saved, err := s.Contacts.Submit(c.Request.Context(), in)
	if err != nil {
		s.fail(c, "contact", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you for your message. We will get back to you soon.",
		"contact": contactView(saved),
	})
}

func contactView(m models.Contact) gin.H {
	return gin.H{"id": m.ID, "subject": m.Subject, "created_at": m.CreatedAt}
}
