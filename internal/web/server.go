package web

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/contact"
	"storefront/internal/logging"
)

// Server carries the request handlers' collaborators.
type Server struct {
	Catalog       *catalog.Repository
	Cart          *cart.Service
	Contacts      *contact.Service
	Log           *zap.Logger
	FeaturedLimit int
}

type RouterOptions struct {
	SessionName   string
	SessionSecret []byte
	CORSOrigins   []string
	SecureCookie  bool
}

// Router wires middleware and routes.
func (s *Server) Router(opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(logging.Recovery(s.Log), logging.Gin(s.Log))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	store := cookie.NewStore(opts.SessionSecret)
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(opts.SessionName, store))

	r.GET("/health", s.health)

	pages := r.Group("/", withSessionID())
	{
		pages.GET("/", s.home)
		pages.GET("/products", s.products)
		pages.GET("/product/:id", s.productDetail)

		pages.GET("/cart", s.viewCart)
		pages.POST("/cart/add", s.addToCart)
		pages.POST("/cart/update", s.updateCart)
		pages.POST("/cart/remove", s.removeFromCart)

		pages.POST("/contact", s.submitContact)
	}

	api := r.Group("/api")
	{
		api.GET("/products", s.apiProducts)
		api.GET("/products/:id", s.apiProductDetail)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})
	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
