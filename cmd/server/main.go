package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/cart"
	"storefront/internal/catalog"
	"storefront/internal/config"
	"storefront/internal/contact"
	mydb "storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/web"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is what every subcommand needs after startup.
type app struct {
	cfg config.Config
	log *zap.Logger
	db  *gorm.DB
}

func newRootCmd() *cobra.Command {
	var seedOnStart bool

	root := &cobra.Command{
		Use:           "storefront",
		Short:         "Storefront catalog, cart and contact server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), seedOnStart)
		},
	}
	root.Flags().BoolVar(&seedOnStart, "seed", false, "seed sample products before serving when the store is empty")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), seedOnStart)
		},
	}
	serve.Flags().BoolVar(&seedOnStart, "seed", false, "seed sample products before serving when the store is empty")

	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create tables and insert sample products if none exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			_, err = catalog.Seed(cmd.Context(), a.db, a.log)
			return err
		},
	}

	root.AddCommand(serve, seed)
	return root
}

// bootstrap loads config, builds the logger, opens and migrates the database.
func bootstrap() (*app, error) {
	config.LoadDotenv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}
	db, err := mydb.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	log.Info("database connection pool established", zap.String("driver", cfg.DB.Driver))
	a := &app{cfg: cfg, log: log, db: db}
	if err := mydb.Migrate(db); err != nil {
		a.close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return a, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.log.Sync()
}

func (a *app) cartStore() (cart.Store, func(), error) {
	if a.cfg.Cart.Store != "redis" {
		return cart.NewMemoryStore(a.cfg.Cart.TTL), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     a.cfg.Cart.RedisAddr,
		Password: a.cfg.Cart.RedisPassword,
		DB:       a.cfg.Cart.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", a.cfg.Cart.RedisAddr, err)
	}
	return cart.NewRedisStore(rdb, a.cfg.Cart.TTL), func() { _ = rdb.Close() }, nil
}

func runServe(ctx context.Context, seedOnStart bool) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	if seedOnStart {
		if _, err := catalog.Seed(ctx, a.db, a.log); err != nil {
			return err
		}
	}

	store, closeStore, err := a.cartStore()
	if err != nil {
		return err
	}
	defer closeStore()

	if a.cfg.GinMode != "" {
		gin.SetMode(a.cfg.GinMode)
	}
	if a.cfg.UsingDevSecret() {
		a.log.Warn("SESSION_SECRET not set, using development fallback")
	}

	repo := catalog.NewRepository(a.db)
	srv := &web.Server{
		Catalog:       repo,
		Cart:          cart.NewService(store, repo),
		Contacts:      contact.NewService(a.db),
		Log:           a.log,
		FeaturedLimit: a.cfg.FeaturedLimit,
	}
	router := srv.Router(web.RouterOptions{
		SessionName:   a.cfg.SessionName,
		SessionSecret: a.cfg.Secret(),
		CORSOrigins:   a.cfg.CORSOrigins,
		SecureCookie:  gin.Mode() == gin.ReleaseMode,
	})

	httpSrv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", zap.String("addr", httpSrv.Addr), zap.String("cart_store", a.cfg.Cart.Store))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
