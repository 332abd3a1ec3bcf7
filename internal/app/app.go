// Package app wires the kiosk server: durable storage, the backend gateway,
// the long-lived state containers, and the HTTP surface.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/streetlayer/storefront/internal/browse"
	"github.com/streetlayer/storefront/internal/cart"
	"github.com/streetlayer/storefront/internal/catalog"
	"github.com/streetlayer/storefront/internal/gateway"
	"github.com/streetlayer/storefront/internal/handler"
	"github.com/streetlayer/storefront/internal/promo"
	"github.com/streetlayer/storefront/internal/session"
	"github.com/streetlayer/storefront/internal/storage"
	"github.com/streetlayer/storefront/internal/storage/file"
	"github.com/streetlayer/storefront/internal/storage/postgres"
	"github.com/streetlayer/storefront/pkg/debounce"
	"github.com/streetlayer/storefront/pkg/health"
	"github.com/streetlayer/storefront/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, _ *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.APIBaseURL),
		zap.String("storage", cfg.StorageDriver),
	)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.AddReadinessCheck("backend", 5*time.Second,
		health.HTTPGetCheck(nil, cfg.APIBaseURL+"/public/categories"))

	// Durable client-state storage.
	var store storage.Store
	switch cfg.StorageDriver {
	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		store = postgres.NewStore(pool)
	default:
		fs, err := file.Open(cfg.StoragePath)
		if err != nil {
			return errors.Wrap(err, "open state file")
		}
		store = fs
	}

	// Backend gateway and initial catalog snapshot. A failing backend yields
	// an empty snapshot; the kiosk still starts and renders empty collections.
	gw := gateway.New(gateway.Config{BaseURL: cfg.APIBaseURL, Timeout: cfg.APITimeout})
	snapshot := gw.LoadSnapshot(ctx)
	tree := catalog.BuildTree(snapshot.Categories, snapshot.Subcategories)
	lg.Info("Catalog snapshot loaded",
		zap.Int("categories", len(snapshot.Categories)),
		zap.Int("subcategories", len(snapshot.Subcategories)),
		zap.Int("products", len(snapshot.Products)),
	)

	// Long-lived state containers.
	browseState := browse.NewState(decimal.NewFromInt(int64(cfg.MaxPrice)), cfg.ItemsPerPage)
	browseState.SetProducts(snapshot.Products)

	priceDebouncer := debounce.New(cfg.DebounceQuiet, browseState.CommitPriceRange)
	defer priceDebouncer.Stop()

	cartStore := cart.NewStore(store, lg)
	if err := cartStore.Load(ctx); err != nil {
		return errors.Wrap(err, "load cart")
	}

	sessionStore := session.NewStore(gw, store, lg)
	sessionStore.Restore(ctx)

	// Promo code prescreen, optional.
	var codes cart.CodeChecker
	if cfg.PromoFilterPath != "" {
		pf, err := promo.LoadFile(cfg.PromoFilterPath)
		if err != nil {
			return errors.Wrap(err, "load promo filter")
		}
		codes = pf
	}

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// HTTP surface.
	h := handler.New(handler.Deps{
		Source:  gw,
		Browse:  browseState,
		Price:   priceDebouncer,
		Cart:    cartStore,
		Session: sessionStore,
		Orders:  gw,
		History: gw,
		Profile: gw,
		Promo:   codes,
	}, tree)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimit(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
