package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/monashmerchant/shop/internal/cart"
	"github.com/monashmerchant/shop/internal/config"
	"github.com/monashmerchant/shop/internal/es"
	"github.com/monashmerchant/shop/internal/events"
	"github.com/monashmerchant/shop/internal/httpserver"
	"github.com/monashmerchant/shop/internal/repo"
	"github.com/monashmerchant/shop/internal/seed"
	"github.com/monashmerchant/shop/internal/service/account"
	"github.com/monashmerchant/shop/internal/service/catalog"
	"github.com/monashmerchant/shop/internal/service/checkout"
	"github.com/monashmerchant/shop/internal/service/orders"
	"github.com/monashmerchant/shop/internal/service/promo"
	"github.com/monashmerchant/shop/internal/service/search"
	"github.com/monashmerchant/shop/internal/store"
	"github.com/monashmerchant/shop/internal/store/gormstore"
	"github.com/monashmerchant/shop/internal/store/redisstore"
	"github.com/monashmerchant/shop/pkg/logging"
	loggingmw "github.com/monashmerchant/shop/pkg/middleware/logging"
)

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", "shop")
	slog.SetDefault(logger)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)

	var (
		st     store.Store
		closer interface{ Close() error }
	)
	switch cfg.StoreBackend {
	case "redis":
		rs, err := redisstore.Open(initCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("redis store: %v", err)
		}
		st, closer = rs, rs
	default:
		gs, err := gormstore.Open(initCtx, cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("gorm store: %v", err)
		}
		st, closer = gs, gs
	}

	products, err := repo.NewProductRepo(initCtx, st)
	if err != nil {
		log.Fatalf("load products: %v", err)
	}
	users, err := repo.NewUserRepo(initCtx, st)
	if err != nil {
		log.Fatalf("load users: %v", err)
	}
	promoCodes, err := repo.NewPromoRepo(initCtx, st)
	if err != nil {
		log.Fatalf("load promo codes: %v", err)
	}

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)

	ledger, err := orders.NewLedger(initCtx, st, producer)
	if err != nil {
		log.Fatalf("load orders: %v", err)
	}

	if err := seed.PromoCodes(initCtx, promoCodes); err != nil {
		log.Fatalf("seed promo codes: %v", err)
	}
	if cfg.SeedDemo {
		if err := seed.Demo(initCtx, products, users); err != nil {
			log.Fatalf("seed demo data: %v", err)
		}
	}

	var searchSvc *search.Service
	if cfg.ElasticURL != "" {
		esClient, err := es.NewClient(cfg)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		searchSvc = &search.Service{ES: esClient, Index: cfg.SearchIndex}
		if err := searchSvc.IndexAll(initCtx, products.All()); err != nil {
			logger.Warn("search_index_error", "error", err)
		}
	}

	cancelInit()

	carts := cart.NewSessions()
	engine := &promo.Engine{Codes: promoCodes}

	deps := &httpserver.Deps{
		Store: st,
		Cart:  &httpserver.CartHTTP{Carts: carts, Products: products, Users: users},
		Checkout: &httpserver.CheckoutHTTP{Svc: &checkout.Service{
			Users:    users,
			Products: products,
			Promos:   engine,
			Carts:    carts,
			Ledger:   ledger,
			Producer: producer,
		}},
		Orders:  &httpserver.OrdersHTTP{Ledger: ledger},
		Account: &httpserver.AccountHTTP{Svc: &account.Service{Users: users, Producer: producer}},
		Catalog: &httpserver.CatalogHTTP{Svc: &catalog.Service{Products: products, Search: searchSvc}},
		Promo:   &httpserver.PromoHTTP{Engine: engine},
		Search:  &httpserver.SearchHTTP{Svc: searchSvc},
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.CORS())

	httpserver.Register(e, deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr, "store_backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := producer.Close(); err != nil {
		logger.Error("kafka close", "error", err)
	}
	if err := closer.Close(); err != nil {
		logger.Error("store close", "error", err)
	}

	logger.Info("stopped")
}
