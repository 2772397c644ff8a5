// Package main initializes and starts the FaultKeeper HTTP server, setting up
// configuration, logging, the database, repositories, services and handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/FaultKeeper/internal/config"
	"github.com/atinyakov/FaultKeeper/internal/dataset"
	"github.com/atinyakov/FaultKeeper/internal/i18n"
	"github.com/atinyakov/FaultKeeper/internal/logger"
	"github.com/atinyakov/FaultKeeper/internal/repository"
	"github.com/atinyakov/FaultKeeper/internal/server/handler/http"
	"github.com/atinyakov/FaultKeeper/internal/service"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(2)
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("jwt secret is required (-jwt-secret or JWT_SECRET)")
	}
	loc, err := options.Location()
	if err != nil {
		zapLogger.Fatal("invalid quota timezone", zap.String("tz", options.Timezone), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The bundled dataset is always loaded: it seeds the database and serves
	// public reads while the database is unreachable.
	data := dataset.MustLoad()
	dict, err := dataset.Dictionary()
	if err != nil {
		zapLogger.Fatal("cannot load dictionary", zap.Error(err))
	}
	static := repository.NewStaticCatalog(data)

	// Initialize PostgreSQL connection. Without it the catalog is served from
	// the dataset and account features answer "temporarily unavailable".
	var (
		primary     repository.Catalog
		postgresDB  = openDatabase(ctx, options, data, zapLogger)
		accessRepo  = repository.NewPostgresAccessRepository(postgresDB)
		favoriteRep = repository.NewPostgresFavoritesRepository(postgresDB)
	)
	if postgresDB != nil {
		defer postgresDB.Close()
		primary = repository.NewPostgresCatalogRepository(postgresDB)
	}
	catalog := repository.NewFallback(primary, static, zapLogger)

	// Initialize business-logic services.
	resolver := i18n.NewResolver(dict.Translate)
	brands := service.NewBrandRepository(catalog)
	boilerModels := service.NewModelRepository(catalog)
	faults := service.NewFaultRepository(catalog, resolver)
	steps := service.NewStepRepository(catalog, resolver)
	gate := service.NewAccessGate(accessRepo, options.QuotaLimit, loc)

	// Create HTTP handlers and build the router.
	router := http.NewRouter(
		&http.CatalogHandler{
			Brands: brands,
			Models: boilerModels,
			Search: service.NewSearch(faults, boilerModels, nil, nil),
			Log:    zapLogger,
		},
		&http.AccountHandler{
			Access: gate,
			Detail: service.NewDetail(faults, steps, gate),
			Log:    zapLogger,
		},
		&http.FavoritesHandler{
			Favorites: service.NewFavorites(favoriteRep, faults),
			Log:       zapLogger,
		},
		[]byte(options.JWTSecret),
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Port),
		zap.Int("quota", options.QuotaLimit),
		zap.String("tz", loc.String()),
		zap.Bool("database", postgresDB != nil),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
