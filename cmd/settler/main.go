package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apphttp "github.com/artblox/auction-settler/pkg/app/http"
	"github.com/artblox/auction-settler/pkg/bidsign"
	"github.com/artblox/auction-settler/pkg/config"
	"github.com/artblox/auction-settler/pkg/ethereum"
	"github.com/artblox/auction-settler/pkg/minter"
	"github.com/artblox/auction-settler/pkg/oracle"
	"github.com/artblox/auction-settler/pkg/pgutil"
	"github.com/artblox/auction-settler/pkg/settler"
	"github.com/artblox/auction-settler/pkg/signer"
	"github.com/artblox/auction-settler/pkg/store"
)

var (
	configPath = flag.String("config", "config.yaml", "Path to configuration file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting auction settlement worker")

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	st := store.NewStore(db)
	defer st.Close()
	logger.Info("Database connection established",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database))

	sourceClient, err := ethereum.NewClient(&cfg.Source, logger)
	if err != nil {
		logger.Fatal("Failed to initialize source chain client", zap.Error(err))
	}
	defer sourceClient.Close()

	destClient, err := minter.NewClient(&cfg.Destination, logger)
	if err != nil {
		logger.Fatal("Failed to initialize destination chain client", zap.Error(err))
	}
	defer destClient.Close()

	bidSigner, err := signer.New(cfg.Signer.PrivateKey)
	if err != nil {
		logger.Fatal("Failed to initialize bid signer", zap.Error(err))
	}
	logger.Info("Bid signer loaded", zap.String("address", bidSigner.Address().Hex()))

	priceOracle, err := oracle.NewStaticOracle(cfg.Oracle.TokenFile, logger)
	if err != nil {
		logger.Fatal("Failed to load price oracle", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := settler.NewEngine(&cfg.Settlement, sourceClient, destClient, st, logger)
	if err := engine.Start(ctx); err != nil {
		logger.Fatal("Failed to start settlement engine", zap.Error(err))
	}
	defer engine.Stop()

	bidService := bidsign.NewService(bidSigner, priceOracle, cfg.Signer.ValidityWindow, logger)
	bidHandler := bidsign.NewHandler(bidService, logger)
	settlerHandler := settler.NewHandler(engine, st, bidSigner.Address().Hex(), logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", settlerHandler.Health)
	r.Get("/ready", settlerHandler.Ready)

	if cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
		logger.Info("Metrics enabled")
	}

	r.Route("/api/v1", func(r chi.Router) {
		bidHandler.Register(r)
		settlerHandler.Register(r)
	})

	if err := apphttp.ServeAndWait(ctx, r, logger, &cfg.Server); err != nil {
		logger.Error("HTTP server failed", zap.Error(err))
	}

	logger.Info("Settlement worker stopped")
}
