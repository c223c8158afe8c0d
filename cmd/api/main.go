package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/landledger/property-transfer/internal/api"
	"github.com/landledger/property-transfer/internal/core/service"
	"github.com/landledger/property-transfer/internal/infrastructure/blob"
	"github.com/landledger/property-transfer/internal/infrastructure/config"
	mongodb "github.com/landledger/property-transfer/internal/infrastructure/db/mongo"
	redisdb "github.com/landledger/property-transfer/internal/infrastructure/db/redis"
	"github.com/landledger/property-transfer/internal/infrastructure/ledger"
	"github.com/landledger/property-transfer/internal/infrastructure/queue"
	"github.com/landledger/property-transfer/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Init(logger.Options{})
		bootLog := logger.Get()
		bootLog.Fatal().Err(err).Msg("load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.Production(),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("ensure indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	blobs, err := blob.NewFSStore(cfg.Upload.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("init upload store")
	}

	// --- Ledger ---
	ethClient, err := ethclient.Dial(cfg.Ledger.RPCURL)
	if err != nil {
		log.Fatal().Err(err).Msg("dial ledger node")
	}
	defer ethClient.Close()

	signer, err := ledger.NewLocalSigner(cfg.Ledger.SignerKey, cfg.Ledger.ChainID)
	if err != nil {
		log.Fatal().Err(err).Msg("init ledger signer")
	}

	ledgerClient, err := ledger.NewClient(ethClient, signer, ledger.Options{
		ContractAddress: cfg.Ledger.ContractAddress,
		GasLimit:        cfg.Ledger.GasLimit,
		ConfirmTimeout:  cfg.Ledger.ConfirmTimeout,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init ledger client")
	}

	// --- Repositories and services ---
	principalRepo := mongodb.NewPrincipalRepository(db)
	requestRepo := mongodb.NewRequestRepository(db)

	guard := redisdb.NewMintGuard(rdb, cfg.Mint.GuardTTL)
	minter := queue.NewMinter(cfg.Mint.Workers, requestRepo, ledgerClient, guard, log)
	minter.Start(ctx)

	reconciler := queue.NewReconciler(requestRepo, minter, cfg.Mint.ReconcileInterval, cfg.Mint.ReconcileMinAge, log)
	reconciler.Start(ctx)

	tokenService := service.NewTokenService(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	authService := service.NewAuthService(principalRepo, tokenService, service.AdminCredentials{
		Username: cfg.Auth.AdminUsername,
		Password: cfg.Auth.AdminPassword,
	}, log)
	requestService := service.NewRequestService(requestRepo, principalRepo, blobs, minter, log)
	rosterService := service.NewRosterService(principalRepo, log)
	statsService := service.NewStatsService(requestRepo, principalRepo)

	// --- HTTP ---
	e := api.NewRouter(api.Dependencies{
		Config:   cfg,
		Log:      log,
		Tokens:   tokenService,
		Auth:     authService,
		Requests: requestService,
		Roster:   rosterService,
		Stats:    statsService,
		Blobs:    blobs,
		Mongo:    db,
		Redis:    rdb,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting api server")
		if err := e.Start(":" + cfg.Port); err != nil {
			log.Info().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}
