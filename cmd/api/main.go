package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agent-chain-wallet/config"
	"agent-chain-wallet/internal/adapter/chain"
	httpHandler "agent-chain-wallet/internal/adapter/http/handler"
	"agent-chain-wallet/internal/adapter/notify"
	pgStorage "agent-chain-wallet/internal/adapter/storage/postgres"
	redisStorage "agent-chain-wallet/internal/adapter/storage/redis"
	"agent-chain-wallet/internal/core/ports"
	"agent-chain-wallet/internal/service"
	"agent-chain-wallet/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("AGC_CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Bool("chain_offline", cfg.Chain.Offline()).
		Msg("Starting Agent Chain wallet service")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	if err := pgStorage.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply schema")
	}
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Chain client; an empty RPC URL yields the offline client.
	chainClient, err := chain.Dial(ctx, cfg.Chain, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize chain client")
	}
	if closer, ok := chainClient.(interface{ Close() }); ok {
		defer closer.Close()
	}
	if !chainClient.Available() {
		log.Warn().Msg("No chain RPC configured, running in degraded mode")
	}

	// Event sinks
	sinks := notify.Fanout{notify.NewLogSink(log)}
	var discord *notify.DiscordSink
	if cfg.Notify.DiscordWebhookURL != "" {
		discord = notify.NewDiscordSink(
			cfg.Notify.DiscordWebhookURL,
			&http.Client{Timeout: 10 * time.Second},
			cfg.Notify.QueueSize,
			log,
		)
		sinks = append(sinks, discord)
	}
	if cfg.Notify.AMQPURL != "" {
		amqpSink, err := notify.DialAMQP(cfg.Notify.AMQPURL, cfg.Notify.AMQPQueue, log)
		if err != nil {
			log.Warn().Err(err).Msg("Event broker unreachable, publishing disabled")
		} else {
			defer amqpSink.Close()
			sinks = append(sinks, amqpSink)
			log.Info().Str("queue", cfg.Notify.AMQPQueue).Msg("Publishing wallet events to AMQP")
		}
	}

	// Initialize repositories and stores
	walletRepo := pgStorage.NewWalletRepo(pool)
	transferRepo := pgStorage.NewTransferRepo(pool)
	balanceCache := redisStorage.NewBalanceCache(rdb)
	locker := redisStorage.NewWalletLocker(rdb, cfg.Lock.TTL, cfg.Lock.Wait, log)
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize core services
	vault, err := service.NewAESKeyVault(cfg.AES.Key)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize key vault")
	}
	signer := service.NewTypedDataPermitSigner(chainClient, cfg.Chain.PermitVersion)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)

	// Initialize business services
	fundingSvc, err := service.NewFundingService(chainClient, balanceCache, sinks, cfg.Chain.SeedAmount, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize funding service")
	}
	walletSvc := service.NewWalletService(walletRepo, vault, signer, chainClient, fundingSvc, balanceCache, sinks, log)
	balanceSvc := service.NewBalanceService(walletRepo, chainClient, balanceCache, cfg.Cache.BalanceTTL, log)
	transferSvc := service.NewTransferService(walletRepo, transferRepo, vault, signer, chainClient, locker, balanceCache, sinks, log)
	nftSvc := service.NewNFTService(walletRepo, chainClient, sinks, log)

	// Initialize health checkers
	healthCheckers := []ports.HealthChecker{
		pgStorage.NewHealthCheck(pool),
		redisStorage.NewHealthCheck(rdb),
		chain.NewHealthCheck(chainClient),
	}

	// Load OpenAPI spec for Swagger UI
	if specBytes, err := os.ReadFile("docs/api/openapi.yaml"); err == nil {
		httpHandler.SetSwaggerSpec(specBytes)
		log.Info().Msg("OpenAPI spec loaded for Swagger UI at /swagger")
	} else {
		log.Warn().Err(err).Msg("OpenAPI spec not found, Swagger UI will be unavailable")
	}

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		WalletSvc:      walletSvc,
		BalanceSvc:     balanceSvc,
		TransferSvc:    transferSvc,
		NFTSvc:         nftSvc,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	// Transfers wait for confirmations, so in-flight requests get the full
	// confirmation timeout to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Chain.ConfirmTimeout+10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if discord != nil {
		if err := discord.Close(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Discord notifications not fully delivered")
		}
	}

	log.Info().Msg("Server exited")
}
