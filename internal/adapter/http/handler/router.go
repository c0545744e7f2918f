package handler

import (
	"agent-chain-wallet/internal/adapter/http/middleware"
	redisStore "agent-chain-wallet/internal/adapter/storage/redis"
	"agent-chain-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	WalletSvc      ports.WalletService
	BalanceSvc     ports.BalanceService
	TransferSvc    ports.TransferService
	NFTSvc         ports.NFTService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	swagger := r.Group("/swagger")
	{
		swagger.GET("", SwaggerUI)
		swagger.GET("/spec", SwaggerSpec)
	}

	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc, deps.BalanceSvc)
	transferHandler := NewTransferHandler(deps.TransferSvc)
	nftHandler := NewNFTHandler(deps.NFTSvc)

	v1 := r.Group("/api/v1", middleware.JWTAuth(deps.TokenSvc, deps.Logger))

	agents := v1.Group("/agents/:handle")
	{
		agents.POST("/wallet", rl("wallets"), walletHandler.Provision)
		agents.GET("/wallet", rl("reads"), walletHandler.Get)
		agents.DELETE("/wallet", rl("wallets"), walletHandler.Delete)
		agents.GET("/balance", rl("reads"), walletHandler.GetBalance)
		agents.GET("/transfers", rl("reads"), transferHandler.History)
		agents.POST("/nfts", rl("mints"), nftHandler.Mint)
		agents.GET("/nfts", rl("reads"), nftHandler.Count)
	}

	v1.POST("/transfers", rl("transfers"), transferHandler.Transfer)

	return r
}
