package main

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/account"
	"github.com/ayaan09TTT/tradeforge/internal/chat"
	"github.com/ayaan09TTT/tradeforge/internal/config"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	appmw "github.com/ayaan09TTT/tradeforge/internal/middleware"
	"github.com/ayaan09TTT/tradeforge/internal/payment"
	"github.com/ayaan09TTT/tradeforge/internal/seed"
	"github.com/ayaan09TTT/tradeforge/internal/store"
	"github.com/ayaan09TTT/tradeforge/internal/traderoom"
	"github.com/ayaan09TTT/tradeforge/internal/wallet"
)

func main() {
	logger.Init()
	defer logger.Log.Sync()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		logger.Log.Fatal("JWT_SECRET is required")
	}

	ctx := context.Background()

	var kv store.KV
	switch cfg.StoreDriver {
	case "memory":
		kv = store.NewMemory()
		logger.Log.Info("using in-memory store")
	default:
		pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Log.Fatal("store init failed", zap.Error(err))
		}
		kv = pg
	}
	defer kv.Close()

	// Services
	dir := account.NewDirectory(kv, cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)
	ledger := wallet.NewLedger(kv)
	bridge := payment.NewBridge(kv, ledger, cfg.GatewayKeyID, cfg.GatewaySecret, cfg.DepositMin, cfg.DepositMax)
	registry := traderoom.NewRegistry(kv, ledger)
	hub := chat.NewHub()
	registry.SetPublisher(hub)

	if err := seed.Rooms(ctx, kv); err != nil {
		logger.Log.Warn("seeding failed", zap.Error(err))
	}

	// Handlers
	accountH := account.NewHandler(dir)
	walletH := wallet.NewHandler(ledger, cfg.WithdrawMin)
	paymentH := payment.NewHandler(bridge)
	roomH := traderoom.NewHandler(registry)
	chatH := chat.NewHandler(hub, registry)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())

	// Health
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "tradeforge"})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Public auth routes with per-IP rate limiting
	authGroup := e.Group("/auth")
	authGroup.Use(echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/register", accountH.Register)
	authGroup.POST("/login", accountH.Login)

	// Public discovery
	e.GET("/user/:id/profile", accountH.PublicProfile)
	e.GET("/rooms", roomH.List)
	e.GET("/rooms/:id", roomH.Get)

	// Authenticated routes
	api := e.Group("")
	api.Use(appmw.JWTAuth(dir))

	api.GET("/auth/me", accountH.Me)
	api.POST("/auth/logout", accountH.Logout)
	api.PATCH("/user/profile", accountH.UpdateProfile)
	api.POST("/user/verify", accountH.Verify)
	api.POST("/user/password", accountH.ChangePassword)

	api.GET("/wallet/balance", walletH.Balance)
	api.GET("/wallet/transactions", walletH.Transactions)
	api.POST("/wallet/withdraw", walletH.Withdraw)
	api.POST("/wallet/transfer", walletH.Transfer)
	api.POST("/wallet/deposit/orders", paymentH.CreateOrder)
	api.GET("/wallet/deposit/orders", paymentH.Orders)
	api.POST("/wallet/deposit/verify", paymentH.VerifyPayment)

	api.POST("/rooms", roomH.Create)
	api.PATCH("/rooms/:id", roomH.Update)
	api.DELETE("/rooms/:id", roomH.Delete)
	api.POST("/rooms/:id/messages", roomH.PostMessage)
	api.POST("/rooms/:id/purchase", roomH.Purchase)
	api.POST("/rooms/:id/deliver", roomH.Deliver)
	api.POST("/rooms/:id/confirm", roomH.Confirm)
	api.POST("/rooms/:id/dispute", roomH.Dispute)
	api.GET("/ws/rooms/:id", chatH.ServeRoom)

	// Admin routes
	admin := e.Group("/admin")
	admin.Use(appmw.JWTAuth(dir))
	admin.Use(appmw.AdminGuard)
	admin.POST("/rooms/:id/resolve", roomH.Resolve)

	logger.Log.Info("server listening", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Log.Fatal("server error", zap.Error(err))
	}
}
