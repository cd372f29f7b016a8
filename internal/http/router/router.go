package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"

	"github.com/ignatzorin/gig-escrow/internal/config"
	"github.com/ignatzorin/gig-escrow/internal/http/handlers"
	"github.com/ignatzorin/gig-escrow/internal/http/middleware"
)

// DeliverablesPath - URL префикс загруженных результатов работы.
const DeliverablesPath = "/deliverables"

// Handlers собирает все HTTP обработчики приложения.
type Handlers struct {
	Auth     *handlers.AuthHandler
	Gig      *handlers.GigHandler
	Proposal *handlers.ProposalHandler
	Contract *handlers.ContractHandler
	Chat     *handlers.ChatHandler
	Wallet   *handlers.WalletHandler
	Health   *handlers.HealthHandler
	WS       *handlers.WSHandler
}

// SetupRouter регистрирует маршруты и middleware.
func SetupRouter(cfg *config.Config, h Handlers, tokens middleware.TokenParser, limiterStore limiter.Store) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))
	r.MaxMultipartMemory = cfg.MaxUploadSizeMB << 20

	r.GET("/health", h.Health.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.StaticFS(DeliverablesPath, http.Dir(cfg.DeliverableStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(limiterStore, "auth", cfg.AuthRateLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", h.Auth.Register)
		authGroup.POST("/login", h.Auth.Login)
	}

	// Токен передаётся в query, заголовок Authorization браузер для WebSocket не шлёт.
	api.GET("/ws", h.WS.Handle)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(tokens))
	protected.Use(middleware.RateLimitMiddleware(limiterStore, "api", cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		protected.GET("/me", h.Auth.Me)
		protected.GET("/me/gigs", h.Gig.ListMine)
		protected.GET("/me/proposals", h.Proposal.ListMine)
		protected.GET("/users/:id", middleware.UUIDValidator("id"), h.Wallet.PublicProfile)

		gigs := protected.Group("/gigs")
		{
			gigs.GET("", h.Gig.ListOpen)
			gigs.POST("", h.Gig.Create)
			gigs.GET("/:id", middleware.UUIDValidator("id"), h.Gig.Get)
			gigs.GET("/:id/contract", middleware.UUIDValidator("id"), h.Contract.GetByGig)
			gigs.GET("/:id/proposals", middleware.UUIDValidator("id"), h.Proposal.List)
			gigs.POST("/:id/proposals", middleware.UUIDValidator("id"), h.Proposal.Submit)
			gigs.POST("/:id/proposals/:proposalId/accept", middleware.UUIDValidator("id", "proposalId"), h.Proposal.Accept)
			gigs.POST("/:id/proposals/:proposalId/reject", middleware.UUIDValidator("id", "proposalId"), h.Proposal.Reject)
		}

		contracts := protected.Group("/contracts")
		{
			contracts.GET("", h.Contract.List)
			contracts.GET("/:id", middleware.UUIDValidator("id"), h.Contract.Get)
			contracts.POST("/:id/submit", middleware.UUIDValidator("id"), h.Contract.Submit)
			contracts.POST("/:id/approve", middleware.UUIDValidator("id"), h.Contract.Approve)
			contracts.POST("/:id/cancel", middleware.UUIDValidator("id"), h.Contract.Cancel)
			contracts.POST("/:id/deliverables", middleware.UUIDValidator("id"), h.Contract.UploadDeliverable)
		}

		chats := protected.Group("/chats")
		{
			chats.GET("", h.Chat.ListChats)
			chats.POST("/messages", h.Chat.CreateMessage)
			chats.GET("/:contractId/messages", middleware.UUIDValidator("contractId"), h.Chat.ListMessages)
		}

		wallet := protected.Group("/wallet")
		{
			wallet.GET("", h.Wallet.Wallet)
			wallet.GET("/transactions", h.Wallet.Transactions)
		}
	}

	return r
}
