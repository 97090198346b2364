package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/depositservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/ledgerservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/withdrawalservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/statsrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/middleware"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/config"
)

type Handlers struct {
	AuthSvc       authservice.IAuthService
	DepositSvc    depositservice.IDepositService
	WithdrawalSvc withdrawalservice.IWithdrawalService
	LedgerSvc     ledgerservice.ILedgerService
	UserRepo      userrepo.IUserRepository
	NotifRepo     notificationrepo.INotificationRepository
	StatsRepo     statsrepo.IStatsRepository
	Hub           *websocket.WsHub
	Logger        zerolog.Logger
	Config        *config.Config
}

func New(
	authSvc authservice.IAuthService,
	depositSvc depositservice.IDepositService,
	withdrawalSvc withdrawalservice.IWithdrawalService,
	ledgerSvc ledgerservice.ILedgerService,
	userRepo userrepo.IUserRepository,
	notifRepo notificationrepo.INotificationRepository,
	statsRepo statsrepo.IStatsRepository,
	hub *websocket.WsHub,
	logger zerolog.Logger,
	config *config.Config,
) *Handlers {
	return &Handlers{
		AuthSvc:       authSvc,
		DepositSvc:    depositSvc,
		WithdrawalSvc: withdrawalSvc,
		LedgerSvc:     ledgerSvc,
		UserRepo:      userRepo,
		NotifRepo:     notifRepo,
		StatsRepo:     statsRepo,
		Hub:           hub,
		Logger:        logger,
		Config:        config,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("strongpw", func(fl validator.FieldLevel) bool {
			return strongPassword(fl.Field().String())
		})
		v.RegisterValidation("pixkeytype", func(fl validator.FieldLevel) bool {
			return domain.PixKeyType(fl.Field().String()).Valid()
		})
	}

	mw := middleware.NewMiddleware(h.AuthSvc, h.Logger)

	authHandler := NewAuthHandler(h.AuthSvc, h.Logger)
	depositHandler := NewDepositHandler(h.DepositSvc, h.AuthSvc, h.Logger)
	withdrawalHandler := NewWithdrawalHandler(h.WithdrawalSvc, h.AuthSvc, h.Logger)
	accountHandler := NewAccountHandler(h.LedgerSvc, h.NotifRepo, h.Logger)
	adminHandler := NewAdminHandler(h.WithdrawalSvc, h.DepositSvc, h.LedgerSvc, h.AuthSvc, h.UserRepo, h.StatsRepo, h.Logger)
	callbackHandler := NewCallbackHandler(h.DepositSvc, h.Logger)
	wsHandler := NewWebSocketHandler(h.Hub, h.Logger)
	healthHandler := NewHealthHandler()

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}
		api.POST("/2fa/verify", authHandler.VerifyTwoFA)

		callback := api.Group("/callback")
		callback.Use(mw.GatewayTokenMiddleware(h.Config.Gateway.CallbackToken))
		{
			callback.POST("/pix", callbackHandler.PixCallback)
		}

		user := api.Group("")
		user.Use(mw.AuthMiddleware())
		{
			user.GET("/balance", accountHandler.Balance)
			user.GET("/statement", accountHandler.Statement)

			user.POST("/deposits", depositHandler.Create)
			user.GET("/deposits", depositHandler.List)
			user.POST("/deposits/:id/infractions", depositHandler.OpenInfraction)
			user.GET("/infractions", depositHandler.ListInfractions)

			user.POST("/withdrawals", withdrawalHandler.Request)
			user.GET("/withdrawals", withdrawalHandler.List)

			user.GET("/notifications", accountHandler.Notifications)
			user.PUT("/notifications/:id/read", accountHandler.MarkNotificationRead)
		}

		admin := api.Group("/admin")
		admin.Use(mw.AuthMiddleware(), mw.AdminMiddleware())
		{
			admin.GET("/dashboard/stats", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/deposits", adminHandler.ListDeposits)
			admin.GET("/withdrawals", adminHandler.ListWithdrawals)
			admin.POST("/withdrawals/:id/approve", adminHandler.ApproveWithdrawal)
			admin.POST("/withdrawals/:id/reject", adminHandler.RejectWithdrawal)
			admin.POST("/users/:id/credit", adminHandler.Credit)
			admin.POST("/users/:id/debit", adminHandler.Debit)
		}
	}

	ws := router.Group("/ws")
	ws.Use(mw.AuthMiddleware())
	{
		ws.GET("", wsHandler.HandleConnection)
	}
}
