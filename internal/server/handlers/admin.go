package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/depositservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/ledgerservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/withdrawalservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/statsrepo"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/userrepo"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

type AdminHandler struct {
	withdrawalSvc withdrawalservice.IWithdrawalService
	depositSvc    depositservice.IDepositService
	ledgerSvc     ledgerservice.ILedgerService
	authSvc       authservice.IAuthService
	userRepo      userrepo.IUserRepository
	statsRepo     statsrepo.IStatsRepository
	logger        zerolog.Logger
}

func NewAdminHandler(
	withdrawalSvc withdrawalservice.IWithdrawalService,
	depositSvc depositservice.IDepositService,
	ledgerSvc ledgerservice.ILedgerService,
	authSvc authservice.IAuthService,
	userRepo userrepo.IUserRepository,
	statsRepo statsrepo.IStatsRepository,
	logger zerolog.Logger,
) *AdminHandler {
	return &AdminHandler{
		withdrawalSvc: withdrawalSvc,
		depositSvc:    depositSvc,
		ledgerSvc:     ledgerSvc,
		authSvc:       authSvc,
		userRepo:      userRepo,
		statsRepo:     statsRepo,
		logger:        logger,
	}
}

// adminUser loads the authenticated admin so services can audit the actor.
func (h *AdminHandler) adminUser(c *gin.Context) (*domain.User, bool) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return nil, false
	}
	admin, err := h.authSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return admin, true
}

func (h *AdminHandler) Dashboard(c *gin.Context) {
	stats, err := h.statsRepo.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"stats":                   stats,
		"total_deposited":         currency.CentsToBRL(stats.TotalDepositedCents),
		"total_withdrawn":         currency.CentsToBRL(stats.TotalWithdrawnCents),
		"pending_withdrawals_brl": currency.CentsToBRL(stats.PendingWithdrawalsCents),
	})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, err := h.userRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"users": users})
}

func (h *AdminHandler) ListDeposits(c *gin.Context) {
	limit, offset := pagination(c)
	status := domain.DepositStatus(c.Query("status"))

	deposits, err := h.depositSvc.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"deposits": deposits})
}

func (h *AdminHandler) ListWithdrawals(c *gin.Context) {
	limit, offset := pagination(c)
	status := domain.WithdrawalStatus(c.Query("status"))

	withdrawals, err := h.withdrawalSvc.List(c.Request.Context(), status, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"withdrawals": withdrawals})
}

func (h *AdminHandler) ApproveWithdrawal(c *gin.Context) {
	admin, ok := h.adminUser(c)
	if !ok {
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Identificador do saque inválido")
		return
	}

	withdrawal, err := h.withdrawalSvc.Approve(c.Request.Context(), withdrawalID, admin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"withdrawal": withdrawal})
}

func (h *AdminHandler) RejectWithdrawal(c *gin.Context) {
	admin, ok := h.adminUser(c)
	if !ok {
		return
	}

	withdrawalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Identificador do saque inválido")
		return
	}

	withdrawal, err := h.withdrawalSvc.Reject(c.Request.Context(), withdrawalID, admin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"withdrawal": withdrawal})
}

type manualAdjustRequest struct {
	Amount      string `json:"amount" binding:"required"`
	Description string `json:"description" binding:"required"`
}

func (h *AdminHandler) Credit(c *gin.Context) {
	h.manualAdjust(c, h.ledgerSvc.ManualCredit)
}

func (h *AdminHandler) Debit(c *gin.Context) {
	h.manualAdjust(c, h.ledgerSvc.ManualDebit)
}

func (h *AdminHandler) manualAdjust(
	c *gin.Context,
	apply func(ctx context.Context, admin *domain.User, userID uuid.UUID, amountCents int64, description string) (*domain.LedgerEvent, error),
) {
	admin, ok := h.adminUser(c)
	if !ok {
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Identificador do usuário inválido")
		return
	}

	var req manualAdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Valor ou descrição ausente")
		return
	}

	amountCents, err := currency.ParseBRLToCents(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	event, err := apply(c.Request.Context(), admin, targetID, amountCents, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"event": event})
}
