package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/ledgerservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/repositories/notificationrepo"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

// AccountHandler serves the caller's own account views: balance, statement
// and notifications.
type AccountHandler struct {
	ledgerSvc ledgerservice.ILedgerService
	notifRepo notificationrepo.INotificationRepository
	logger    zerolog.Logger
}

func NewAccountHandler(ledgerSvc ledgerservice.ILedgerService, notifRepo notificationrepo.INotificationRepository, logger zerolog.Logger) *AccountHandler {
	return &AccountHandler{ledgerSvc: ledgerSvc, notifRepo: notifRepo, logger: logger}
}

func (h *AccountHandler) Balance(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	user, err := h.ledgerSvc.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{
		"balance_cents":            user.BalanceCents,
		"pending_withdrawal_cents": user.PendingWithdrawalCents,
		"available_cents":          user.AvailableCents(),
		"balance":                  currency.CentsToBRL(user.BalanceCents),
		"available":                currency.CentsToBRL(user.AvailableCents()),
	})
}

func (h *AccountHandler) Statement(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	limit, offset := pagination(c)
	events, err := h.ledgerSvc.Events(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"events": events})
}

func (h *AccountHandler) Notifications(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	limit, offset := pagination(c)
	notifications, err := h.notifRepo.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"notifications": notifications})
}

func (h *AccountHandler) MarkNotificationRead(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Identificador da notificação inválido")
		return
	}

	if err := h.notifRepo.MarkRead(c.Request.Context(), userID, notificationID); err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{})
}
