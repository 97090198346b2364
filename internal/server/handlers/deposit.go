package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/depositservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

type DepositHandler struct {
	depositSvc depositservice.IDepositService
	authSvc    authservice.IAuthService
	logger     zerolog.Logger
}

func NewDepositHandler(depositSvc depositservice.IDepositService, authSvc authservice.IAuthService, logger zerolog.Logger) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc, authSvc: authSvc, logger: logger}
}

type createDepositRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func (h *DepositHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	var req createDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Valor do depósito ausente")
		return
	}

	amountCents, err := currency.ParseBRLToCents(req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := h.authSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	deposit, err := h.depositSvc.Create(c.Request.Context(), user, amountCents)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"deposit": deposit,
		"pix": gin.H{
			"copy_paste":   deposit.PixPayload,
			"external_ref": deposit.ExternalRef,
			"amount":       currency.CentsToBRL(deposit.AmountCents),
		},
	})
}

func (h *DepositHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	limit, offset := pagination(c)
	deposits, err := h.depositSvc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"deposits": deposits})
}

type openInfractionRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=MEDIATION CHARGEBACK DISPUTE"`
	Reason string `json:"reason"`
}

func (h *DepositHandler) OpenInfraction(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	depositID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "Identificador do depósito inválido")
		return
	}

	var req openInfractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Tipo da infração inválido")
		return
	}

	user, err := h.authSvc.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	infraction, err := h.depositSvc.OpenInfraction(c.Request.Context(), user, depositID, domain.DepositStatus(req.Kind), req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"infraction": infraction,
	})
}

func (h *DepositHandler) ListInfractions(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	limit, offset := pagination(c)
	infractions, err := h.depositSvc.ListInfractions(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"infractions": infractions})
}
