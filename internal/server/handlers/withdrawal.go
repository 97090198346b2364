package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/application/withdrawalservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/pkg/currency"
)

type WithdrawalHandler struct {
	withdrawalSvc withdrawalservice.IWithdrawalService
	authSvc       authservice.IAuthService
	logger        zerolog.Logger
}

func NewWithdrawalHandler(withdrawalSvc withdrawalservice.IWithdrawalService, authSvc authservice.IAuthService, logger zerolog.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawalSvc: withdrawalSvc, authSvc: authSvc, logger: logger}
}

type withdrawalRequest struct {
	Amount              string `json:"amount" binding:"required"`
	BeneficiaryName     string `json:"beneficiary_name" binding:"required"`
	BeneficiaryDocument string `json:"beneficiary_document" binding:"required"`
	PixKeyType          string `json:"pix_key_type" binding:"required,pixkeytype"`
	PixKey              string `json:"pix_key" binding:"required"`
}

func (h *WithdrawalHandler) Request(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Dados do saque inválidos")
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

	withdrawal, err := h.withdrawalSvc.Request(c.Request.Context(), user, withdrawalservice.RequestInput{
		AmountCents:         amountCents,
		BeneficiaryName:     req.BeneficiaryName,
		BeneficiaryDocument: req.BeneficiaryDocument,
		PixKeyType:          domain.PixKeyType(req.PixKeyType),
		PixKey:              req.PixKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":    true,
		"withdrawal": withdrawal,
		"fee":        currency.CentsToBRL(withdrawal.FeeCents),
		"net_amount": currency.CentsToBRL(withdrawal.NetAmountCents),
	})
}

func (h *WithdrawalHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	limit, offset := pagination(c)
	withdrawals, err := h.withdrawalSvc.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"withdrawals": withdrawals})
}
