package handlers

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/depositservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type CallbackHandler struct {
	depositSvc depositservice.IDepositService
	logger     zerolog.Logger
}

func NewCallbackHandler(depositSvc depositservice.IDepositService, logger zerolog.Logger) *CallbackHandler {
	return &CallbackHandler{depositSvc: depositSvc, logger: logger}
}

// PixCallback settles or cancels a pending charge. The raw body is kept
// alongside the deposit for audit.
func (h *CallbackHandler) PixCallback(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondBadRequest(c, "Corpo da requisição inválido")
		return
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var callback domain.GatewayCallback
	if err := c.ShouldBindJSON(&callback); err != nil {
		respondBadRequest(c, "Payload do callback inválido")
		return
	}
	callback.Raw = body

	deposit, err := h.depositSvc.ApplyCallback(c.Request.Context(), &callback)
	if err != nil {
		h.logger.Error().Err(err).
			Str("external_ref", callback.ExternalRef).
			Str("status", string(callback.Status)).
			Msg("Failed to apply gateway callback")
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"status":  deposit.Status,
	})
}
