package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/middleware"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// pagination normalizes ?page and ?limit into a limit/offset pair.
func pagination(c *gin.Context) (limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if err != nil || limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return limit, (page - 1) * limit
}

func callerID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(middleware.CtxUserID)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func respondOK(c *gin.Context, data gin.H) {
	payload := gin.H{"success": true}
	for k, v := range data {
		payload[k] = v
	}
	c.JSON(http.StatusOK, payload)
}

// respondError maps domain errors to HTTP statuses. Everything unexpected
// collapses into a generic 500 so that driver and SQL details never reach
// the client.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Registro não encontrado"})
	case errors.Is(err, domain.ErrInsufficientBalance):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": domain.ErrInsufficientBalance.Error()})
	case errors.Is(err, domain.ErrAlreadyProcessed):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": domain.ErrAlreadyProcessed.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Transição de status inválida"})
	case errors.Is(err, domain.ErrMissingTransaction):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Identificador da transação ausente"})
	case errors.Is(err, domain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Valor inválido"})
	case errors.Is(err, domain.ErrInvalidPixKey):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Chave PIX inválida"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Credenciais inválidas"})
	case errors.Is(err, domain.ErrInvalidTwoFACode):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Código 2FA inválido"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Acesso negado"})
	case errors.Is(err, domain.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Usuário já cadastrado"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Erro interno do servidor"})
	}
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": message})
}

// strongPassword enforces the registration password policy: at least eight
// characters mixing upper case, lower case, digit and symbol.
func strongPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	return upper && lower && digit && special
}
