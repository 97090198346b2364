package domain

import "errors"

// Sentinel errors for the business rules. Handlers map these onto the HTTP
// error envelope; anything else becomes a sanitized 500.
var (
	ErrNotFound            = errors.New("registro não encontrado")
	ErrAlreadyProcessed    = errors.New("already processed")
	ErrInsufficientBalance = errors.New("saldo insuficiente")
	ErrInvalidTransition   = errors.New("transição de status inválida")
	ErrMissingTransaction  = errors.New("idTransaction ausente para conclusão")
	ErrForbidden           = errors.New("acesso negado")
	ErrInvalidCredentials  = errors.New("credenciais inválidas")
	ErrInvalidTwoFACode    = errors.New("código 2FA inválido")
	ErrUserExists          = errors.New("usuário já cadastrado")
	ErrInvalidPixKey       = errors.New("chave PIX inválida")
	ErrInvalidAmount       = errors.New("valor inválido")
)
