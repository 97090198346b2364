package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
)

type AuthHandler struct {
	authSvc authservice.IAuthService
	logger  zerolog.Logger
}

func NewAuthHandler(authSvc authservice.IAuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, logger: logger}
}

type registerRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=32"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phone_number"`
	Gender      string `json:"gender"`
	Password    string `json:"password" binding:"required,strongpw"`
	RefCode     string `json:"ref_code"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Dados de cadastro inválidos")
		return
	}

	// Referral links carry the code as ?ref=; the body field wins when both
	// are present.
	if req.RefCode == "" {
		req.RefCode = c.Query("ref")
	}

	user, token, err := h.authSvc.Register(c.Request.Context(), authservice.RegisterInput{
		Username:    req.Username,
		Name:        req.Name,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
		Password:    req.Password,
		RefCode:     req.RefCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

// loginRequest accepts the credential under either key; remember is accepted
// for wire compatibility but the session length is the fixed JWT TTL.
type loginRequest struct {
	Login    string `json:"login"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Credenciais ausentes")
		return
	}

	login := req.Login
	if login == "" {
		login = req.Username
	}
	if login == "" {
		respondBadRequest(c, "Credenciais ausentes")
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), login, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	if result.TwoFARequired {
		respondOK(c, gin.H{
			"twofa_required": true,
			"token":          result.Token,
		})
		return
	}

	respondOK(c, gin.H{
		"token": result.Token,
		"user":  result.User,
	})
}

type twoFARequest struct {
	Token string `json:"token" binding:"required"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

// VerifyTwoFA exchanges the short-lived token issued by Login plus a valid
// TOTP code for a full access token.
func (h *AuthHandler) VerifyTwoFA(c *gin.Context) {
	var req twoFARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Token ou código ausente")
		return
	}

	claims, err := h.authSvc.VerifyToken(c.Request.Context(), req.Token)
	if err != nil || claims.Scope != "twofa" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token inválido ou expirado"})
		return
	}

	token, err := h.authSvc.VerifyTwoFA(c.Request.Context(), claims.UserID, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"token": token})
}
