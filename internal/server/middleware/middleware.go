package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/application/authservice"
	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

const (
	CtxUserID     = "user_id"
	CtxUsername   = "username"
	CtxPermission = "permission"
)

type Middleware struct {
	AuthSvc authservice.IAuthService
	logger  zerolog.Logger
}

func NewMiddleware(authSvc authservice.IAuthService, logger zerolog.Logger) *Middleware {
	return &Middleware{
		AuthSvc: authSvc,
		logger:  logger,
	}
}

func (m *Middleware) SetupMiddleware(router *gin.Engine) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Gateway-Token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		m.logger.Info().
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status", param.StatusCode).
			Dur("latency", param.Latency).
			Str("client_ip", param.ClientIP).
			Msg("HTTP Request")
		return ""
	}))

	// Panics must never leak stack traces, paths or SQL text to the client.
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		m.logger.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("Recovered from panic")
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "Erro interno do servidor",
		})
	}))

	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	})
}

// AuthMiddleware resolves the bearer token into the caller's identity. A
// token carrying the intermediate 2FA scope grants nothing here.
func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenString string

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "Formato do cabeçalho Authorization inválido",
				})
				c.Abort()
				return
			}
			tokenString = parts[1]
		} else {
			tokenString = c.Query("token")
			if tokenString == "" {
				c.JSON(http.StatusUnauthorized, gin.H{
					"success": false,
					"message": "Token de autenticação ausente",
				})
				c.Abort()
				return
			}
		}

		claims, err := m.AuthSvc.VerifyToken(c.Request.Context(), tokenString)
		if err != nil || claims.Scope != "access" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token inválido ou expirado",
			})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID.String())
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxPermission, int(claims.Permission))

		c.Next()
	}
}

// AdminMiddleware runs after AuthMiddleware and rejects non-admin callers.
func (m *Middleware) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		permission, ok := c.Get(CtxPermission)
		if !ok || domain.Permission(permission.(int)) != domain.PermissionAdmin {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "Acesso negado",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GatewayTokenMiddleware authenticates PIX provider callbacks.
func (m *Middleware) GatewayTokenMiddleware(expectedToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Gateway-Token")
		if expectedToken == "" || token != expectedToken {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Token do gateway inválido",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
