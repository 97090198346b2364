package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/server/middleware"
	"github.com/orizonpaybr/gateway-api-sub004/internal/server/websocket"
)

var upgrader = gws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub    *websocket.WsHub
	logger zerolog.Logger
}

func NewWebSocketHandler(hub *websocket.WsHub, logger zerolog.Logger) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, logger: logger}
}

// HandleConnection upgrades the request and keeps the connection registered
// until the client goes away. The hub pushes deposit, withdrawal and balance
// events for the authenticated user only.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Não autenticado"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := &websocket.WsClient{
		UserID: userID.(string),
		Conn:   conn,
	}
	h.hub.Register <- client

	defer func() {
		h.hub.Unregister <- client
	}()

	// Drain the read side; clients only receive.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure) {
				h.logger.Warn().Err(err).Str("user_id", client.UserID).Msg("WebSocket read error")
			}
			return
		}
	}
}
