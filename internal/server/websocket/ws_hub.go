package websocket

import (
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/orizonpaybr/gateway-api-sub004/internal/domain"
)

type WsHub struct {
	Clients    map[string]map[*websocket.Conn]bool
	Broadcast  chan WsMessage
	Register   chan *WsClient
	Unregister chan *WsClient
	Logger     zerolog.Logger
}

type WsClient struct {
	UserID string
	Conn   *websocket.Conn
}

type WsMessage struct {
	Type       string             `json:"type"`
	Deposit    *domain.Deposit    `json:"deposit,omitempty"`
	Withdrawal *domain.Withdrawal `json:"withdrawal,omitempty"`
	Balance    *BalanceUpdate     `json:"balance,omitempty"`
}

type BalanceUpdate struct {
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
}

func NewWsHub(logger zerolog.Logger) *WsHub {
	hub := &WsHub{
		Clients:    make(map[string]map[*websocket.Conn]bool),
		Broadcast:  make(chan WsMessage, 100),
		Register:   make(chan *WsClient, 100),
		Unregister: make(chan *WsClient, 100),
		Logger:     logger,
	}
	return hub
}

func (h *WsHub) Run() {
	for {
		select {
		case client := <-h.Register:
			if h.Clients[client.UserID] == nil {
				h.Clients[client.UserID] = make(map[*websocket.Conn]bool)
			}
			h.Clients[client.UserID][client.Conn] = true
			h.Logger.Info().
				Str("user_id", client.UserID).
				Int("connection_count", len(h.Clients[client.UserID])).
				Msg("WebSocket client registered")

		case client := <-h.Unregister:
			if clients, ok := h.Clients[client.UserID]; ok {
				delete(clients, client.Conn)
				if len(clients) == 0 {
					delete(h.Clients, client.UserID)
				}
				client.Conn.Close()
			}

		case message := <-h.Broadcast:
			var userID string
			switch message.Type {
			case "deposit":
				if message.Deposit != nil {
					userID = message.Deposit.UserID.String()
				}
			case "withdrawal":
				if message.Withdrawal != nil {
					userID = message.Withdrawal.UserID.String()
				}
			case "balance":
				if message.Balance != nil {
					userID = message.Balance.UserID
				}
			}

			if clients, ok := h.Clients[userID]; ok && userID != "" {
				for conn := range clients {
					if err := conn.WriteJSON(message); err != nil {
						h.Logger.Err(err).
							Str("user_id", userID).
							Str("type", message.Type).
							Msg("Failed to send WebSocket message")
						conn.Close()
						delete(clients, conn)
					}
				}
			}
		}
	}
}

// PublishDeposit pushes a deposit status change to the owner's connections.
func (h *WsHub) PublishDeposit(d *domain.Deposit) {
	select {
	case h.Broadcast <- WsMessage{Type: "deposit", Deposit: d}:
	default:
	}
}

func (h *WsHub) PublishWithdrawal(w *domain.Withdrawal) {
	select {
	case h.Broadcast <- WsMessage{Type: "withdrawal", Withdrawal: w}:
	default:
	}
}

func (h *WsHub) PublishBalance(userID string, balanceCents int64) {
	select {
	case h.Broadcast <- WsMessage{Type: "balance", Balance: &BalanceUpdate{UserID: userID, BalanceCents: balanceCents}}:
	default:
	}
}
