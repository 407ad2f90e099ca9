package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"horizon-api/models"
)

// WSHandler pushes transfer events to connected clients. Each client
// subscribes to one user channel; after a committed transfer both the
// sender's and the receiver's channels get a signal so UIs can re-fetch
// balances.
type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("[WS] client disconnected from user channel: %v", userID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("[WS] error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS upgrades the request and binds the session to a user channel.
func (h *WSHandler) HandleWS(c *gin.Context) {
	userID := c.Param("id")

	h.M.HandleConnect(func(s *melody.Session) {
		s.Set("user_id", userID)
		log.Printf("[WS] client connected to user channel: %s", userID)
	})

	if err := h.M.HandleRequest(c.Writer, c.Request); err != nil {
		log.Printf("[WS] failed to upgrade websocket: %v", err)
	}
}

// BroadcastTransfer signals both parties of a committed transfer.
func (h *WSHandler) BroadcastTransfer(t models.Transfer) {
	msg, err := json.Marshal(gin.H{
		"type":        "transfer",
		"transfer_id": t.ID,
		"amount":      t.Amount,
	})
	if err != nil {
		return
	}

	err = h.M.BroadcastFilter(msg, func(s *melody.Session) bool {
		id, exists := s.Get("user_id")
		return exists && (id == t.SenderID || id == t.ReceiverID)
	})
	if err != nil {
		log.Printf("[WS] error broadcasting transfer %s: %v", t.ID, err)
	}
}
