package handlers

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"

	"github.com/microgestion/gestion-api/middleware"
)

type WSHandler struct {
	M *melody.Melody
}

func NewWSHandler() *WSHandler {
	m := melody.New()

	m.Config.MaxMessageSize = 1024 * 1024

	// Keep-Alive (nécessaire derrière les proxies des hébergeurs cloud)
	m.Config.PingPeriod = 30 * time.Second
	m.Config.PongWait = 60 * time.Second

	m.HandleConnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("✅ Dashboard client connected: %v", userID)
	})

	m.HandleDisconnect(func(s *melody.Session) {
		userID, _ := s.Get("user_id")
		log.Printf("🔌 Dashboard client disconnected: %v", userID)
	})

	m.HandleError(func(s *melody.Session, err error) {
		log.Printf("❌ WebSocket Error: %v", err)
	})

	return &WSHandler{M: m}
}

// HandleWS attache la session websocket au tableau de bord de l'utilisateur
// authentifié.
func (h *WSHandler) HandleWS(c *gin.Context) {
	userID := middleware.GetUserID(c)

	keys := map[string]interface{}{"user_id": userID}
	if err := h.M.HandleRequestWithKeys(c.Writer, c.Request, keys); err != nil {
		log.Printf("❌ Failed to upgrade websocket: %v", err)
	}
}

// BroadcastUpdate signale aux sessions de l'utilisateur qu'une donnée du
// tableau de bord a changé.
func (h *WSHandler) BroadcastUpdate(userID string, updateType string) {
	msg := []byte(`{"type": "` + updateType + `"}`)

	err := h.M.BroadcastFilter(msg, func(q *melody.Session) bool {
		id, exists := q.Get("user_id")
		return exists && id == userID
	})

	if err != nil {
		log.Printf("⚠️ Error broadcasting to user %s: %v", userID, err)
	}
}
