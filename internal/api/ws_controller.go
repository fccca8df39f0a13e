package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSController upgrades dashboard clients to websocket connections on the hub.
type WSController struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewWSController(hub *Hub, allowedOrigins []string, log *zap.Logger) *WSController {
	allowed := originSet(allowedOrigins)
	return &WSController{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed["*"] || allowed[origin]
			},
		},
		log: log,
	}
}

// ServeWS handles GET /api/v1/ws/dashboard. Clients only listen; anything they
// send is read and discarded to keep control frames flowing.
func (wc *WSController) ServeWS(c *gin.Context) {
	conn, err := wc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		wc.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	wc.hub.AddClient(conn)
	wc.log.Info("dashboard client connected", zap.Int("clients", wc.hub.ClientsCount()))

	defer func() {
		wc.hub.RemoveClient(conn)
		wc.log.Info("dashboard client disconnected", zap.Int("clients", wc.hub.ClientsCount()))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				wc.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}
	}
}

func originSet(origins []string) map[string]bool {
	set := make(map[string]bool, len(origins))
	for _, o := range origins {
		set[o] = true
	}
	return set
}
