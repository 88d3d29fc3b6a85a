package controller

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/ikkim/storefront/internal/middleware"
	ws "github.com/ikkim/storefront/internal/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     sameOrigin,
}

// sameOrigin only admits tabs served by this host.
func sameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return u.Host == r.Host
}

// LiveController streams cart updates to open tabs
type LiveController struct {
	hub *ws.Hub
}

func NewLiveController(hub *ws.Hub) *LiveController {
	return &LiveController{
		hub: hub,
	}
}

// CartSocket upgrades the tab to a websocket bound to the visitor's session
// GET /ws/cart
func (ctrl *LiveController) CartSocket(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	s, ok := currentSession(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	client := ws.NewClient(ctrl.hub, &ws.Conn{Conn: conn}, s.ID)
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	log.Info("Cart socket connected", map[string]interface{}{
		"session_id": s.ID,
	})
}
