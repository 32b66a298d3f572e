package handlers

import (
	"net/http"

	"ecotracker/ws"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// WSHandler upgrades dashboard connections and attaches them to the hub.
type WSHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
	log      *logrus.Entry
}

// NewWSHandler builds a handler accepting upgrades from allowedOrigins, or
// from any origin when the list is empty.
func NewWSHandler(hub *ws.Hub, allowedOrigins []string, log *logrus.Entry) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(r *http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// HandleDashboardWS serves GET /ws. Clients send
// {"type":"subscribe","deviceId":"..."} to start receiving updates.
func (h *WSHandler) HandleDashboardWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnf("websocket upgrade failed: %s", err)
		return
	}

	client := ws.NewClient(h.hub, conn)
	h.hub.Register(client)
	h.log.Debugf("dashboard client %s connected from %s", client.ID(), conn.RemoteAddr())

	go client.WritePump()
	client.ReadPump()
	h.log.Debugf("dashboard client %s disconnected", client.ID())
}
