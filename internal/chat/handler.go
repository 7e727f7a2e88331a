package chat

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/ayaan09TTT/tradeforge/internal/httputil"
	"github.com/ayaan09TTT/tradeforge/internal/logger"
	"github.com/ayaan09TTT/tradeforge/internal/traderoom"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Handler struct {
	hub      *Hub
	registry *traderoom.Registry
}

func NewHandler(hub *Hub, registry *traderoom.Registry) *Handler {
	return &Handler{hub: hub, registry: registry}
}

type inboundFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ServeRoom upgrades the connection and joins the trade room. Inbound
// message frames go through the registry (same validation and persistence as
// the REST endpoint) and come back to everyone as message_new events.
func (h *Handler) ServeRoom(c echo.Context) error {
	accountID, _ := c.Get("user_id").(string)
	accountName, _ := c.Get("user_name").(string)
	roomID := c.Param("id")

	if _, err := h.registry.Get(c.Request().Context(), roomID); err != nil {
		return httputil.Error(c, err)
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.hub.Join(roomID, accountID, ws)
	defer h.hub.Leave(roomID, accountID, ws)

	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			return nil
		}
		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Type != "message" {
			continue
		}
		// PostMessage publishes message_new through the hub itself.
		if _, err := h.registry.PostMessage(c.Request().Context(), roomID, accountID, accountName, frame.Content); err != nil {
			logger.Log.Debug("ws message rejected",
				zap.String("room_id", roomID), zap.Error(err))
		}
	}
}
