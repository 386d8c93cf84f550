package controllers

import (
	"net/http"

	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/middlewares"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HubController -> endpoint WebSocket untuk tampilan lantai staff
type HubController struct {
	Hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewHubController(h *hub.Hub, allowedOrigin string) *HubController {
	return &HubController{
		Hub: h,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "*" || origin == allowedOrigin
			},
		},
	}
}

func (hc *HubController) Handle(c *gin.Context) {
	role := c.GetString(middlewares.ContextRole)
	if role != models.RoleStaff {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := hc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	hc.Hub.Register(ws, role)

	// staff tidak mengirim apa-apa, loop ini hanya mendeteksi disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}
	hc.Hub.Unregister(ws)
}
