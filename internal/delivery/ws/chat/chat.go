package ws_chat

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type Controller struct {
	hub    *Hub
	logger *slog.Logger
}

func NewController(hub *Hub) *Controller {
	return &Controller{
		hub:    hub,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/advisor/ws", c.chatWS)
}

// @Summary Chat panel websocket
// @Description Pushes the greeting on connect; send {"message": "..."} and receive BOT_MESSAGE or ERROR events
// @Tags Advisor
// @Success 101
// @Router /advisor/ws [get]
func (c *Controller) chatWS(ctx *gin.Context) {
	clientID := http_client_middleware.ClientID(ctx)
	if clientID == "" {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{Message: "unknown client"})
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		c.logger.Error("failed to upgrade to websocket",
			slog.String("error", err.Error()),
		)
		return
	}

	if client := c.hub.Connect(conn, clientID); client == nil {
		c.logger.Warn("chat hub is stopped, connection dropped")
	}
}
