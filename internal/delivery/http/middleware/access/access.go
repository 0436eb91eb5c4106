package http_access_middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
)

const ModeReadOnly = "RO"

// ReadOnlyBadGatewayMiddleware lets only safe methods through on a read-only
// instance. Websocket upgrades are GETs and stay allowed.
func ReadOnlyBadGatewayMiddleware(mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if mode != ModeReadOnly {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		c.JSON(http.StatusBadGateway, http_common.ErrorResponse{
			Message: "Write operations not allowed on read-only instance",
		})
		c.Abort()
	}
}
