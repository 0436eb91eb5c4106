package http_swagger

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controller struct {
	docURL string
}

// New serves the swagger UI; docURL points at the generated doc.json.
func New(docURL string) *Controller {
	return &Controller{docURL: docURL}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	opts := []func(*ginSwagger.Config){ginSwagger.DocExpansion("list")}
	if c.docURL != "" {
		opts = append(opts, ginSwagger.URL(c.docURL))
	}
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, opts...))
}
