package http_navigation

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	"github.com/humanbelnik/kinoshelf/internal/model"
	usecase_shell "github.com/humanbelnik/kinoshelf/internal/usecase/shell"
)

// NavigateRequestDTO names the target page
type NavigateRequestDTO struct {
	Page string `json:"page" binding:"required" example:"suggest"`
}

type Controller struct {
	shell  *usecase_shell.Shell
	logger *slog.Logger
}

func New(shell *usecase_shell.Shell) *Controller {
	return &Controller{
		shell:  shell,
		logger: slog.Default(),
	}
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/state", c.state)
	router.GET("/view", c.view)
	router.POST("/navigate", c.navigate)
	router.POST("/navigate/back", c.back)
	router.POST("/movies/:movie_id/open", c.openMovie)
}

// @Summary Current page and session
// @Tags Navigation
// @Produce json
// @Success 200 {object} model.AppState
// @Router /state [get]
func (c *Controller) state(ctx *gin.Context) {
	state, err := c.shell.State(ctx.Request.Context(), http_client_middleware.ClientID(ctx))
	c.respond(ctx, state, err)
}

// @Summary Rendered current page
// @Description View model of the current page; genre and q drive the suggest page
// @Tags Navigation
// @Produce json
// @Param genre query string false "Selected genre"
// @Param q query string false "Search text"
// @Success 200 {object} model.PageView
// @Router /view [get]
func (c *Controller) view(ctx *gin.Context) {
	view, err := c.shell.View(ctx.Request.Context(), http_client_middleware.ClientID(ctx), usecase_shell.ViewQuery{
		Genre: ctx.Query("genre"),
		Query: ctx.Query("q"),
	})
	if err != nil {
		c.logger.Error("failed to render view", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{Message: "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, view)
}

// @Summary Go to a page
// @Description Unknown pages land on home; dashboard needs a session
// @Tags Navigation
// @Accept json
// @Produce json
// @Param request body NavigateRequestDTO true "Target page"
// @Success 200 {object} model.AppState
// @Failure 400 {object} http_common.ErrorResponse
// @Router /navigate [post]
func (c *Controller) navigate(ctx *gin.Context) {
	var req NavigateRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "Invalid request format",
		})
		return
	}

	state, err := c.shell.Navigate(ctx.Request.Context(), http_client_middleware.ClientID(ctx), req.Page)
	c.respond(ctx, state, err)
}

// @Summary Back to suggestions
// @Tags Navigation
// @Produce json
// @Success 200 {object} model.AppState
// @Router /navigate/back [post]
func (c *Controller) back(ctx *gin.Context) {
	state, err := c.shell.Back(ctx.Request.Context(), http_client_middleware.ClientID(ctx))
	c.respond(ctx, state, err)
}

// @Summary Open a movie
// @Description Unknown ids land on home
// @Tags Navigation
// @Produce json
// @Param movie_id path int true "Movie id"
// @Success 200 {object} model.AppState
// @Failure 400 {object} http_common.ErrorResponse
// @Router /movies/{movie_id}/open [post]
func (c *Controller) openMovie(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("movie_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid movie id",
		})
		return
	}

	state, err := c.shell.OpenMovie(ctx.Request.Context(), http_client_middleware.ClientID(ctx), id)
	c.respond(ctx, state, err)
}

func (c *Controller) respond(ctx *gin.Context, state model.AppState, err error) {
	if err != nil {
		c.logger.Error("navigation failed", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{Message: "internal error"})
		return
	}
	ctx.JSON(http.StatusOK, state)
}
