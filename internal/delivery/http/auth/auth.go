package http_auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	"github.com/humanbelnik/kinoshelf/internal/model"
	usecase_session "github.com/humanbelnik/kinoshelf/internal/usecase/session"
	usecase_shell "github.com/humanbelnik/kinoshelf/internal/usecase/shell"
)

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
	router.GET("/session", c.session)

	auth := router.Group("/auth")
	auth.POST("/login", c.login)
	auth.POST("/register", c.register)
	auth.POST("/logout", c.logout)
}

// CredentialsRequestDTO is the login and register form
type CredentialsRequestDTO struct {
	Email    string `json:"email" example:"bat@kino.mn"`
	Password string `json:"password" example:"secret123"`
}

// RegisterResponseDTO carries the success notice and the new state
type RegisterResponseDTO struct {
	Message string         `json:"message"`
	State   model.AppState `json:"state"`
}

// @Summary Current session
// @Description Restores the session from the client's local storage
// @Tags Auth
// @Produce json
// @Success 200 {object} model.AppState
// @Failure 500 {object} http_common.ErrorResponse
// @Router /session [get]
func (c *Controller) session(ctx *gin.Context) {
	state, err := c.shell.State(ctx.Request.Context(), http_client_middleware.ClientID(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// @Summary Log in
// @Description Checks the credentials with the auth service and lands on home
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequestDTO true "Credentials"
// @Success 200 {object} model.AppState
// @Failure 400 {object} http_common.ErrorResponse "Empty field"
// @Failure 401 {object} http_common.ErrorResponse "Rejected by the auth service"
// @Failure 502 {object} http_common.ErrorResponse "Auth service unreachable"
// @Router /auth/login [post]
func (c *Controller) login(ctx *gin.Context) {
	var req CredentialsRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "Invalid request format",
		})
		return
	}

	state, err := c.shell.Login(ctx.Request.Context(), http_client_middleware.ClientID(ctx), req.Email, req.Password)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// @Summary Register
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body CredentialsRequestDTO true "Credentials"
// @Success 201 {object} RegisterResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 502 {object} http_common.ErrorResponse
// @Router /auth/register [post]
func (c *Controller) register(ctx *gin.Context) {
	var req CredentialsRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "Invalid request format",
		})
		return
	}

	state, message, err := c.shell.Register(ctx.Request.Context(), http_client_middleware.ClientID(ctx), req.Email, req.Password)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, RegisterResponseDTO{Message: message, State: state})
}

// @Summary Log out
// @Description Forgets the identity; reviews stay
// @Tags Auth
// @Produce json
// @Success 200 {object} model.AppState
// @Router /auth/logout [post]
func (c *Controller) logout(ctx *gin.Context) {
	state, err := c.shell.Logout(ctx.Request.Context(), http_client_middleware.ClientID(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

func (c *Controller) fail(ctx *gin.Context, err error) {
	var rejection *model.RemoteRejection
	switch {
	case errors.As(err, &rejection):
		status := rejection.Status
		if status < http.StatusBadRequest || status >= http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		ctx.JSON(status, http_common.ErrorResponse{Message: rejection.Detail})
	case errors.Is(err, usecase_session.ErrEmptyEmail),
		errors.Is(err, usecase_session.ErrEmptyPassword),
		errors.Is(err, usecase_session.ErrEmptyIdentity):
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{Message: err.Error()})
	case errors.Is(err, usecase_session.ErrAuthUnavailable):
		ctx.JSON(http.StatusBadGateway, http_common.ErrorResponse{
			Message: usecase_session.ErrAuthUnavailable.Error(),
		})
	default:
		c.logger.Error("internal auth error", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
	}
}
