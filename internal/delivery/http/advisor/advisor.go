package http_advisor

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	"github.com/humanbelnik/kinoshelf/internal/model"
	usecase_advisor "github.com/humanbelnik/kinoshelf/internal/usecase/advisor"
)

// ChatRequestDTO is one chat panel message
type ChatRequestDTO struct {
	Message string `json:"message" example:"Драм жанрын кино санал болго"`
}

// ChatResponseDTO is the bot reply as shown in the panel
type ChatResponseDTO struct {
	Reply string `json:"reply"`
}

// RecommendRequestDTO is the suggest page genre box
type RecommendRequestDTO struct {
	Text string `json:"text" example:"Драм"`
}

type Controller struct {
	uc      *usecase_advisor.Usecase
	limiter gin.HandlerFunc
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithLimiter guards the advisor routes, which call a slow remote service.
func WithLimiter(limiter gin.HandlerFunc) ControllerOption {
	return func(c *Controller) {
		c.limiter = limiter
	}
}

func New(uc *usecase_advisor.Usecase, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	advisor := router.Group("/advisor")
	if c.limiter != nil {
		advisor.Use(c.limiter)
	}
	advisor.POST("/chat", c.chat)
	advisor.POST("/recommend", c.recommend)
}

// @Summary Ask the chat assistant
// @Description Genre and recommendation questions go to the structured endpoint
// @Tags Advisor
// @Accept json
// @Produce json
// @Param request body ChatRequestDTO true "Message"
// @Success 200 {object} ChatResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 409 {object} http_common.ErrorResponse "Already sending or page changed"
// @Failure 429 {object} http_common.ErrorResponse
// @Router /advisor/chat [post]
func (c *Controller) chat(ctx *gin.Context) {
	var req ChatRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "Invalid request format",
		})
		return
	}

	reply, err := c.uc.Ask(ctx.Request.Context(), http_client_middleware.ClientID(ctx), req.Message)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ChatResponseDTO{Reply: reply})
}

// @Summary Recommend by genre
// @Tags Advisor
// @Accept json
// @Produce json
// @Param request body RecommendRequestDTO true "Genre text"
// @Success 200 {object} model.Answer
// @Failure 400 {object} http_common.ErrorResponse "Empty text"
// @Failure 409 {object} http_common.ErrorResponse
// @Failure 502 {object} http_common.ErrorResponse "Advisor unreachable"
// @Router /advisor/recommend [post]
func (c *Controller) recommend(ctx *gin.Context) {
	var req RecommendRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "Invalid request format",
		})
		return
	}

	answer, err := c.uc.Suggest(ctx.Request.Context(), http_client_middleware.ClientID(ctx), req.Text)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, answerDTO(answer))
}

// answerDTO keeps an empty card list as [] for list answers.
func answerDTO(a model.Answer) gin.H {
	h := gin.H{"kind": a.Kind.String()}
	if a.Kind == model.RecommendationList {
		recs := a.Recommendations
		if recs == nil {
			recs = []model.Recommendation{}
		}
		h["recommendations"] = recs
	} else {
		h["message"] = a.Message
	}
	return h
}

func (c *Controller) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase_advisor.ErrEmptyQuery):
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: usecase_advisor.ErrEmptyQuery.Error(),
		})
	case errors.Is(err, usecase_advisor.ErrAlreadySending),
		errors.Is(err, usecase_advisor.ErrStaleResponse):
		ctx.JSON(http.StatusConflict, http_common.ErrorResponse{Message: err.Error()})
	case errors.Is(err, usecase_advisor.ErrAdvisorUnavailable):
		ctx.JSON(http.StatusBadGateway, http_common.ErrorResponse{
			Message: usecase_advisor.ErrAdvisorUnavailable.Error(),
		})
	default:
		c.logger.Error("advisor request failed", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
			Message: "internal error",
		})
	}
}
