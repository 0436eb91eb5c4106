package http_review

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	"github.com/humanbelnik/kinoshelf/internal/model"
	usecase_shell "github.com/humanbelnik/kinoshelf/internal/usecase/shell"
)

const (
	HintRating  = "Үнэлгээ 1-10 хооронд байх ёстой."
	HintComment = "Сэтгэгдэл хоосон байж болохгүй."
)

// ReviewFormDTO is the review submission form
type ReviewFormDTO struct {
	MovieID int    `json:"movie_id" example:"1"`
	Rating  int    `json:"rating" example:"8"`
	Comment string `json:"comment" example:"Гайхалтай кино"`
}

// Validate returns a hint per rejected field, nil when the form is acceptable.
func (f ReviewFormDTO) Validate() map[string]string {
	hints := make(map[string]string)
	if f.Rating < model.MinReviewRating || f.Rating > model.MaxReviewRating {
		hints["rating"] = HintRating
	}
	if strings.TrimSpace(f.Comment) == "" {
		hints["comment"] = HintComment
	}
	if len(hints) == 0 {
		return nil
	}
	return hints
}

// FormErrorResponse lists inline hints for the form fields
type FormErrorResponse struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// ReviewsResponseDTO is the dashboard list
type ReviewsResponseDTO struct {
	Reviews []model.UserReview `json:"reviews"`
	Stats   model.ReviewStats  `json:"stats"`
}

type Controller struct {
	shell  *usecase_shell.Shell
	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(shell *usecase_shell.Shell, opts ...ControllerOption) *Controller {
	c := &Controller{
		shell:  shell,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	reviews := router.Group("/reviews")
	reviews.GET("", c.list)
	reviews.GET("/stats", c.stats)
	reviews.POST("", c.add)
	reviews.DELETE("/:review_id", c.remove)
}

// @Summary Client reviews
// @Description Newest first, with count and average
// @Tags Reviews
// @Produce json
// @Success 200 {object} ReviewsResponseDTO
// @Router /reviews [get]
func (c *Controller) list(ctx *gin.Context) {
	reviews, stats, err := c.shell.Reviews(ctx.Request.Context(), http_client_middleware.ClientID(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, ReviewsResponseDTO{Reviews: reviews, Stats: stats})
}

// @Summary Review stats
// @Tags Reviews
// @Produce json
// @Success 200 {object} model.ReviewStats
// @Router /reviews/stats [get]
func (c *Controller) stats(ctx *gin.Context) {
	_, stats, err := c.shell.Reviews(ctx.Request.Context(), http_client_middleware.ClientID(ctx))
	if err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, stats)
}

// @Summary Add a review
// @Description Rating must be 1..10 and the comment non-blank; requires a session
// @Tags Reviews
// @Accept json
// @Produce json
// @Param request body ReviewFormDTO true "Review form"
// @Success 201 {object} model.UserReview
// @Failure 400 {object} FormErrorResponse
// @Failure 401 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Router /reviews [post]
func (c *Controller) add(ctx *gin.Context) {
	var form ReviewFormDTO
	if err := ctx.ShouldBindJSON(&form); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "Invalid request format",
		})
		return
	}

	if hints := form.Validate(); hints != nil {
		ctx.JSON(http.StatusBadRequest, FormErrorResponse{
			Message: "invalid review",
			Fields:  hints,
		})
		return
	}

	review, ok, err := c.shell.AddReview(ctx.Request.Context(), http_client_middleware.ClientID(ctx), form.MovieID, form.Rating, form.Comment)
	if err != nil {
		c.fail(ctx, err)
		return
	}
	if !ok {
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "movie not found",
		})
		return
	}

	ctx.JSON(http.StatusCreated, review)
}

// @Summary Delete a review
// @Description Unknown ids are ignored
// @Tags Reviews
// @Param review_id path int true "Review id"
// @Success 204
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 401 {object} http_common.ErrorResponse
// @Router /reviews/{review_id} [delete]
func (c *Controller) remove(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("review_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid review id",
		})
		return
	}

	if err := c.shell.RemoveReview(ctx.Request.Context(), http_client_middleware.ClientID(ctx), id); err != nil {
		c.fail(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (c *Controller) fail(ctx *gin.Context, err error) {
	if errors.Is(err, usecase_shell.ErrLoginRequired) {
		ctx.JSON(http.StatusUnauthorized, http_common.ErrorResponse{
			Message: "login required",
		})
		return
	}

	c.logger.Error("review operation failed", slog.String("error", err.Error()))
	ctx.JSON(http.StatusInternalServerError, http_common.ErrorResponse{
		Message: "internal error",
	})
}
