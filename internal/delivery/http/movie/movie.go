package http_movie

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/kinoshelf/internal/delivery/http/common"
	"github.com/humanbelnik/kinoshelf/internal/model"
	storage_catalog "github.com/humanbelnik/kinoshelf/internal/storage/catalog"
)

const defaultTopN = 4

// MoviesListResponseDTO is a list of catalog movies
type MoviesListResponseDTO struct {
	Movies []model.Movie `json:"movies"`
	Total  int           `json:"total"`
}

// MovieResponseDTO is one movie with its watch link
type MovieResponseDTO struct {
	model.Movie
	WatchURL string `json:"watch_url,omitempty" example:"https://www.imdb.com/title/tt0468569/"`
}

// GenresResponseDTO is the ordered genre filter list
type GenresResponseDTO struct {
	Genres []string `json:"genres"`
}

type Controller struct {
	catalog *storage_catalog.Catalog
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(catalog *storage_catalog.Catalog, opts ...ControllerOption) *Controller {
	c := &Controller{
		catalog: catalog,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	movies := router.Group("/movies")
	movies.GET("", c.getMovies)
	movies.GET("/top", c.getTopRated)
	movies.GET("/search", c.search)
	movies.GET("/genres", c.getGenres)
	movies.GET("/:movie_id", c.getMovie)
}

func list(movies []model.Movie) MoviesListResponseDTO {
	return MoviesListResponseDTO{Movies: movies, Total: len(movies)}
}

// @Summary Catalog movies
// @Description Returns the catalog in order, optionally filtered by genre
// @Tags Movies
// @Produce json
// @Param genre query string false "Genre tag, Бүгд selects everything"
// @Success 200 {object} MoviesListResponseDTO
// @Router /movies [get]
func (c *Controller) getMovies(ctx *gin.Context) {
	genre := ctx.Query("genre")
	if genre == "" {
		ctx.JSON(http.StatusOK, list(c.catalog.All()))
		return
	}
	ctx.JSON(http.StatusOK, list(c.catalog.GetByGenre(genre)))
}

// @Summary Top rated movies
// @Tags Movies
// @Produce json
// @Param n query int false "How many" default(4)
// @Success 200 {object} MoviesListResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Router /movies/top [get]
func (c *Controller) getTopRated(ctx *gin.Context) {
	n := defaultTopN
	if raw := ctx.Query("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
				Message: "n must be an integer",
			})
			return
		}
		n = parsed
	}

	ctx.JSON(http.StatusOK, list(c.catalog.GetTopRated(n)))
}

// @Summary Search movies
// @Description Case-insensitive match over title, description, genres, director and cast
// @Tags Movies
// @Produce json
// @Param q query string false "Search text"
// @Success 200 {object} MoviesListResponseDTO
// @Router /movies/search [get]
func (c *Controller) search(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, list(c.catalog.Search(ctx.Query("q"))))
}

// @Summary Genre filter list
// @Tags Movies
// @Produce json
// @Success 200 {object} GenresResponseDTO
// @Router /movies/genres [get]
func (c *Controller) getGenres(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, GenresResponseDTO{Genres: c.catalog.Genres()})
}

// @Summary Movie by id
// @Tags Movies
// @Produce json
// @Param movie_id path int true "Movie id"
// @Success 200 {object} MovieResponseDTO
// @Failure 400 {object} http_common.ErrorResponse
// @Failure 404 {object} http_common.ErrorResponse
// @Router /movies/{movie_id} [get]
func (c *Controller) getMovie(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("movie_id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, http_common.ErrorResponse{
			Message: "invalid movie id",
		})
		return
	}

	movie, ok := c.catalog.GetByID(id)
	if !ok {
		c.logger.Warn("movie not found", slog.Int("movie_id", id))
		ctx.JSON(http.StatusNotFound, http_common.ErrorResponse{
			Message: "movie not found",
		})
		return
	}

	ctx.JSON(http.StatusOK, MovieResponseDTO{Movie: movie, WatchURL: movie.WatchURL()})
}
