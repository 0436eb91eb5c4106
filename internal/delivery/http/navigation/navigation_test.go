package http_navigation

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	http_client_middleware "github.com/humanbelnik/kinoshelf/internal/delivery/http/middleware/client"
	infra_memory_localstorage "github.com/humanbelnik/kinoshelf/internal/infra/memory/localstorage"
	infra_seed "github.com/humanbelnik/kinoshelf/internal/infra/seed"
	"github.com/humanbelnik/kinoshelf/internal/model"
	storage_catalog "github.com/humanbelnik/kinoshelf/internal/storage/catalog"
	usecase_navigation "github.com/humanbelnik/kinoshelf/internal/usecase/navigation"
	usecase_review "github.com/humanbelnik/kinoshelf/internal/usecase/review"
	usecase_session "github.com/humanbelnik/kinoshelf/internal/usecase/session"
	usecase_shell "github.com/humanbelnik/kinoshelf/internal/usecase/shell"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "kinoshelf_client"

type acceptAll struct{}

func (acceptAll) Login(context.Context, string, string) error    { return nil }
func (acceptAll) Register(context.Context, string, string) error { return nil }

type NavigationControllerSuite struct {
	suite.Suite
}

type resources struct {
	engine *gin.Engine
	cookie *http.Cookie
}

func initResources() *resources {
	gin.SetMode(gin.TestMode)
	seed := infra_seed.MustLoad()
	catalog := storage_catalog.New(seed.Movies, seed.Genres)
	storage := infra_memory_localstorage.New()
	shell := usecase_shell.New(
		catalog,
		usecase_session.New(storage, acceptAll{}),
		usecase_review.New(storage, catalog),
		usecase_navigation.New(catalog),
	)

	engine := gin.New()
	engine.Use(http_client_middleware.New(cookieName, "secret", time.Hour).Identify())
	New(shell).RegisterRoutes(engine.Group("/api/v1"))
	return &resources{engine: engine}
}

func (r *resources) do(method, url string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if r.cookie != nil {
		req.AddCookie(r.cookie)
	}

	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			r.cookie = c
		}
	}
	return w
}

func (r *resources) state(t provider.T, w *httptest.ResponseRecorder) model.AppState {
	require.Equal(t, http.StatusOK, w.Code)
	var state model.AppState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	return state
}

func (r *resources) view(t provider.T, url string) model.PageView {
	w := r.do(http.MethodGet, url, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view model.PageView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	return view
}

func (s *NavigationControllerSuite) TestFlow(t provider.T) {
	r := initResources()

	view := r.view(t, "/api/v1/view")
	assert.Equal(t, model.PageHome, view.Navigation.Page)
	require.NotNil(t, view.Home)
	assert.Len(t, view.Home.TopRated, 4)
	assert.True(t, view.ShowFooter)

	state := r.state(t, r.do(http.MethodPost, "/api/v1/navigate", NavigateRequestDTO{Page: "dashboard"}))
	assert.Equal(t, model.PageLogin, state.Navigation.Page, "dashboard needs a session")

	state = r.state(t, r.do(http.MethodPost, "/api/v1/movies/2/open", nil))
	assert.Equal(t, model.PageMovieDetail, state.Navigation.Page)
	assert.Equal(t, 2, state.Navigation.MovieID)
	assert.True(t, state.Navigation.ScrollToTop)

	view = r.view(t, "/api/v1/view")
	require.NotNil(t, view.Detail)
	assert.False(t, view.ShowFooter)
	assert.False(t, view.Detail.CanReview)

	state = r.state(t, r.do(http.MethodPost, "/api/v1/navigate/back", nil))
	assert.Equal(t, model.PageSuggest, state.Navigation.Page)

	view = r.view(t, "/api/v1/view?q=%D1%85%D0%B0%D0%B9%D1%80%D1%8B%D0%BD")
	require.NotNil(t, view.Suggest)
	assert.True(t, view.Suggest.Searching)

	assert.Equal(t, state, r.state(t, r.do(http.MethodGet, "/api/v1/state", nil)))
}

func (s *NavigationControllerSuite) TestFallbacks(t provider.T) {
	t.Run("Should land on home for unknown movies", func(t provider.T) {
		r := initResources()

		state := r.state(t, r.do(http.MethodPost, "/api/v1/movies/404/open", nil))

		assert.Equal(t, model.PageHome, state.Navigation.Page)
	})

	t.Run("Should land on home for unknown pages", func(t provider.T) {
		r := initResources()

		state := r.state(t, r.do(http.MethodPost, "/api/v1/navigate", NavigateRequestDTO{Page: "nowhere"}))

		assert.Equal(t, model.PageHome, state.Navigation.Page)
	})

	t.Run("Should reject a missing page", func(t provider.T) {
		r := initResources()

		assert.Equal(t, http.StatusBadRequest, r.do(http.MethodPost, "/api/v1/navigate", map[string]string{}).Code)
	})

	t.Run("Should keep browsers apart", func(t provider.T) {
		a := initResources()
		a.do(http.MethodPost, "/api/v1/navigate", NavigateRequestDTO{Page: "suggest"})

		b := &resources{engine: a.engine}
		state := b.state(t, b.do(http.MethodGet, "/api/v1/state", nil))

		assert.Equal(t, model.PageHome, state.Navigation.Page)
	})
}

func TestNavigationControllerSuite(t *testing.T) {
	suite.RunSuite(t, new(NavigationControllerSuite))
}
