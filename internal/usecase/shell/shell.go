package usecase_shell

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

const (
	RegisterSuccessText = "Бүртгэл амжилттай! Та нэвтэрч болно."

	homeTopRated    = 4
	suggestTopRated = 3

	lockStripes = 64
)

var (
	ErrLoginRequired = errors.New("login required")
)

type Catalog interface {
	Len() int
	All() []model.Movie
	Genres() []string
	GetByID(id int) (model.Movie, bool)
	GetByGenre(tag string) []model.Movie
	GetTopRated(n int) []model.Movie
	Search(query string) []model.Movie
}

type SessionUsecase interface {
	Restore(ctx context.Context, clientID model.ClientID) (model.Session, error)
	Authenticate(ctx context.Context, clientID model.ClientID, email, password string) (model.Session, error)
	Register(ctx context.Context, email, password string) error
	Logout(ctx context.Context, clientID model.ClientID) (model.Session, error)
}

type ReviewUsecase interface {
	List(ctx context.Context, clientID model.ClientID) ([]model.UserReview, error)
	Add(ctx context.Context, clientID model.ClientID, movieID, rating int, comment string) (model.UserReview, bool, error)
	Remove(ctx context.Context, clientID model.ClientID, reviewID int64) error
	Stats(ctx context.Context, clientID model.ClientID) (model.ReviewStats, error)
}

type NavigationUsecase interface {
	State(clientID model.ClientID) model.Navigation
	Navigate(clientID model.ClientID, page string, session model.Session) model.Navigation
	OpenMovie(clientID model.ClientID, movieID int) model.Navigation
	Back(clientID model.ClientID) model.Navigation
}

// ViewQuery carries the suggest page inputs.
type ViewQuery struct {
	Genre string
	Query string
}

// Shell owns the state of every client. Calls for the same client are
// serialized. Clients are spread over a fixed set of lock stripes, so two
// clients only contend when they hash to the same stripe.
type Shell struct {
	catalog    Catalog
	session    SessionUsecase
	reviews    ReviewUsecase
	navigation NavigationUsecase
	logger     *slog.Logger

	locks [lockStripes]sync.Mutex
}

type Option func(*Shell)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) {
		s.logger = logger
	}
}

func New(
	catalog Catalog,
	session SessionUsecase,
	reviews ReviewUsecase,
	navigation NavigationUsecase,
	opts ...Option,
) *Shell {
	s := &Shell{
		catalog:    catalog,
		session:    session,
		reviews:    reviews,
		navigation: navigation,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func stripe(clientID model.ClientID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(clientID))
	return int(h.Sum32() % lockStripes)
}

func (s *Shell) lock(clientID model.ClientID) func() {
	m := &s.locks[stripe(clientID)]
	m.Lock()
	return m.Unlock
}

func (s *Shell) State(ctx context.Context, clientID model.ClientID) (model.AppState, error) {
	defer s.lock(clientID)()
	return s.state(ctx, clientID)
}

func (s *Shell) Navigate(ctx context.Context, clientID model.ClientID, page string) (model.AppState, error) {
	defer s.lock(clientID)()

	session, err := s.session.Restore(ctx, clientID)
	if err != nil {
		return model.AppState{}, err
	}
	nav := s.navigation.Navigate(clientID, page, session)
	return model.AppState{Session: session, Navigation: nav}, nil
}

func (s *Shell) OpenMovie(ctx context.Context, clientID model.ClientID, movieID int) (model.AppState, error) {
	defer s.lock(clientID)()

	session, err := s.session.Restore(ctx, clientID)
	if err != nil {
		return model.AppState{}, err
	}
	nav := s.navigation.OpenMovie(clientID, movieID)
	return model.AppState{Session: session, Navigation: nav}, nil
}

func (s *Shell) Back(ctx context.Context, clientID model.ClientID) (model.AppState, error) {
	defer s.lock(clientID)()

	session, err := s.session.Restore(ctx, clientID)
	if err != nil {
		return model.AppState{}, err
	}
	nav := s.navigation.Back(clientID)
	return model.AppState{Session: session, Navigation: nav}, nil
}

// Login authenticates remotely and lands on home.
func (s *Shell) Login(ctx context.Context, clientID model.ClientID, email, password string) (model.AppState, error) {
	defer s.lock(clientID)()

	session, err := s.session.Authenticate(ctx, clientID, email, password)
	if err != nil {
		return model.AppState{}, err
	}

	s.logger.Info("client logged in", slog.String("client", clientID))
	nav := s.navigation.Navigate(clientID, string(model.PageHome), session)
	return model.AppState{Session: session, Navigation: nav}, nil
}

// Register creates the remote account and sends the client to the login page.
func (s *Shell) Register(ctx context.Context, clientID model.ClientID, email, password string) (model.AppState, string, error) {
	defer s.lock(clientID)()

	if err := s.session.Register(ctx, email, password); err != nil {
		return model.AppState{}, "", err
	}

	session, err := s.session.Restore(ctx, clientID)
	if err != nil {
		return model.AppState{}, "", err
	}
	nav := s.navigation.Navigate(clientID, string(model.PageLogin), session)
	return model.AppState{Session: session, Navigation: nav}, RegisterSuccessText, nil
}

func (s *Shell) Logout(ctx context.Context, clientID model.ClientID) (model.AppState, error) {
	defer s.lock(clientID)()

	session, err := s.session.Logout(ctx, clientID)
	if err != nil {
		return model.AppState{}, err
	}
	nav := s.navigation.Navigate(clientID, string(model.PageHome), session)
	return model.AppState{Session: session, Navigation: nav}, nil
}

func (s *Shell) Reviews(ctx context.Context, clientID model.ClientID) ([]model.UserReview, model.ReviewStats, error) {
	defer s.lock(clientID)()

	reviews, err := s.reviews.List(ctx, clientID)
	if err != nil {
		return nil, model.ReviewStats{}, err
	}
	stats, err := s.reviews.Stats(ctx, clientID)
	if err != nil {
		return nil, model.ReviewStats{}, err
	}
	return reviews, stats, nil
}

// AddReview expects an already validated rating and comment.
func (s *Shell) AddReview(ctx context.Context, clientID model.ClientID, movieID, rating int, comment string) (model.UserReview, bool, error) {
	defer s.lock(clientID)()

	if err := s.requireLogin(ctx, clientID); err != nil {
		return model.UserReview{}, false, err
	}
	return s.reviews.Add(ctx, clientID, movieID, rating, comment)
}

func (s *Shell) RemoveReview(ctx context.Context, clientID model.ClientID, reviewID int64) error {
	defer s.lock(clientID)()

	if err := s.requireLogin(ctx, clientID); err != nil {
		return err
	}
	return s.reviews.Remove(ctx, clientID, reviewID)
}

// View renders the client's current page.
func (s *Shell) View(ctx context.Context, clientID model.ClientID, q ViewQuery) (model.PageView, error) {
	defer s.lock(clientID)()

	state, err := s.state(ctx, clientID)
	if err != nil {
		return model.PageView{}, err
	}

	view := model.PageView{
		AppState:   state,
		ShowFooter: state.Navigation.Page != model.PageMovieDetail,
	}

	switch state.Navigation.Page {
	case model.PageSuggest:
		view.Suggest = s.suggestView(q)
	case model.PageLogin, model.PageRegister:
	case model.PageMovieDetail:
		movie, ok := s.catalog.GetByID(state.Navigation.MovieID)
		if !ok {
			view.Home = s.homeView()
			break
		}
		view.Detail = &model.MovieDetailView{
			Movie:     movie,
			WatchURL:  movie.WatchURL(),
			CanReview: state.Session.LoggedIn,
		}
	case model.PageDashboard:
		if !state.Session.LoggedIn {
			break
		}
		reviews, err := s.reviews.List(ctx, clientID)
		if err != nil {
			return model.PageView{}, err
		}
		stats, err := s.reviews.Stats(ctx, clientID)
		if err != nil {
			return model.PageView{}, err
		}
		view.Dashboard = &model.DashboardView{
			Reviews: reviews,
			Stats:   stats,
			Catalog: s.catalog.All(),
		}
	default:
		view.Home = s.homeView()
	}

	return view, nil
}

func (s *Shell) state(ctx context.Context, clientID model.ClientID) (model.AppState, error) {
	session, err := s.session.Restore(ctx, clientID)
	if err != nil {
		return model.AppState{}, err
	}
	return model.AppState{
		Session:    session,
		Navigation: s.navigation.State(clientID),
	}, nil
}

func (s *Shell) requireLogin(ctx context.Context, clientID model.ClientID) error {
	session, err := s.session.Restore(ctx, clientID)
	if err != nil {
		return err
	}
	if !session.LoggedIn {
		return ErrLoginRequired
	}
	return nil
}

func (s *Shell) homeView() *model.HomeView {
	return &model.HomeView{TopRated: s.catalog.GetTopRated(homeTopRated)}
}

// suggestView lets a non-blank search override the genre filter.
func (s *Shell) suggestView(q ViewQuery) *model.SuggestView {
	genre := q.Genre
	if genre == "" {
		genre = model.AllGenres
	}

	view := &model.SuggestView{
		Genres:        s.catalog.Genres(),
		SelectedGenre: genre,
		Query:         q.Query,
		TopRated:      s.catalog.GetTopRated(suggestTopRated),
	}

	if strings.TrimSpace(q.Query) != "" {
		view.Searching = true
		view.Movies = s.catalog.Search(q.Query)
	} else {
		view.Movies = s.catalog.GetByGenre(genre)
	}
	return view
}
