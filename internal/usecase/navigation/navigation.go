package usecase_navigation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

type MovieResolver interface {
	GetByID(id int) (model.Movie, bool)
}

type entry struct {
	nav  model.Navigation
	seen time.Time
}

// Usecase keeps the page selector of every client in memory. A fresh
// process starts everyone on the home page, and so does a client that
// stayed idle past the sweep TTL.
type Usecase struct {
	mu     sync.Mutex
	states map[model.ClientID]entry
	movies MovieResolver
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(movies MovieResolver, opts ...Option) *Usecase {
	u := &Usecase{
		states: make(map[model.ClientID]entry),
		movies: movies,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *Usecase) State(clientID model.ClientID) model.Navigation {
	u.mu.Lock()
	defer u.mu.Unlock()

	e, ok := u.states[clientID]
	if !ok {
		return model.InitialNavigation()
	}
	e.seen = u.now()
	u.states[clientID] = e
	return e.nav
}

// Epoch changes on every transition of the client.
func (u *Usecase) Epoch(clientID model.ClientID) uint64 {
	return u.State(clientID).Epoch
}

// Navigate moves to the named page. Unknown names land on home and the
// dashboard is only reachable with a session.
func (u *Usecase) Navigate(clientID model.ClientID, page string, session model.Session) model.Navigation {
	target, ok := model.ParsePage(page)
	if !ok || target == model.PageMovieDetail {
		target = model.PageHome
	}
	if target == model.PageDashboard && !session.LoggedIn {
		target = model.PageLogin
	}

	return u.transition(clientID, model.Navigation{Page: target})
}

func (u *Usecase) OpenMovie(clientID model.ClientID, movieID int) model.Navigation {
	if _, ok := u.movies.GetByID(movieID); !ok {
		return u.transition(clientID, model.Navigation{Page: model.PageHome})
	}

	return u.transition(clientID, model.Navigation{
		Page:        model.PageMovieDetail,
		MovieID:     movieID,
		ScrollToTop: true,
	})
}

func (u *Usecase) Back(clientID model.ClientID) model.Navigation {
	return u.transition(clientID, model.Navigation{
		Page:        model.PageSuggest,
		ScrollToTop: true,
	})
}

func (u *Usecase) transition(clientID model.ClientID, next model.Navigation) model.Navigation {
	u.mu.Lock()
	defer u.mu.Unlock()

	next.Epoch = u.states[clientID].nav.Epoch + 1
	u.states[clientID] = entry{nav: next, seen: u.now()}
	return next
}

// Sweep forgets clients not seen for longer than ttl and reports how many
// were dropped.
func (u *Usecase) Sweep(ttl time.Duration) int {
	u.mu.Lock()
	defer u.mu.Unlock()

	deadline := u.now().Add(-ttl)
	dropped := 0
	for id, e := range u.states {
		if e.seen.Before(deadline) {
			delete(u.states, id)
			dropped++
		}
	}
	return dropped
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables sweeping.
func (u *Usecase) Run(ctx context.Context, interval, ttl time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := u.Sweep(ttl); n > 0 {
				u.logger.Debug("navigation states swept", slog.Int("dropped", n))
			}
		case <-ctx.Done():
			return
		}
	}
}
