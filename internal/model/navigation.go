package model

type Page string

const (
	PageHome        Page = "home"
	PageSuggest     Page = "suggest"
	PageLogin       Page = "login"
	PageRegister    Page = "register"
	PageDashboard   Page = "dashboard"
	PageMovieDetail Page = "movie-detail"
)

var pages = map[Page]struct{}{
	PageHome:        {},
	PageSuggest:     {},
	PageLogin:       {},
	PageRegister:    {},
	PageDashboard:   {},
	PageMovieDetail: {},
}

// ParsePage reports whether s names one of the known pages.
func ParsePage(s string) (Page, bool) {
	p := Page(s)
	_, ok := pages[p]
	return p, ok
}

// Navigation is the per-client page selector. MovieID is set only on
// PageMovieDetail; ScrollToTop asks the front end to reset the viewport.
type Navigation struct {
	Page        Page   `json:"page"`
	MovieID     int    `json:"movie_id,omitempty"`
	ScrollToTop bool   `json:"scroll_to_top,omitempty"`
	Epoch       uint64 `json:"epoch"`
}

func InitialNavigation() Navigation {
	return Navigation{Page: PageHome}
}

func (n Navigation) HasMovie() bool {
	return n.Page == PageMovieDetail && n.MovieID > 0
}
