package model

// AppState is everything the front end needs to pick and paint a page.
type AppState struct {
	Session    Session    `json:"session"`
	Navigation Navigation `json:"navigation"`
}

type HomeView struct {
	TopRated []Movie `json:"top_rated"`
}

type SuggestView struct {
	Genres        []string `json:"genres"`
	SelectedGenre string   `json:"selected_genre"`
	Query         string   `json:"query,omitempty"`
	Searching     bool     `json:"searching"`
	Movies        []Movie  `json:"movies"`
	TopRated      []Movie  `json:"top_rated"`
}

type MovieDetailView struct {
	Movie     Movie  `json:"movie"`
	WatchURL  string `json:"watch_url,omitempty"`
	CanReview bool   `json:"can_review"`
}

type DashboardView struct {
	Reviews []UserReview `json:"reviews"`
	Stats   ReviewStats  `json:"stats"`
	Catalog []Movie      `json:"catalog"`
}

// PageView is the rendered current page. Exactly one of the page sections is
// set; login and register pages carry no data.
type PageView struct {
	AppState
	ShowFooter bool             `json:"show_footer"`
	Home       *HomeView        `json:"home,omitempty"`
	Suggest    *SuggestView     `json:"suggest,omitempty"`
	Detail     *MovieDetailView `json:"movie_detail,omitempty"`
	Dashboard  *DashboardView   `json:"dashboard,omitempty"`
}
