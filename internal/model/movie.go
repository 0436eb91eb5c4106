package model

import "fmt"

// AllGenres is the reserved genre tag that selects the whole catalog.
const AllGenres = "Бүгд"

const imdbTitleURL = "https://www.imdb.com/title/%s/"

type CatalogReview struct {
	ID       int    `json:"id" yaml:"id"`
	UserID   int    `json:"user_id" yaml:"user_id"`
	UserName string `json:"user_name" yaml:"user_name"`
	Avatar   string `json:"user_avatar,omitempty" yaml:"user_avatar"`
	Rating   int    `json:"rating" yaml:"rating"`
	Comment  string `json:"comment" yaml:"comment"`
	Date     string `json:"date" yaml:"date"`
	Helpful  int    `json:"helpful" yaml:"helpful"`
}

type Movie struct {
	ID          int             `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Image       string          `json:"image" yaml:"image"`
	Rating      float64         `json:"rating" yaml:"rating"`
	Genres      []string        `json:"genres" yaml:"genres"`
	Year        int             `json:"year" yaml:"year"`
	Duration    string          `json:"duration" yaml:"duration"`
	Description string          `json:"description" yaml:"description"`
	Director    string          `json:"director" yaml:"director"`
	Cast        []string        `json:"cast" yaml:"cast"`
	ExternalID  string          `json:"imdb_id,omitempty" yaml:"imdb_id"`
	Reviews     []CatalogReview `json:"reviews" yaml:"reviews"`
}

// WatchURL is the deep link for the "watch" button, empty without an external id.
func (m Movie) WatchURL() string {
	if m.ExternalID == "" {
		return ""
	}
	return fmt.Sprintf(imdbTitleURL, m.ExternalID)
}

func (m Movie) HasGenre(tag string) bool {
	for _, g := range m.Genres {
		if g == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can't reach into the catalog.
func (m Movie) Clone() Movie {
	c := m
	c.Genres = append([]string(nil), m.Genres...)
	c.Cast = append([]string(nil), m.Cast...)
	c.Reviews = append([]CatalogReview(nil), m.Reviews...)
	return c
}
