package storage_catalog

import (
	"cmp"
	"slices"
	"strings"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

// Catalog is the fixed, read-only movie table. Every query returns copies in
// catalog order unless stated otherwise.
type Catalog struct {
	movies []model.Movie
	genres []string
}

func New(movies []model.Movie, genres []string) *Catalog {
	c := &Catalog{
		movies: make([]model.Movie, 0, len(movies)),
		genres: slices.Clone(genres),
	}
	for _, m := range movies {
		c.movies = append(c.movies, m.Clone())
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.movies)
}

func (c *Catalog) All() []model.Movie {
	return c.collect(func(model.Movie) bool { return true })
}

// Genres is the ordered filter list, reserved "all" tag first.
func (c *Catalog) Genres() []string {
	return slices.Clone(c.genres)
}

func (c *Catalog) GetByID(id int) (model.Movie, bool) {
	for _, m := range c.movies {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return model.Movie{}, false
}

func (c *Catalog) GetByGenre(tag string) []model.Movie {
	if tag == model.AllGenres {
		return c.All()
	}
	return c.collect(func(m model.Movie) bool {
		return m.HasGenre(tag)
	})
}

// GetTopRated sorts by rating descending; equal ratings keep catalog order.
func (c *Catalog) GetTopRated(n int) []model.Movie {
	if n <= 0 {
		return []model.Movie{}
	}

	sorted := c.All()
	slices.SortStableFunc(sorted, func(a, b model.Movie) int {
		return cmp.Compare(b.Rating, a.Rating)
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Search matches the query as typed. Surrounding whitespace only decides
// whether the query is blank.
func (c *Catalog) Search(query string) []model.Movie {
	if strings.TrimSpace(query) == "" {
		return c.All()
	}

	q := strings.ToLower(query)

	return c.collect(func(m model.Movie) bool {
		return contains(m.Title, q) ||
			contains(m.Description, q) ||
			containsAny(m.Genres, q) ||
			contains(m.Director, q) ||
			containsAny(m.Cast, q)
	})
}

func (c *Catalog) collect(keep func(model.Movie) bool) []model.Movie {
	out := make([]model.Movie, 0, len(c.movies))
	for _, m := range c.movies {
		if keep(m) {
			out = append(out, m.Clone())
		}
	}
	return out
}

func contains(field, lowered string) bool {
	return strings.Contains(strings.ToLower(field), lowered)
}

func containsAny(fields []string, lowered string) bool {
	return slices.ContainsFunc(fields, func(f string) bool {
		return contains(f, lowered)
	})
}
