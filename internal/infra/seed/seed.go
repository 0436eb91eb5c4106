package infra_seed

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/humanbelnik/kinoshelf/internal/model"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

var (
	ErrEmptySeed   = errors.New("seed has no movies")
	ErrInvalidID   = errors.New("movie id must be positive")
	ErrDuplicateID = errors.New("duplicate movie id")
)

type Seed struct {
	Genres []string      `yaml:"genres"`
	Movies []model.Movie `yaml:"movies"`
}

func MustLoad() Seed {
	s, err := Parse(catalogYAML)
	if err != nil {
		panic(fmt.Sprintf("broken catalog seed: %v", err))
	}
	return s
}

func Parse(data []byte) (Seed, error) {
	var s Seed
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Seed{}, fmt.Errorf("failed to decode seed: %w", err)
	}
	if len(s.Movies) == 0 {
		return Seed{}, ErrEmptySeed
	}

	seen := make(map[int]struct{}, len(s.Movies))
	for _, m := range s.Movies {
		if m.ID <= 0 {
			return Seed{}, fmt.Errorf("%w: %q has id %d", ErrInvalidID, m.Title, m.ID)
		}
		if _, ok := seen[m.ID]; ok {
			return Seed{}, fmt.Errorf("%w: %d", ErrDuplicateID, m.ID)
		}
		seen[m.ID] = struct{}{}
	}

	if len(s.Genres) == 0 || s.Genres[0] != model.AllGenres {
		s.Genres = append([]string{model.AllGenres}, s.Genres...)
	}

	return s, nil
}
