package usecase_review

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

var (
	ErrStorage = errors.New("local storage failure")
)

const dateLayout = "2006-01-02"

type LocalStorage interface {
	Get(ctx context.Context, clientID model.ClientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID model.ClientID, values map[string]string) error
}

type MovieResolver interface {
	GetByID(id int) (model.Movie, bool)
	Len() int
}

type Usecase struct {
	storage LocalStorage
	movies  MovieResolver
	now     func() time.Time
	logger  *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(storage LocalStorage, movies MovieResolver, opts ...Option) *Usecase {
	u := &Usecase{
		storage: storage,
		movies:  movies,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// List returns the client's reviews, newest first. A snapshot that does not
// decode is treated as empty.
func (u *Usecase) List(ctx context.Context, clientID model.ClientID) ([]model.UserReview, error) {
	raw, ok, err := u.storage.Get(ctx, clientID, model.KeyUserReviews)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !ok || raw == "" {
		return []model.UserReview{}, nil
	}

	var reviews []model.UserReview
	if err := json.Unmarshal([]byte(raw), &reviews); err != nil {
		u.logger.Warn("corrupt review snapshot, ignoring",
			slog.String("client", clientID),
			slog.String("error", err.Error()),
		)
		return []model.UserReview{}, nil
	}
	if reviews == nil {
		reviews = []model.UserReview{}
	}
	return reviews, nil
}

// Add stores a review for a catalog movie. The bool is false when the movie
// is unknown, in which case nothing is written. Rating and comment are taken
// as given.
func (u *Usecase) Add(ctx context.Context, clientID model.ClientID, movieID, rating int, comment string) (model.UserReview, bool, error) {
	movie, ok := u.movies.GetByID(movieID)
	if !ok {
		return model.UserReview{}, false, nil
	}

	reviews, err := u.List(ctx, clientID)
	if err != nil {
		return model.UserReview{}, false, err
	}

	now := u.now()
	review := model.UserReview{
		ID:         nextID(now, reviews),
		MovieID:    movie.ID,
		MovieTitle: movie.Title,
		MovieImage: movie.Image,
		Rating:     rating,
		Comment:    comment,
		Date:       now.Format(dateLayout),
	}

	reviews = append([]model.UserReview{review}, reviews...)
	if err := u.persist(ctx, clientID, reviews); err != nil {
		return model.UserReview{}, false, err
	}

	return review, true, nil
}

// Remove deletes the review with the given id. Unknown ids are a no-op.
func (u *Usecase) Remove(ctx context.Context, clientID model.ClientID, reviewID int64) error {
	reviews, err := u.List(ctx, clientID)
	if err != nil {
		return err
	}

	kept := make([]model.UserReview, 0, len(reviews))
	for _, r := range reviews {
		if r.ID != reviewID {
			kept = append(kept, r)
		}
	}

	return u.persist(ctx, clientID, kept)
}

func (u *Usecase) AverageRating(ctx context.Context, clientID model.ClientID) (float64, error) {
	reviews, err := u.List(ctx, clientID)
	if err != nil {
		return 0, err
	}
	return Average(reviews), nil
}

func (u *Usecase) Stats(ctx context.Context, clientID model.ClientID) (model.ReviewStats, error) {
	reviews, err := u.List(ctx, clientID)
	if err != nil {
		return model.ReviewStats{}, err
	}
	return StatsOf(reviews, u.movies.Len()), nil
}

// Average is the mean rating rounded to one decimal, 0 for no reviews.
func Average(reviews []model.UserReview) float64 {
	if len(reviews) == 0 {
		return 0
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10
}

func StatsOf(reviews []model.UserReview, catalogSize int) model.ReviewStats {
	return model.ReviewStats{
		Count:       len(reviews),
		Average:     Average(reviews),
		CatalogSize: catalogSize,
	}
}

func (u *Usecase) persist(ctx context.Context, clientID model.ClientID, reviews []model.UserReview) error {
	data, err := json.Marshal(reviews)
	if err != nil {
		return fmt.Errorf("failed to encode reviews: %w", err)
	}

	if err := u.storage.Set(ctx, clientID, map[string]string{model.KeyUserReviews: string(data)}); err != nil {
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return nil
}

func nextID(now time.Time, existing []model.UserReview) int64 {
	id := now.UnixMilli()
	for _, r := range existing {
		if r.ID >= id {
			id = r.ID + 1
		}
	}
	return id
}
