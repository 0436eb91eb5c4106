package model

const (
	MinReviewRating = 1
	MaxReviewRating = 10
)

// UserReview is authored by the current client. Title and image are captured
// at creation time and never refreshed from the catalog.
type UserReview struct {
	ID         int64  `json:"id"`
	MovieID    int    `json:"movieId"`
	MovieTitle string `json:"movieTitle"`
	MovieImage string `json:"movieImage"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
	Date       string `json:"date"`
}

type ReviewStats struct {
	Count       int     `json:"count"`
	Average     float64 `json:"average"`
	CatalogSize int     `json:"catalog_size"`
}
