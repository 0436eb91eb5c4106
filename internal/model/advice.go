package model

import (
	"strconv"
	"strings"
)

// NoAnswerText replaces any advisor payload that carries no usable answer.
const NoAnswerText = "AI хариу ирсэнгүй."

type AnswerKind int

const (
	PlainAnswer AnswerKind = iota
	RecommendationList
)

func (k AnswerKind) String() string {
	switch k {
	case RecommendationList:
		return "recommendations"
	default:
		return "text"
	}
}

func (k AnswerKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Recommendation struct {
	Title     string  `json:"title"`
	Rating    float64 `json:"rating"`
	HasRating bool    `json:"-"`
	IMDbURL   string  `json:"imdb_url"`
}

// RatingText is empty when the remote service sent no usable rating.
func (r Recommendation) RatingText() string {
	if !r.HasRating {
		return ""
	}
	return strconv.FormatFloat(r.Rating, 'f', -1, 64)
}

// Answer is what the advisor said: either free text or a list of cards.
// The kind is decided once when the remote payload is decoded.
type Answer struct {
	Kind            AnswerKind       `json:"kind"`
	Message         string           `json:"message,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
}

func TextAnswer(text string) Answer {
	return Answer{Kind: PlainAnswer, Message: text}
}

func ListAnswer(recs []Recommendation) Answer {
	return Answer{Kind: RecommendationList, Recommendations: recs}
}

// Text renders the answer as a single chat bubble.
func (a Answer) Text() string {
	if a.Kind == PlainAnswer {
		return a.Message
	}

	parts := make([]string, 0, len(a.Recommendations))
	for _, r := range a.Recommendations {
		parts = append(parts, "🎥 "+r.Title+" ("+r.RatingText()+"⭐)\n"+r.IMDbURL)
	}
	return strings.Join(parts, "\n\n")
}
