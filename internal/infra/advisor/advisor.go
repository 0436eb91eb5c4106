package advisor_client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

const (
	chatPath       = "/chat-ai"
	structuredPath = "/ask-ai"
)

var (
	ErrUnreachable       = errors.New("advisor unreachable")
	ErrBadStatus         = errors.New("advisor returned non-2xx status")
	ErrMalformedResponse = errors.New("advisor returned malformed json")
)

type HTTPAdvisorClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(baseURL string, timeout time.Duration) *HTTPAdvisorClient {
	return &HTTPAdvisorClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default(),
	}
}

type MessageRequest struct {
	Message string `json:"message"`
}

type payload struct {
	Answer   json.RawMessage `json:"answer"`
	Response json.RawMessage `json:"response"`
}

// Chat talks to the free-text endpoint. Either "answer" or "response" is
// accepted; a list in "answer" is still decoded as cards.
func (c *HTTPAdvisorClient) Chat(ctx context.Context, message string) (model.Answer, error) {
	p, err := c.post(ctx, chatPath, message)
	if err != nil {
		return model.Answer{}, err
	}

	if recs, ok := decodeList(p.Answer); ok {
		return model.ListAnswer(recs), nil
	}
	if s, ok := decodeString(p.Answer); ok && s != "" {
		return model.TextAnswer(s), nil
	}
	if s, ok := decodeString(p.Response); ok && s != "" {
		return model.TextAnswer(s), nil
	}
	return model.TextAnswer(model.NoAnswerText), nil
}

// Recommend talks to the structured endpoint: "answer" holds either a text
// or a list of {title, rating, imdb_url}.
func (c *HTTPAdvisorClient) Recommend(ctx context.Context, message string) (model.Answer, error) {
	p, err := c.post(ctx, structuredPath, message)
	if err != nil {
		return model.Answer{}, err
	}

	if recs, ok := decodeList(p.Answer); ok {
		return model.ListAnswer(recs), nil
	}
	if s, ok := decodeString(p.Answer); ok && s != "" {
		return model.TextAnswer(s), nil
	}
	return model.TextAnswer(model.NoAnswerText), nil
}

func (c *HTTPAdvisorClient) post(ctx context.Context, path, message string) (payload, error) {
	jsonBody, err := json.Marshal(MessageRequest{Message: message})
	if err != nil {
		return payload{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(jsonBody))
	if err != nil {
		return payload{}, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("advisor request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return payload{}, fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return payload{}, fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)
	}

	var p payload
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return payload{}, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}

	return p, nil
}

func decodeString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeList(raw json.RawMessage) ([]model.Recommendation, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}

	recs := make([]model.Recommendation, 0, len(items))
	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			continue
		}

		rec := model.Recommendation{}
		rec.Title, _ = decodeString(fields["title"])
		rec.IMDbURL, _ = decodeString(fields["imdb_url"])
		rec.Rating, rec.HasRating = decodeRating(fields["rating"])
		recs = append(recs, rec)
	}
	return recs, true
}

// decodeRating accepts a JSON number or a numeric string.
func decodeRating(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	if s, ok := decodeString(raw); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
