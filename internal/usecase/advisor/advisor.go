package usecase_advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

const ChatFailureText = "⚠️ Сервертэй холбогдож чадсангүй."

var (
	ErrEmptyQuery         = errors.New("Та төрөлөө оруулна уу.")
	ErrAdvisorUnavailable = errors.New("⚠️ Серверээс хариу авч чадсангүй.")
	ErrAlreadySending     = errors.New("a message is already being sent")
	ErrStaleResponse      = errors.New("answer arrived after the page changed")
)

type Endpoint int

const (
	ChatEndpoint Endpoint = iota
	StructuredEndpoint
)

var structuredKeywords = []string{"recommend", "жанр", "төрөл"}

type Advisor interface {
	Chat(ctx context.Context, message string) (model.Answer, error)
	Recommend(ctx context.Context, message string) (model.Answer, error)
}

type EpochSource interface {
	Epoch(clientID model.ClientID) uint64
}

type Usecase struct {
	advisor Advisor
	epochs  EpochSource
	logger  *slog.Logger

	mu      sync.Mutex
	sending map[model.ClientID]struct{}
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(advisor Advisor, epochs EpochSource, opts ...Option) *Usecase {
	u := &Usecase{
		advisor: advisor,
		epochs:  epochs,
		logger:  slog.Default(),
		sending: make(map[model.ClientID]struct{}),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Route picks the structured endpoint for messages that ask for
// recommendations or mention a genre.
func Route(message string) Endpoint {
	lowered := strings.ToLower(message)
	for _, kw := range structuredKeywords {
		if strings.Contains(lowered, kw) {
			return StructuredEndpoint
		}
	}
	return ChatEndpoint
}

// Chat never fails: transport problems become a bot line.
func (u *Usecase) Chat(ctx context.Context, message string) string {
	var (
		answer model.Answer
		err    error
	)
	switch Route(message) {
	case StructuredEndpoint:
		answer, err = u.advisor.Recommend(ctx, message)
	default:
		answer, err = u.advisor.Chat(ctx, message)
	}

	if err != nil {
		u.logger.Warn("chat request failed",
			slog.String("error", err.Error()),
		)
		return ChatFailureText
	}
	return answer.Text()
}

func (u *Usecase) RecommendByGenre(ctx context.Context, text string) (model.Answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Answer{}, ErrEmptyQuery
	}

	answer, err := u.advisor.Recommend(ctx, text)
	if err != nil {
		u.logger.Warn("recommendation request failed",
			slog.String("error", err.Error()),
		)
		return model.Answer{}, fmt.Errorf("%w: %w", ErrAdvisorUnavailable, err)
	}
	return answer, nil
}

// Ask is the chat panel round trip for one client.
func (u *Usecase) Ask(ctx context.Context, clientID model.ClientID, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyQuery
	}

	var reply string
	err := u.guarded(clientID, func() {
		reply = u.Chat(ctx, message)
	})
	return reply, err
}

// Suggest is the suggest page request for one client.
func (u *Usecase) Suggest(ctx context.Context, clientID model.ClientID, text string) (model.Answer, error) {
	if strings.TrimSpace(text) == "" {
		return model.Answer{}, ErrEmptyQuery
	}

	var (
		answer  model.Answer
		callErr error
	)
	err := u.guarded(clientID, func() {
		answer, callErr = u.RecommendByGenre(ctx, text)
	})
	if err != nil {
		return model.Answer{}, err
	}
	return answer, callErr
}

// guarded runs call with the client's sending flag held and reports
// ErrStaleResponse when the client navigated in the meantime.
func (u *Usecase) guarded(clientID model.ClientID, call func()) error {
	if !u.acquire(clientID) {
		return ErrAlreadySending
	}
	defer u.release(clientID)

	epoch := u.epochs.Epoch(clientID)
	call()

	if u.epochs.Epoch(clientID) != epoch {
		u.logger.Info("dropping stale advisor answer",
			slog.String("client", clientID),
		)
		return ErrStaleResponse
	}
	return nil
}

func (u *Usecase) IsSending(clientID model.ClientID) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	_, ok := u.sending[clientID]
	return ok
}

func (u *Usecase) acquire(clientID model.ClientID) bool {
	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.sending[clientID]; ok {
		return false
	}
	u.sending[clientID] = struct{}{}
	return true
}

func (u *Usecase) release(clientID model.ClientID) {
	u.mu.Lock()
	defer u.mu.Unlock()

	delete(u.sending, clientID)
}
