package usecase_advisor

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/humanbelnik/kinoshelf/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type AdvisorMock struct {
	mock.Mock
}

func (m *AdvisorMock) Chat(ctx context.Context, message string) (model.Answer, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(model.Answer), args.Error(1)
}

func (m *AdvisorMock) Recommend(ctx context.Context, message string) (model.Answer, error) {
	args := m.Called(ctx, message)
	return args.Get(0).(model.Answer), args.Error(1)
}

type epochCounter struct {
	n atomic.Uint64
}

func (e *epochCounter) Epoch(model.ClientID) uint64 {
	return e.n.Load()
}

type UsecaseAdvisorSuite struct {
	suite.Suite
}

const client = "client-1"

type resources struct {
	usecase *Usecase
	advisor *AdvisorMock
	epochs  *epochCounter
	ctx     context.Context
}

func initResources() *resources {
	advisor := &AdvisorMock{}
	epochs := &epochCounter{}
	return &resources{
		usecase: New(advisor, epochs),
		advisor: advisor,
		epochs:  epochs,
		ctx:     context.Background(),
	}
}

func (s *UsecaseAdvisorSuite) TestRoute(t provider.T) {
	testCases := []struct {
		message  string
		expected Endpoint
	}{
		{message: "Please RECOMMEND something", expected: StructuredEndpoint},
		{message: "Ямар жанр сайн бэ", expected: StructuredEndpoint},
		{message: "Драм төрөл", expected: StructuredEndpoint},
		{message: "Сайн уу", expected: ChatEndpoint},
		{message: "", expected: ChatEndpoint},
	}

	for _, tc := range testCases {
		t.Run(tc.message, func(t provider.T) {
			assert.Equal(t, tc.expected, Route(tc.message))
		})
	}
}

func (s *UsecaseAdvisorSuite) TestChat(t provider.T) {
	t.Run("Should use the structured endpoint for genre questions", func(t provider.T) {
		r := initResources()
		r.advisor.On("Recommend", r.ctx, "recommend drama").Return(model.ListAnswer([]model.Recommendation{
			{Title: "X", Rating: 8.2, HasRating: true, IMDbURL: "u"},
		}), nil).Once()

		reply := r.usecase.Chat(r.ctx, "recommend drama")

		assert.Equal(t, "🎥 X (8.2⭐)\nu", reply)
		r.advisor.AssertExpectations(t)
	})

	t.Run("Should use the chat endpoint otherwise", func(t provider.T) {
		r := initResources()
		r.advisor.On("Chat", r.ctx, "hello").Return(model.TextAnswer("hi"), nil).Once()

		assert.Equal(t, "hi", r.usecase.Chat(r.ctx, "hello"))
		r.advisor.AssertExpectations(t)
	})

	t.Run("Should turn transport failures into a bot line", func(t provider.T) {
		r := initResources()
		r.advisor.On("Chat", r.ctx, "hello").Return(model.Answer{}, errors.New("refused")).Once()

		assert.Equal(t, ChatFailureText, r.usecase.Chat(r.ctx, "hello"))
	})
}

func (s *UsecaseAdvisorSuite) TestRecommendByGenre(t provider.T) {
	t.Run("Should not call out for blank text", func(t provider.T) {
		r := initResources()

		_, err := r.usecase.RecommendByGenre(r.ctx, "   ")

		assert.ErrorIs(t, err, ErrEmptyQuery)
		r.advisor.AssertNotCalled(t, "Recommend", mock.Anything, mock.Anything)
	})

	t.Run("Should pass the answer through", func(t provider.T) {
		r := initResources()
		r.advisor.On("Recommend", r.ctx, "драм").Return(model.TextAnswer("none"), nil).Once()

		answer, err := r.usecase.RecommendByGenre(r.ctx, " драм ")

		require.NoError(t, err)
		assert.Equal(t, model.TextAnswer("none"), answer)
	})

	t.Run("Should report an unavailable advisor", func(t provider.T) {
		r := initResources()
		r.advisor.On("Recommend", r.ctx, "драм").Return(model.Answer{}, errors.New("timeout")).Once()

		_, err := r.usecase.RecommendByGenre(r.ctx, "драм")

		assert.ErrorIs(t, err, ErrAdvisorUnavailable)
	})
}

func (s *UsecaseAdvisorSuite) TestGuard(t provider.T) {
	t.Run("Should reject a second send while one is in flight", func(t provider.T) {
		r := initResources()
		entered := make(chan struct{})
		unblock := make(chan struct{})
		r.advisor.On("Chat", r.ctx, "first").Run(func(mock.Arguments) {
			close(entered)
			<-unblock
		}).Return(model.TextAnswer("ok"), nil).Once()

		done := make(chan error, 1)
		go func() {
			_, err := r.usecase.Ask(r.ctx, client, "first")
			done <- err
		}()
		<-entered

		assert.True(t, r.usecase.IsSending(client))
		_, err := r.usecase.Ask(r.ctx, client, "second")
		assert.ErrorIs(t, err, ErrAlreadySending)

		close(unblock)
		assert.NoError(t, <-done)
		assert.False(t, r.usecase.IsSending(client))
	})

	t.Run("Should drop answers that arrive after navigation", func(t provider.T) {
		r := initResources()
		r.advisor.On("Recommend", r.ctx, "драм").Run(func(mock.Arguments) {
			r.epochs.n.Add(1)
		}).Return(model.TextAnswer("late"), nil).Once()

		_, err := r.usecase.Suggest(r.ctx, client, "драм")

		assert.ErrorIs(t, err, ErrStaleResponse)
		assert.False(t, r.usecase.IsSending(client))
	})

	t.Run("Should keep the failure of a fresh answer", func(t provider.T) {
		r := initResources()
		r.advisor.On("Recommend", r.ctx, "драм").Return(model.Answer{}, errors.New("down")).Once()

		_, err := r.usecase.Suggest(r.ctx, client, "драм")

		assert.ErrorIs(t, err, ErrAdvisorUnavailable)
	})

	t.Run("Should reject an empty chat message", func(t provider.T) {
		r := initResources()

		_, err := r.usecase.Ask(r.ctx, client, " ")

		assert.ErrorIs(t, err, ErrEmptyQuery)
	})
}

func TestUsecaseAdvisorSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseAdvisorSuite))
}
