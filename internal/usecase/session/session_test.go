package usecase_session

import (
	"context"
	"errors"
	"net/http"
	"testing"

	infra_memory_localstorage "github.com/humanbelnik/kinoshelf/internal/infra/memory/localstorage"
	"github.com/humanbelnik/kinoshelf/internal/model"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UsecaseSessionSuite struct {
	suite.Suite
}

type resources struct {
	usecase *Usecase
	storage *infra_memory_localstorage.Driver
	auth    *AuthenticatorMock
	ctx     context.Context
}

func initResources() *resources {
	storage := infra_memory_localstorage.New()
	auth := &AuthenticatorMock{}
	return &resources{
		usecase: New(storage, auth),
		storage: storage,
		auth:    auth,
		ctx:     context.Background(),
	}
}

const client = "client-1"

func (s *UsecaseSessionSuite) TestRestore(t provider.T) {
	testCases := []struct {
		name     string
		stored   map[string]string
		expected model.Session
	}{
		{
			name:     "Should be logged out on empty storage",
			expected: model.LoggedOut(),
		},
		{
			name:     "Should restore a persisted login",
			stored:   map[string]string{model.KeyIsLoggedIn: "true", model.KeyUserEmail: "a@b.mn"},
			expected: model.LoggedIn("a@b.mn"),
		},
		{
			name:     "Should ignore a false flag",
			stored:   map[string]string{model.KeyIsLoggedIn: "false", model.KeyUserEmail: "a@b.mn"},
			expected: model.LoggedOut(),
		},
		{
			name:     "Should fail closed on a flag without identity",
			stored:   map[string]string{model.KeyIsLoggedIn: "true"},
			expected: model.LoggedOut(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			r := initResources()
			if tc.stored != nil {
				require.NoError(t, r.storage.Set(r.ctx, client, tc.stored))
			}

			session, err := r.usecase.Restore(r.ctx, client)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, session)
		})
	}

	t.Run("Should clear the dangling flag", func(t provider.T) {
		r := initResources()
		require.NoError(t, r.storage.Set(r.ctx, client, map[string]string{model.KeyIsLoggedIn: "true"}))

		_, err := r.usecase.Restore(r.ctx, client)
		require.NoError(t, err)

		_, ok, _ := r.storage.Get(r.ctx, client, model.KeyIsLoggedIn)
		assert.False(t, ok)
	})
}

func (s *UsecaseSessionSuite) TestLoginLogout(t provider.T) {
	t.Run("Should survive a restore after login", func(t provider.T) {
		r := initResources()

		session, err := r.usecase.Login(r.ctx, client, "Bat")
		require.NoError(t, err)
		assert.Equal(t, model.LoggedIn("Bat"), session)

		restored, err := r.usecase.Restore(r.ctx, client)
		require.NoError(t, err)
		assert.Equal(t, session, restored)
	})

	t.Run("Should reject an empty identity", func(t provider.T) {
		r := initResources()

		_, err := r.usecase.Login(r.ctx, client, "   ")
		assert.ErrorIs(t, err, ErrEmptyIdentity)

		restored, _ := r.usecase.Restore(r.ctx, client)
		assert.Equal(t, model.LoggedOut(), restored)
	})

	t.Run("Should keep reviews on logout", func(t provider.T) {
		r := initResources()
		require.NoError(t, r.storage.Set(r.ctx, client, map[string]string{model.KeyUserReviews: "[]"}))
		_, err := r.usecase.Login(r.ctx, client, "Bat")
		require.NoError(t, err)

		session, err := r.usecase.Logout(r.ctx, client)
		require.NoError(t, err)
		assert.Equal(t, model.LoggedOut(), session)

		_, ok, _ := r.storage.Get(r.ctx, client, model.KeyUserEmail)
		assert.False(t, ok)
		v, ok, _ := r.storage.Get(r.ctx, client, model.KeyUserReviews)
		assert.True(t, ok)
		assert.Equal(t, "[]", v)
	})

	t.Run("Should write flag and identity together", func(t provider.T) {
		storage := &LocalStorageMock{}
		storage.On("Set", mock.Anything, client, map[string]string{
			model.KeyIsLoggedIn: "true",
			model.KeyUserEmail:  "Bat",
		}).Return(nil).Once()

		_, err := New(storage, &AuthenticatorMock{}).Login(context.Background(), client, "Bat")

		assert.NoError(t, err)
		storage.AssertExpectations(t)
	})

	t.Run("Should report storage failures", func(t provider.T) {
		storage := &LocalStorageMock{}
		storage.On("Get", mock.Anything, client, model.KeyIsLoggedIn).Return("", false, errors.New("boom")).Once()

		session, err := New(storage, &AuthenticatorMock{}).Restore(context.Background(), client)

		assert.ErrorIs(t, err, ErrStorage)
		assert.Equal(t, model.LoggedOut(), session)
		storage.AssertExpectations(t)
	})
}

func (s *UsecaseSessionSuite) TestAuthenticate(t provider.T) {
	testCases := []struct {
		name          string
		email         string
		password      string
		setupMocks    func(r *resources)
		expected      model.Session
		expectedError error
	}{
		{
			name:     "Should log in with accepted credentials",
			email:    " a@b.mn ",
			password: "secret",
			setupMocks: func(r *resources) {
				r.auth.On("Login", r.ctx, "a@b.mn", "secret").Return(nil).Once()
			},
			expected: model.LoggedIn("a@b.mn"),
		},
		{
			name:          "Should reject an empty email",
			password:      "secret",
			setupMocks:    func(r *resources) {},
			expected:      model.LoggedOut(),
			expectedError: ErrEmptyEmail,
		},
		{
			name:          "Should reject an empty password",
			email:         "a@b.mn",
			setupMocks:    func(r *resources) {},
			expected:      model.LoggedOut(),
			expectedError: ErrEmptyPassword,
		},
		{
			name:     "Should map transport failures",
			email:    "a@b.mn",
			password: "secret",
			setupMocks: func(r *resources) {
				r.auth.On("Login", r.ctx, "a@b.mn", "secret").Return(errors.New("dial tcp")).Once()
			},
			expected:      model.LoggedOut(),
			expectedError: ErrAuthUnavailable,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			r := initResources()
			tc.setupMocks(r)

			session, err := r.usecase.Authenticate(r.ctx, client, tc.email, tc.password)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tc.expected, session)

			restored, _ := r.usecase.Restore(r.ctx, client)
			assert.Equal(t, tc.expected, restored)
			r.auth.AssertExpectations(t)
		})
	}

	t.Run("Should pass the remote detail through", func(t provider.T) {
		r := initResources()
		r.auth.On("Login", r.ctx, "a@b.mn", "bad").
			Return(&model.RemoteRejection{Status: http.StatusUnauthorized, Detail: "Нууц үг буруу"}).Once()

		_, err := r.usecase.Authenticate(r.ctx, client, "a@b.mn", "bad")

		var rejection *model.RemoteRejection
		require.ErrorAs(t, err, &rejection)
		assert.Equal(t, "Нууц үг буруу", rejection.Detail)
	})
}

func (s *UsecaseSessionSuite) TestRegister(t provider.T) {
	t.Run("Should register without logging in", func(t provider.T) {
		r := initResources()
		r.auth.On("Register", r.ctx, "a@b.mn", "secret").Return(nil).Once()

		require.NoError(t, r.usecase.Register(r.ctx, "a@b.mn", "secret"))

		restored, _ := r.usecase.Restore(r.ctx, client)
		assert.Equal(t, model.LoggedOut(), restored)
		r.auth.AssertExpectations(t)
	})

	t.Run("Should pass a rejection through", func(t provider.T) {
		r := initResources()
		r.auth.On("Register", r.ctx, "a@b.mn", "secret").
			Return(&model.RemoteRejection{Status: http.StatusConflict, Detail: "exists"}).Once()

		err := r.usecase.Register(r.ctx, "a@b.mn", "secret")

		var rejection *model.RemoteRejection
		assert.ErrorAs(t, err, &rejection)
	})
}

func TestUsecaseSessionSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseSessionSuite))
}
