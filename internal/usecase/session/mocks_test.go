package usecase_session

import (
	"context"

	"github.com/humanbelnik/kinoshelf/internal/model"
	"github.com/stretchr/testify/mock"
)

type AuthenticatorMock struct {
	mock.Mock
}

func (m *AuthenticatorMock) Login(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

func (m *AuthenticatorMock) Register(ctx context.Context, email, password string) error {
	args := m.Called(ctx, email, password)
	return args.Error(0)
}

type LocalStorageMock struct {
	mock.Mock
}

func (m *LocalStorageMock) Get(ctx context.Context, clientID model.ClientID, key string) (string, bool, error) {
	args := m.Called(ctx, clientID, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *LocalStorageMock) Set(ctx context.Context, clientID model.ClientID, values map[string]string) error {
	args := m.Called(ctx, clientID, values)
	return args.Error(0)
}

func (m *LocalStorageMock) Delete(ctx context.Context, clientID model.ClientID, keys ...string) error {
	args := m.Called(ctx, clientID, keys)
	return args.Error(0)
}
