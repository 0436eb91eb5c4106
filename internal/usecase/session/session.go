package usecase_session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/humanbelnik/kinoshelf/internal/model"
)

var (
	ErrEmptyIdentity   = errors.New("identity cannot be empty")
	ErrEmptyEmail      = errors.New("email cannot be empty")
	ErrEmptyPassword   = errors.New("password cannot be empty")
	ErrAuthUnavailable = errors.New("Сервертэй холбогдох боломжгүй")
	ErrStorage         = errors.New("local storage failure")
)

const flagTrue = "true"

type LocalStorage interface {
	Get(ctx context.Context, clientID model.ClientID, key string) (string, bool, error)
	Set(ctx context.Context, clientID model.ClientID, values map[string]string) error
	Delete(ctx context.Context, clientID model.ClientID, keys ...string) error
}

// Authenticator errors are either *model.RemoteRejection or a transport failure.
type Authenticator interface {
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password string) error
}

type Usecase struct {
	storage LocalStorage
	auth    Authenticator
	logger  *slog.Logger
}

type Option func(*Usecase)

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(storage LocalStorage, auth Authenticator, opts ...Option) *Usecase {
	u := &Usecase{
		storage: storage,
		auth:    auth,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Restore rebuilds the session from local storage. A flag without an
// identity is cleared and reported as logged out.
func (u *Usecase) Restore(ctx context.Context, clientID model.ClientID) (model.Session, error) {
	flag, ok, err := u.storage.Get(ctx, clientID, model.KeyIsLoggedIn)
	if err != nil {
		return model.LoggedOut(), fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !ok || flag != flagTrue {
		return model.LoggedOut(), nil
	}

	identity, ok, err := u.storage.Get(ctx, clientID, model.KeyUserEmail)
	if err != nil {
		return model.LoggedOut(), fmt.Errorf("%w: %w", ErrStorage, err)
	}
	if !ok || identity == "" {
		u.logger.Warn("dangling login flag, clearing",
			slog.String("client", clientID),
		)
		if err := u.storage.Delete(ctx, clientID, model.KeyIsLoggedIn); err != nil {
			return model.LoggedOut(), fmt.Errorf("%w: %w", ErrStorage, err)
		}
		return model.LoggedOut(), nil
	}

	return model.LoggedIn(identity), nil
}

func (u *Usecase) Login(ctx context.Context, clientID model.ClientID, identity string) (model.Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return model.LoggedOut(), ErrEmptyIdentity
	}

	if err := u.storage.Set(ctx, clientID, map[string]string{
		model.KeyIsLoggedIn: flagTrue,
		model.KeyUserEmail:  identity,
	}); err != nil {
		return model.LoggedOut(), fmt.Errorf("%w: %w", ErrStorage, err)
	}

	return model.LoggedIn(identity), nil
}

// Logout keeps the review snapshot.
func (u *Usecase) Logout(ctx context.Context, clientID model.ClientID) (model.Session, error) {
	if err := u.storage.Delete(ctx, clientID, model.KeyIsLoggedIn, model.KeyUserEmail); err != nil {
		return model.LoggedOut(), fmt.Errorf("%w: %w", ErrStorage, err)
	}
	return model.LoggedOut(), nil
}

// Authenticate checks the credentials remotely and logs the client in on success.
func (u *Usecase) Authenticate(ctx context.Context, clientID model.ClientID, email, password string) (model.Session, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return model.LoggedOut(), err
	}

	if err := u.auth.Login(ctx, email, password); err != nil {
		return model.LoggedOut(), u.remoteError("login", err)
	}

	return u.Login(ctx, clientID, email)
}

func (u *Usecase) Register(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, password); err != nil {
		return err
	}

	if err := u.auth.Register(ctx, email, password); err != nil {
		return u.remoteError("register", err)
	}
	return nil
}

func (u *Usecase) remoteError(op string, err error) error {
	var rejection *model.RemoteRejection
	if errors.As(err, &rejection) {
		return rejection
	}

	u.logger.Error("auth service call failed",
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %w", ErrAuthUnavailable, err)
}

func validateCredentials(email, password string) error {
	if email == "" {
		return ErrEmptyEmail
	}
	if password == "" {
		return ErrEmptyPassword
	}
	return nil
}
