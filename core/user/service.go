package user

import (
	"context"
	"errors"
)

var (
	// errors
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailExists        = errors.New("a user with this email already exists")
	ErrNoSession          = errors.New("the backend did not open a session")
)

type (
	// Repository is implemented by the course backend, which owns the accounts.
	Repository interface {
		RegisterUser(ctx context.Context, nu NewUser) (User, error)
		// Login returns the authenticated user and the backend session it opened.
		Login(ctx context.Context, email, password string) (User, string, error)
		Logout(ctx context.Context, session string) error
		GetCurrentUser(ctx context.Context, session string) (User, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	return svc.repo.RegisterUser(ctx, nu)
}

func (svc *Service) Login(ctx context.Context, lr LoginRequest) (User, string, error) {
	usr, session, err := svc.repo.Login(ctx, lr.Email, lr.Password)
	if err != nil {
		return User{}, "", err
	}
	if session == "" {
		return User{}, "", ErrNoSession
	}
	return usr, session, nil
}

func (svc *Service) Logout(ctx context.Context, session string) error {
	return svc.repo.Logout(ctx, session)
}

func (svc *Service) Me(ctx context.Context, session string) (User, error) {
	return svc.repo.GetCurrentUser(ctx, session)
}
