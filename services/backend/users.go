package backendsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/masomo-storefront/core/user"
)

type wireUser struct {
	ids
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type userRepository struct {
	cl *Client
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(cl *Client) user.Repository {
	return &userRepository{cl: cl}
}

func (repo userRepository) unwire(wu wireUser) user.User {
	return user.User{
		ID:    wu.get(),
		Name:  wu.Name,
		Email: wu.Email,
		Role:  strings.ToLower(wu.Role),
	}
}

// decodeUser reads the user out of `data` or `data.user`.
func (repo userRepository) decodeUser(resp *rest.Response) (user.User, bool) {
	var env envelope
	if err := json.Unmarshal([]byte(resp.Body), &env); err != nil || !isJSONObject(env.Data) {
		return user.User{}, false
	}
	var wu wireUser
	if !decodeInto(env.Data, "user", &wu) {
		_ = json.Unmarshal(env.Data, &wu)
	}
	if wu.get() == "" && wu.Email == "" {
		return user.User{}, false
	}
	return repo.unwire(wu), true
}

func (repo userRepository) RegisterUser(ctx context.Context, nu user.NewUser) (user.User, error) {
	resp, err := repo.cl.do(ctx, call{
		method:   rest.Post,
		path:     "/user/register",
		endpoint: "/user/register",
		body:     map[string]string{"name": nu.Name, "email": nu.Email, "password": nu.Password},
	})
	if err != nil {
		var berr *Error
		if errors.As(err, &berr) && (berr.StatusCode == http.StatusConflict ||
			strings.Contains(strings.ToLower(berr.Message), "already exist")) {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, err
	}
	usr, ok := repo.decodeUser(resp)
	if !ok {
		usr = user.User{Name: nu.Name, Email: nu.Email, Role: user.RoleStudent}
	}
	return usr, nil
}

func (repo userRepository) Login(ctx context.Context, email, password string) (user.User, string, error) {
	resp, err := repo.cl.do(ctx, call{
		method:   rest.Post,
		path:     "/auth/login",
		endpoint: "/auth/login",
		body:     map[string]string{"email": email, "password": password},
	})
	if err != nil {
		switch StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusNotFound:
			return user.User{}, "", user.ErrInvalidCredentials
		}
		return user.User{}, "", err
	}

	session := sessionFrom(resp)
	if session == "" {
		return user.User{}, "", user.ErrNoSession
	}
	repo.cl.cache.invalidate(session, tagAuth)

	usr, ok := repo.decodeUser(resp)
	if !ok {
		if usr, err = repo.GetCurrentUser(ctx, session); err != nil {
			return user.User{}, "", err
		}
	}
	return usr, session, nil
}

func (repo userRepository) Logout(ctx context.Context, session string) error {
	_, err := repo.cl.do(ctx, call{
		method:   rest.Post,
		path:     "/auth/logout",
		endpoint: "/auth/logout",
		session:  session,
	})
	// the session is dropped locally whatever the backend answered
	repo.cl.cache.invalidate(session, tagAuth, tagCourses, tagEnrollments)
	return err
}

func (repo userRepository) GetCurrentUser(ctx context.Context, session string) (user.User, error) {
	resp, err := repo.cl.get(ctx, tagAuth, call{
		path:     "/user/me",
		endpoint: "/user/me",
		session:  session,
	})
	if err != nil {
		return user.User{}, err
	}
	usr, ok := repo.decodeUser(resp)
	if !ok {
		return user.User{}, errors.New("decoding current user")
	}
	return usr, nil
}
