package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/rlammers/microblog-api/internal/events"
	"github.com/rlammers/microblog-api/internal/hash"
	"github.com/rlammers/microblog-api/internal/logging"
	"github.com/rlammers/microblog-api/internal/models"
	"github.com/rlammers/microblog-api/internal/repo"
	"github.com/rlammers/microblog-api/internal/tokens"
)

var ErrValidation = errors.New("validation failed")

// AuthService orchestrates the token lifecycle over the credential store,
// the token issuer and the revocation ledger.
type AuthService struct {
	Repo   *repo.GormRepo
	Issuer *tokens.Issuer
	Events *events.Producer
}

type RegisterInput struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Birthday  string `json:"birthday"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (in RegisterInput) validate() (time.Time, error) {
	required := []struct {
		field string
		value string
	}{
		{"username", in.Username},
		{"password", in.Password},
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
		{"email", in.Email},
		{"birthday", in.Birthday},
	}
	for _, f := range required {
		if f.value == "" {
			return time.Time{}, fmt.Errorf("%w: missing %s", ErrValidation, f.field)
		}
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid email", ErrValidation)
	}
	birthday, err := time.Parse("2006-01-02", in.Birthday)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrValidation)
	}
	return birthday, nil
}

// Register validates input, checks duplicates and persists the user. No
// token is issued; the client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	birthday, err := in.validate()
	if err != nil {
		return err
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("password hash failed", "error", err)
		return err
	}

	user := models.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: pwHash,
		Birthday:     birthday,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return err
	}

	l.Info("user registered", "username", in.Username)
	s.Events.Publish(ctx, events.UserRegistered, in.Username)
	return nil
}

// Login verifies credentials and mints a fresh access token plus a refresh
// token. The error never reveals whether username or password was wrong.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: missing credentials", ErrValidation)
	}

	user, err := s.Repo.VerifyCredentials(ctx, username, password)
	if err != nil {
		if errors.Is(err, repo.ErrInvalidCredentials) {
			l.Warn("login failed", "username", username)
		}
		return nil, err
	}

	access, err := s.Issuer.MintAccess(user.ID, true)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Issuer.MintRefresh(user.ID)
	if err != nil {
		return nil, err
	}

	l.Info("login successful", "username", username)
	s.Events.Publish(ctx, events.UserLoggedIn, username)
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// FreshLogin re-verifies the password and mints only a fresh access token,
// for callers that already hold a session but need freshness back.
func (s *AuthService) FreshLogin(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: missing credentials", ErrValidation)
	}
	user, err := s.Repo.VerifyCredentials(ctx, username, password)
	if err != nil {
		return "", err
	}
	return s.Issuer.MintAccess(user.ID, true)
}

// Refresh mints a non-fresh access token for the subject of an already
// verified, non-revoked refresh token. The refresh token itself is neither
// rotated nor revoked.
func (s *AuthService) Refresh(ctx context.Context, claims *tokens.Claims) (string, error) {
	userID, err := claims.UserID()
	if err != nil {
		return "", err
	}
	return s.Issuer.MintAccess(userID, false)
}

// Logout revokes the presented token's jti. Access and refresh tokens are
// revoked independently; logging out one never touches the other.
func (s *AuthService) Logout(ctx context.Context, claims *tokens.Claims, username string) error {
	if err := s.Repo.Revoke(ctx, claims.ID); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("token revoked", "jti", claims.ID)
	s.Events.Publish(ctx, events.UserLoggedOut, username)
	return nil
}

// ResolveUser turns verified claims into the owning user. A well-formed
// token whose subject no longer exists resolves to an error, not a panic.
func (s *AuthService) ResolveUser(ctx context.Context, claims *tokens.Claims) (*models.User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	return s.Repo.GetUserByID(ctx, userID)
}
