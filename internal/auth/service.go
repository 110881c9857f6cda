// Package auth signs users in and out and checks whether the stored
// session is still accepted by the API.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"financas/internal/api"
	"financas/internal/core"
	"financas/internal/log"
	"financas/internal/session"
)

const defaultLoginMessage = "Erro no login"

var ErrMissingCredentials = errors.New("email and password are required")

// LoginError is a login refused by the API. Message is suitable for display.
type LoginError struct {
	Message string
	Err     error
}

func (e *LoginError) Error() string { return e.Message }
func (e *LoginError) Unwrap() error { return e.Err }

// Authenticator is the part of the API client the service needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (api.LoginResult, error)
	Verify(ctx context.Context, token string) error
}

// Verification is the outcome of VerifySession.
type Verification struct {
	Valid bool
	User  *core.User
	Token string
}

type Service struct {
	api    Authenticator
	store  session.Store
	logger *log.Logger
}

func NewService(a Authenticator, store session.Store, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Discard()
	}
	return &Service{api: a, store: store, logger: logger.WithComponent(log.ComponentAuth)}
}

// Login authenticates and persists the session. The stored session is
// left untouched when the API refuses the credentials.
func (s *Service) Login(ctx context.Context, email, password string) (core.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return core.User{}, ErrMissingCredentials
	}

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Message
			if msg == "" {
				msg = defaultLoginMessage
			}
			s.logger.WarnContext(ctx, "Login refused", log.FieldOperation, log.OpLogin, log.FieldStatusCode, apiErr.StatusCode)
			return core.User{}, &LoginError{Message: msg, Err: err}
		}
		return core.User{}, fmt.Errorf("login: %w", err)
	}

	if err := s.store.Save(ctx, session.Session{User: &res.User, Token: res.Token}); err != nil {
		return core.User{}, fmt.Errorf("save session: %w", err)
	}

	s.logger.InfoContext(ctx, "Logged in", log.FieldOperation, log.OpLogin, log.FieldUserEmail, res.User.Email)
	return res.User, nil
}

// VerifySession reports whether the stored session is complete and its
// token still accepted. Failures of any kind yield an invalid result.
func (s *Service) VerifySession(ctx context.Context) Verification {
	sess, err := s.store.Get(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not read session", log.FieldOperation, log.OpVerify, log.FieldError, err)
		return Verification{}
	}
	if !sess.Valid() {
		s.logger.DebugContext(ctx, "No complete session stored", log.FieldOperation, log.OpVerify)
		return Verification{}
	}

	if err := s.api.Verify(ctx, sess.Token); err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			s.logger.WarnContext(ctx, "Token expired or invalid", log.FieldOperation, log.OpVerify, log.FieldUserEmail, sess.User.Email)
		} else {
			s.logger.WarnContext(ctx, "Session verification failed", log.FieldOperation, log.OpVerify, log.FieldError, err)
		}
		return Verification{}
	}

	return Verification{Valid: true, User: sess.User, Token: sess.Token}
}

// Session returns the stored session without contacting the API.
func (s *Service) Session(ctx context.Context) (session.Session, error) {
	return s.store.Get(ctx)
}

// Logout clears the local session. The API has no logout endpoint.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	s.logger.InfoContext(ctx, "Logged out", log.FieldOperation, log.OpLogout)
	return nil
}
