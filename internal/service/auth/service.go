package auth

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/activity"
	"github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/session"
)

// InvalidCredentials is the form-level message shown on the login page
const InvalidCredentials = "Credenciales inválidas"

type Backend interface {
	Login(ctx context.Context, username, password string) (*model.BackendLoginResponse, error)
}

type LoginRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

type LoginResult struct {
	Cookie string       `json:"-"`
	User   session.User `json:"user"`
}

type Service struct {
	backend  Backend
	codec    *session.Codec
	activity activity.Recorder
	logger   zerolog.Logger
}

func NewService(backend Backend, codec *session.Codec, recorder activity.Recorder, logger zerolog.Logger) *Service {
	return &Service{
		backend:  backend,
		codec:    codec,
		activity: recorder,
		logger:   logger.With().Str("component", "auth").Logger(),
	}
}

// Login authenticates against the backend and returns the sealed cookie value
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	resp, err := s.backend.Login(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.IsKind(err, errors.KindUnauthorized) || errors.IsKind(err, errors.KindBadRequest) ||
			errors.IsKind(err, errors.KindNotFound) {
			s.logger.Warn().Str("username", req.Username).Msg("login rejected")
			return nil, errors.Unauthorized(InvalidCredentials, err)
		}
		return nil, err
	}

	user := session.User{UUID: resp.UUID, Username: resp.Username, Email: resp.Email}
	value, err := s.codec.Encode(user, resp.Token)
	if err != nil {
		return nil, errors.Internal(err)
	}

	ctx = session.NewContext(ctx, &session.Session{User: user})
	s.activity.Record(ctx, model.ActivityLogin, "session", user.UUID, "")

	return &LoginResult{Cookie: value, User: user}, nil
}

func (s *Service) Logout(ctx context.Context) {
	if sess := session.FromContext(ctx); sess != nil {
		s.activity.Record(ctx, model.ActivityLogout, "session", sess.User.UUID, "")
	}
}

// Me returns the user of the current session
func (s *Service) Me(ctx context.Context) (session.User, error) {
	sess := session.FromContext(ctx)
	if sess == nil {
		return session.User{}, errors.Unauthorized("", nil)
	}
	return sess.User, nil
}
