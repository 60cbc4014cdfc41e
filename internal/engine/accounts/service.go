package accounts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
	"riffraff/internal/pkg/validator"
	"riffraff/internal/platform/auth"
	"riffraff/internal/platform/metrics"
	"riffraff/internal/platform/models"
	"riffraff/internal/workers"
)

const DefaultOrganizationTask = "default-organization"

type UserStore interface {
	Create(ctx context.Context, assignments []patch.Assignment) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, id int64, assignments []patch.Assignment) (*models.User, error)
}

type TaskQueue interface {
	Enqueue(name, subject string, job workers.Job) bool
}

type OrganizationCreator interface {
	CreateDefaultOrganization(ctx context.Context, user *models.User) (*models.Organization, error)
}

type Service struct {
	users    UserStore
	hasher   *auth.Hasher
	tokens   *auth.TokenService
	validate *validator.Validator
	tasks    TaskQueue
	orgs     OrganizationCreator
}

func NewService(users UserStore, hasher *auth.Hasher, tokens *auth.TokenService, validate *validator.Validator, tasks TaskQueue, orgs OrganizationCreator) *Service {
	return &Service{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		validate: validate,
		tasks:    tasks,
		orgs:     orgs,
	}
}

// Register creates a user and schedules creation of their default
// organization. The response does not wait for, or report on, that task.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, in.Assignments(digest))
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().Int64("user_id", user.ID).Msg("user registered")

	s.tasks.Enqueue(DefaultOrganizationTask, user.Username, func(ctx context.Context) error {
		_, err := s.orgs.CreateDefaultOrganization(ctx, user)
		return err
	})

	return user, nil
}

// CheckCredentials returns the user when password matches. An unknown
// username is NotFound; a wrong password is ErrInvalidCredentials.
func (s *Service) CheckCredentials(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		metrics.LoginAttempts.WithLabelValues("unknown_user").Inc()
		return nil, apperrors.NewNotFound("user")
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("bad_password").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return user, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (auth.TokenPair, error) {
	user, err := s.CheckCredentials(ctx, username, password)
	if err != nil {
		return auth.TokenPair{}, err
	}
	return s.tokens.Issue(user.Username)
}

// RefreshAccessToken returns a new access token alongside the unchanged
// refresh token.
func (s *Service) RefreshAccessToken(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	return s.tokens.Refresh(refreshToken)
}

// CurrentUser resolves an access token to its user. A valid token whose
// subject no longer exists is NotFound.
func (s *Service) CurrentUser(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.tokens.Decode(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user")
	}
	return user, nil
}

// UpdateUser applies only the fields present in p. A new password is
// hashed before it is stored.
func (s *Service) UpdateUser(ctx context.Context, id int64, p models.UserPatch) (*models.User, error) {
	if err := s.validate.Struct(p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	assignments, err := p.Assignments(s.hasher.Hash)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Update(ctx, id, assignments)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperrors.NewNotFound("user")
	}
	return user, nil
}
