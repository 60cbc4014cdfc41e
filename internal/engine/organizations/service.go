package organizations

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
	"riffraff/internal/pkg/validator"
	"riffraff/internal/platform/config"
	"riffraff/internal/platform/models"
)

type OrganizationStore interface {
	Create(ctx context.Context, assignments []patch.Assignment) (*models.Organization, error)
	GetByID(ctx context.Context, id int64) (*models.Organization, error)
	Exists(ctx context.Context, id int64) (bool, error)
	List(ctx context.Context) ([]*models.Organization, error)
	Update(ctx context.Context, id int64, assignments []patch.Assignment) (*models.Organization, error)
}

type AddressStore interface {
	Create(ctx context.Context, assignments []patch.Assignment) (*models.Address, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]*models.Address, error)
}

type CustomFieldStore interface {
	Create(ctx context.Context, assignments []patch.Assignment) (*models.CustomField, error)
	ListByOrganization(ctx context.Context, orgID int64) ([]*models.CustomField, error)
}

// UserLabeler rewrites a user's denormalized organization label.
type UserLabeler interface {
	SetOrganizationLabel(ctx context.Context, id int64, label string) (bool, error)
}

// PartialCreateError reports a child insert that failed after the
// organization was stored. The organization and the children inserted
// before Index remain.
type PartialCreateError struct {
	OrganizationID int64
	Child          string
	Index          int
	Err            error
}

func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("organization %d: %s %d: %v", e.OrganizationID, e.Child, e.Index, e.Err)
}

func (e *PartialCreateError) Unwrap() error { return e.Err }

// Details exposes the stored organization so clients can continue from it.
func (e *PartialCreateError) Details() map[string]interface{} {
	return map[string]interface{}{
		"organization_id": e.OrganizationID,
		"failed_child":    e.Child,
		"failed_index":    e.Index,
	}
}

type Service struct {
	orgs            OrganizationStore
	addresses       AddressStore
	fields          CustomFieldStore
	users           UserLabeler
	validate        *validator.Validator
	defaultTimeZone string
}

func NewService(orgs OrganizationStore, addresses AddressStore, fields CustomFieldStore, users UserLabeler, validate *validator.Validator, cfg config.OrganizationsConfig) *Service {
	return &Service{
		orgs:            orgs,
		addresses:       addresses,
		fields:          fields,
		users:           users,
		validate:        validate,
		defaultTimeZone: cfg.DefaultTimeZone,
	}
}

// CreateOrganization stores the organization first and then each child
// against its generated id. Children are inserted one by one: a failure
// leaves the organization and earlier children in place.
func (s *Service) CreateOrganization(ctx context.Context, adminUserID int64, in models.OrganizationInput) (*models.Organization, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}
	if name, ok := in.Name.Get(); !ok || strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidation("name", "is required")
	}

	org, err := s.orgs.Create(ctx, in.Assignments(adminUserID, s.defaultTimeZone))
	if err != nil {
		return nil, err
	}

	for i, addr := range in.Addresses {
		if _, err := s.addresses.Create(ctx, addr.Assignments(org.ID)); err != nil {
			return nil, s.partial(ctx, org.ID, "address", i, err)
		}
	}
	for i, field := range in.CustomFields {
		if _, err := s.fields.Create(ctx, field.Assignments(org.ID)); err != nil {
			return nil, s.partial(ctx, org.ID, "custom_field", i, err)
		}
	}

	zerolog.Ctx(ctx).Info().
		Int64("organization_id", org.ID).
		Int("addresses", len(in.Addresses)).
		Int("custom_fields", len(in.CustomFields)).
		Msg("organization created")

	return org, nil
}

func (s *Service) partial(ctx context.Context, orgID int64, child string, index int, err error) error {
	zerolog.Ctx(ctx).Warn().Err(err).
		Int64("organization_id", orgID).
		Str("child", child).
		Int("index", index).
		Msg("organization created without all children")
	return &PartialCreateError{OrganizationID: orgID, Child: child, Index: index, Err: err}
}

// CreateDefaultOrganization creates the organization a user gets on
// registration, named after their organization label or username.
func (s *Service) CreateDefaultOrganization(ctx context.Context, user *models.User) (*models.Organization, error) {
	in := models.OrganizationInput{
		OrganizationFields: models.OrganizationFields{
			Name: patch.Set(models.DefaultOrganizationName(user)),
		},
	}
	return s.orgs.Create(ctx, in.Assignments(user.ID, s.defaultTimeZone))
}

func (s *Service) ListOrganizations(ctx context.Context) ([]*models.Organization, error) {
	return s.orgs.List(ctx)
}

// GetOrganization returns the organization, with its addresses and custom
// fields embedded when nested is set.
func (s *Service) GetOrganization(ctx context.Context, id int64, nested bool) (*models.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.NewNotFound("organization")
	}

	if nested {
		if org.Addresses, err = s.addresses.ListByOrganization(ctx, id); err != nil {
			return nil, err
		}
		if org.CustomFields, err = s.fields.ListByOrganization(ctx, id); err != nil {
			return nil, err
		}
	}
	return org, nil
}

// UpdateOrganization applies only the fields present in fields. A rename
// is copied onto the admin user's organization label on a best-effort
// basis.
func (s *Service) UpdateOrganization(ctx context.Context, id int64, fields models.OrganizationFields) (*models.Organization, error) {
	if err := s.validate.Struct(fields); err != nil {
		return nil, err
	}
	if fields.Name.IsNull() {
		return nil, apperrors.NewValidation("name", "must not be null")
	}
	name, renamed := fields.Name.Get()
	if renamed && strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidation("name", "must not be empty")
	}

	org, err := s.orgs.Update(ctx, id, fields.Assignments())
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperrors.NewNotFound("organization")
	}

	if renamed && org.AdminUserID != nil {
		s.syncAdminLabel(ctx, *org.AdminUserID, name)
	}

	return org, nil
}

func (s *Service) syncAdminLabel(ctx context.Context, userID int64, name string) {
	logger := zerolog.Ctx(ctx)

	found, err := s.users.SetOrganizationLabel(ctx, userID, name)
	if err != nil {
		logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to sync organization label")
		return
	}
	if !found {
		logger.Warn().Int64("user_id", userID).Msg("admin user missing, organization label not synced")
	}
}

func (s *Service) CreateAddress(ctx context.Context, orgID int64, in models.AddressInput) (*models.Address, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.addresses.Create(ctx, in.Assignments(orgID))
}

func (s *Service) ListAddresses(ctx context.Context, orgID int64) ([]*models.Address, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.addresses.ListByOrganization(ctx, orgID)
}

func (s *Service) CreateCustomField(ctx context.Context, orgID int64, in models.CustomFieldInput) (*models.CustomField, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.fields.Create(ctx, in.Assignments(orgID))
}

func (s *Service) ListCustomFields(ctx context.Context, orgID int64) ([]*models.CustomField, error) {
	if err := s.requireOrganization(ctx, orgID); err != nil {
		return nil, err
	}
	return s.fields.ListByOrganization(ctx, orgID)
}

func (s *Service) requireOrganization(ctx context.Context, id int64) error {
	ok, err := s.orgs.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.NewNotFound("organization")
	}
	return nil
}
