package models

import (
	"strings"

	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
)

// Each write type maps itself to columns explicitly. Only present fields
// become assignments, so absent keys keep their schema defaults.

type RegisterInput struct {
	Username     string  `json:"username" validate:"required,max=150"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Role         *string `json:"role"`
	Organization *string `json:"organization"`
	IsActive     *bool   `json:"is_active"`
}

// Assignments never carries the plaintext password; the caller must supply
// the digest.
func (in RegisterInput) Assignments(passwordHash string) []patch.Assignment {
	a := []patch.Assignment{
		{Column: "username", Value: in.Username},
		{Column: "email", Value: in.Email},
		{Column: "password", Value: passwordHash},
	}
	if in.FirstName != nil {
		a = append(a, patch.Assignment{Column: "first_name", Value: *in.FirstName})
	}
	if in.LastName != nil {
		a = append(a, patch.Assignment{Column: "last_name", Value: *in.LastName})
	}
	if in.Role != nil {
		a = append(a, patch.Assignment{Column: "role", Value: *in.Role})
	}
	if in.Organization != nil {
		a = append(a, patch.Assignment{Column: "organization", Value: *in.Organization})
	}
	if in.IsActive != nil {
		a = append(a, patch.Assignment{Column: "is_active", Value: *in.IsActive})
	}
	return a
}

type UserPatch struct {
	Username     patch.Field[string] `json:"username" validate:"omitempty,max=150"`
	Email        patch.Field[string] `json:"email" validate:"omitempty,email"`
	Password     patch.Field[string] `json:"password"`
	FirstName    patch.Field[string] `json:"first_name"`
	LastName     patch.Field[string] `json:"last_name"`
	Role         patch.Field[string] `json:"role"`
	Organization patch.Field[string] `json:"organization"`
	IsActive     patch.Field[bool]   `json:"is_active"`
}

// Validate rejects explicit nulls on columns that cannot hold them, and
// empty login identifiers.
func (p UserPatch) Validate() error {
	switch {
	case p.Username.IsNull():
		return apperrors.NewValidation("username", "must not be null")
	case p.Email.IsNull():
		return apperrors.NewValidation("email", "must not be null")
	case p.Password.IsNull():
		return apperrors.NewValidation("password", "must not be null")
	case p.Role.IsNull():
		return apperrors.NewValidation("role", "must not be null")
	case p.IsActive.IsNull():
		return apperrors.NewValidation("is_active", "must not be null")
	}
	if username, ok := p.Username.Get(); ok && strings.TrimSpace(username) == "" {
		return apperrors.NewValidation("username", "must not be empty")
	}
	if email, ok := p.Email.Get(); ok && strings.TrimSpace(email) == "" {
		return apperrors.NewValidation("email", "must not be empty")
	}
	if pw, ok := p.Password.Get(); ok && pw == "" {
		return apperrors.NewValidation("password", "must not be empty")
	}
	return nil
}

// Assignments passes a supplied password through hash before it becomes a
// column value.
func (p UserPatch) Assignments(hash func(string) (string, error)) ([]patch.Assignment, error) {
	var a []patch.Assignment
	a = patch.Append(a, "username", p.Username)
	a = patch.Append(a, "email", p.Email)
	if pw, ok := p.Password.Get(); ok {
		digest, err := hash(pw)
		if err != nil {
			return nil, err
		}
		a = append(a, patch.Assignment{Column: "password", Value: digest})
	}
	a = patch.Append(a, "first_name", p.FirstName)
	a = patch.Append(a, "last_name", p.LastName)
	a = patch.Append(a, "role", p.Role)
	a = patch.Append(a, "organization", p.Organization)
	a = patch.Append(a, "is_active", p.IsActive)
	return a, nil
}

// OrganizationFields is the writable column set of an organization, shared
// by create and update.
type OrganizationFields struct {
	Name                 patch.Field[string] `json:"name" validate:"omitempty,max=255"`
	FiscalYearStartMonth patch.Field[string] `json:"fiscal_year_start_month"`
	CurrencyCode         patch.Field[string] `json:"currency_code"`
	TimeZone             patch.Field[string] `json:"time_zone"`
	DateFormat           patch.Field[string] `json:"date_format"`
	FieldSeparator       patch.Field[string] `json:"field_separator"`
	LanguageCode         patch.Field[string] `json:"language_code"`
	IndustryType         patch.Field[string] `json:"industry_type"`
	IndustrySize         patch.Field[string] `json:"industry_size"`
	PortalName           patch.Field[string] `json:"portal_name"`
	OrgAddress           patch.Field[string] `json:"org_address"`
	RemitToAddress       patch.Field[string] `json:"remit_to_address"`
	IsDefaultOrg         patch.Field[bool]   `json:"is_default_org"`
	AccountCreatedDate   patch.Field[int64]  `json:"account_created_date"`
	ContactName          patch.Field[string] `json:"contact_name"`
	CompanyIDLabel       patch.Field[string] `json:"company_id_label"`
	CompanyIDValue       patch.Field[string] `json:"company_id_value"`
	TaxIDLabel           patch.Field[string] `json:"tax_id_label"`
	TaxIDValue           patch.Field[string] `json:"tax_id_value"`
	CurrencyID           patch.Field[string] `json:"currency_id"`
	CurrencySymbol       patch.Field[string] `json:"currency_symbol"`
	CurrencyFormat       patch.Field[string] `json:"currency_format"`
	PricePrecision       patch.Field[int]    `json:"price_precision"`
	Phone                patch.Field[string] `json:"phone"`
	Fax                  patch.Field[string] `json:"fax"`
	Website              patch.Field[string] `json:"website"`
	Email                patch.Field[string] `json:"email" validate:"omitempty,email"`
	IsOrgActive          patch.Field[bool]   `json:"is_org_active"`
}

func (f OrganizationFields) Assignments() []patch.Assignment {
	var a []patch.Assignment
	a = patch.Append(a, "name", f.Name)
	a = patch.Append(a, "fiscal_year_start_month", f.FiscalYearStartMonth)
	a = patch.Append(a, "currency_code", f.CurrencyCode)
	a = patch.Append(a, "time_zone", f.TimeZone)
	a = patch.Append(a, "date_format", f.DateFormat)
	a = patch.Append(a, "field_separator", f.FieldSeparator)
	a = patch.Append(a, "language_code", f.LanguageCode)
	a = patch.Append(a, "industry_type", f.IndustryType)
	a = patch.Append(a, "industry_size", f.IndustrySize)
	a = patch.Append(a, "portal_name", f.PortalName)
	a = patch.Append(a, "org_address", f.OrgAddress)
	a = patch.Append(a, "remit_to_address", f.RemitToAddress)
	a = patch.Append(a, "is_default_org", f.IsDefaultOrg)
	a = patch.Append(a, "account_created_date", f.AccountCreatedDate)
	a = patch.Append(a, "contact_name", f.ContactName)
	a = patch.Append(a, "company_id_label", f.CompanyIDLabel)
	a = patch.Append(a, "company_id_value", f.CompanyIDValue)
	a = patch.Append(a, "tax_id_label", f.TaxIDLabel)
	a = patch.Append(a, "tax_id_value", f.TaxIDValue)
	a = patch.Append(a, "currency_id", f.CurrencyID)
	a = patch.Append(a, "currency_symbol", f.CurrencySymbol)
	a = patch.Append(a, "currency_format", f.CurrencyFormat)
	a = patch.Append(a, "price_precision", f.PricePrecision)
	a = patch.Append(a, "phone", f.Phone)
	a = patch.Append(a, "fax", f.Fax)
	a = patch.Append(a, "website", f.Website)
	a = patch.Append(a, "email", f.Email)
	a = patch.Append(a, "is_org_active", f.IsOrgActive)
	return a
}

// OrganizationInput is a create request: the organization's own fields plus
// children to attach once the organization exists.
type OrganizationInput struct {
	OrganizationFields
	Addresses    []AddressInput     `json:"addresses"`
	CustomFields []CustomFieldInput `json:"custom_fields"`
}

// Assignments stamps the administering user and fills time_zone from
// defaultTimeZone when it was not supplied.
func (in OrganizationInput) Assignments(adminUserID int64, defaultTimeZone string) []patch.Assignment {
	fields := in.OrganizationFields
	if !fields.TimeZone.Present() && defaultTimeZone != "" {
		fields.TimeZone = patch.Set(defaultTimeZone)
	}
	a := fields.Assignments()
	return append(a, patch.Assignment{Column: "admin_user_id", Value: adminUserID})
}

type AddressInput struct {
	StreetAddress1 patch.Field[string] `json:"street_address1"`
	StreetAddress2 patch.Field[string] `json:"street_address2"`
	City           patch.Field[string] `json:"city"`
	State          patch.Field[string] `json:"state"`
	Country        patch.Field[string] `json:"country"`
	Zip            patch.Field[string] `json:"zip"`
}

// Assignments stamps the parent organization id.
func (in AddressInput) Assignments(organizationID int64) []patch.Assignment {
	a := []patch.Assignment{{Column: "organization_id", Value: organizationID}}
	a = patch.Append(a, "street_address1", in.StreetAddress1)
	a = patch.Append(a, "street_address2", in.StreetAddress2)
	a = patch.Append(a, "city", in.City)
	a = patch.Append(a, "state", in.State)
	a = patch.Append(a, "country", in.Country)
	a = patch.Append(a, "zip", in.Zip)
	return a
}

type CustomFieldInput struct {
	Index patch.Field[int]    `json:"index"`
	Value patch.Field[string] `json:"value"`
	Label patch.Field[string] `json:"label"`
}

// Assignments stamps the parent organization id.
func (in CustomFieldInput) Assignments(organizationID int64) []patch.Assignment {
	a := []patch.Assignment{{Column: "organization_id", Value: organizationID}}
	a = patch.Append(a, "index", in.Index)
	a = patch.Append(a, "value", in.Value)
	a = patch.Append(a, "label", in.Label)
	return a
}
