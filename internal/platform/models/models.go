package models

// User is an account. Organization is a free-text label, not a reference
// to an Organization row.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"`
	FirstName    *string `json:"first_name"`
	LastName     *string `json:"last_name"`
	Role         string  `json:"role"`
	Organization *string `json:"organization"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

type Organization struct {
	ID                   int64   `json:"id"`
	Name                 string  `json:"name"`
	AdminUserID          *int64  `json:"admin_user_id"`
	FiscalYearStartMonth *string `json:"fiscal_year_start_month"`
	CurrencyCode         *string `json:"currency_code"`
	TimeZone             *string `json:"time_zone"`
	DateFormat           *string `json:"date_format"`
	FieldSeparator       *string `json:"field_separator"`
	LanguageCode         *string `json:"language_code"`
	IndustryType         *string `json:"industry_type"`
	IndustrySize         *string `json:"industry_size"`
	PortalName           *string `json:"portal_name"`
	OrgAddress           *string `json:"org_address"`
	RemitToAddress       *string `json:"remit_to_address"`
	IsDefaultOrg         *bool   `json:"is_default_org"`
	AccountCreatedDate   *int64  `json:"account_created_date"`
	ContactName          *string `json:"contact_name"`
	CompanyIDLabel       *string `json:"company_id_label"`
	CompanyIDValue       *string `json:"company_id_value"`
	TaxIDLabel           *string `json:"tax_id_label"`
	TaxIDValue           *string `json:"tax_id_value"`
	CurrencyID           *string `json:"currency_id"`
	CurrencySymbol       *string `json:"currency_symbol"`
	CurrencyFormat       *string `json:"currency_format"`
	PricePrecision       *int    `json:"price_precision"`
	Phone                *string `json:"phone"`
	Fax                  *string `json:"fax"`
	Website              *string `json:"website"`
	Email                *string `json:"email"`
	IsOrgActive          *bool   `json:"is_org_active"`

	// Populated only on nested reads.
	Addresses    []*Address     `json:"addresses,omitempty"`
	CustomFields []*CustomField `json:"custom_fields,omitempty"`
}

type Address struct {
	ID             int64   `json:"id"`
	OrganizationID int64   `json:"organization_id"`
	StreetAddress1 *string `json:"street_address1"`
	StreetAddress2 *string `json:"street_address2"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	Country        *string `json:"country"`
	Zip            *string `json:"zip"`
}

type CustomField struct {
	ID             int64   `json:"id"`
	OrganizationID int64   `json:"organization_id"`
	Index          *int    `json:"index"`
	Value          *string `json:"value"`
	Label          *string `json:"label"`
}

// DefaultOrganizationName is the name given to the organization created
// for a newly registered user.
func DefaultOrganizationName(u *User) string {
	if u.Organization != nil && *u.Organization != "" {
		return *u.Organization
	}
	return u.Username + "'s Organization"
}
