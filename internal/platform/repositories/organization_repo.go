package repositories

import (
	"context"
	"database/sql"
	"errors"

	"riffraff/internal/pkg/patch"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/models"
)

const organizationColumns = `id, name, admin_user_id, fiscal_year_start_month, currency_code, time_zone, date_format,
	field_separator, language_code, industry_type, industry_size, portal_name, org_address, remit_to_address,
	is_default_org, account_created_date, contact_name, company_id_label, company_id_value, tax_id_label,
	tax_id_value, currency_id, currency_symbol, currency_format, price_precision, phone, fax, website, email,
	is_org_active`

type OrganizationRepository struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func scanOrganization(row scanner) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.AdminUserID, &org.FiscalYearStartMonth, &org.CurrencyCode, &org.TimeZone,
		&org.DateFormat, &org.FieldSeparator, &org.LanguageCode, &org.IndustryType, &org.IndustrySize, &org.PortalName,
		&org.OrgAddress, &org.RemitToAddress, &org.IsDefaultOrg, &org.AccountCreatedDate, &org.ContactName,
		&org.CompanyIDLabel, &org.CompanyIDValue, &org.TaxIDLabel, &org.TaxIDValue, &org.CurrencyID,
		&org.CurrencySymbol, &org.CurrencyFormat, &org.PricePrecision, &org.Phone, &org.Fax, &org.Website,
		&org.Email, &org.IsOrgActive)
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Create inserts an organization with only the supplied columns; the rest
// take their schema defaults. The row is committed when Create returns.
func (r *OrganizationRepository) Create(ctx context.Context, assignments []patch.Assignment) (*models.Organization, error) {
	query, args := insertQuery(r.db.Dialect, "organizations", assignments, organizationColumns)
	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "organization", "user")
	}
	return org, nil
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id int64) (*models.Organization, error) {
	query := r.db.Dialect.Rebind(`SELECT ` + organizationColumns + ` FROM organizations WHERE id = ?`)
	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		r.db.Dialect.Rebind(`SELECT COUNT(*) FROM organizations WHERE id = ?`), id).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, err
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

// Update writes only the given columns in a single statement. A missing row
// returns (nil, nil).
func (r *OrganizationRepository) Update(ctx context.Context, id int64, assignments []patch.Assignment) (*models.Organization, error) {
	if len(assignments) == 0 {
		return r.GetByID(ctx, id)
	}

	query, args := updateQuery(r.db.Dialect, "organizations", id, assignments, organizationColumns)
	org, err := scanOrganization(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "organization", "user")
	}
	return org, nil
}
