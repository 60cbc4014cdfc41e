package repositories

import (
	"context"

	"riffraff/internal/pkg/patch"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/models"
)

const customFieldColumns = `id, organization_id, "index", value, label`

type CustomFieldRepository struct {
	db *database.DB
}

func NewCustomFieldRepository(db *database.DB) *CustomFieldRepository {
	return &CustomFieldRepository{db: db}
}

func scanCustomField(row scanner) (*models.CustomField, error) {
	field := &models.CustomField{}
	if err := row.Scan(&field.ID, &field.OrganizationID, &field.Index, &field.Value, &field.Label); err != nil {
		return nil, err
	}
	return field, nil
}

func (r *CustomFieldRepository) Create(ctx context.Context, assignments []patch.Assignment) (*models.CustomField, error) {
	query, args := insertQuery(r.db.Dialect, "custom_fields", assignments, customFieldColumns)
	field, err := scanCustomField(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "custom field", "organization")
	}
	return field, nil
}

func (r *CustomFieldRepository) ListByOrganization(ctx context.Context, orgID int64) ([]*models.CustomField, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+customFieldColumns+` FROM custom_fields WHERE organization_id = ? ORDER BY id`), orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []*models.CustomField{}
	for rows.Next() {
		field, err := scanCustomField(rows)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, rows.Err()
}
