package repositories

import (
	"context"

	"riffraff/internal/pkg/patch"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/models"
)

const addressColumns = `id, organization_id, street_address1, street_address2, city, state, country, zip`

type AddressRepository struct {
	db *database.DB
}

func NewAddressRepository(db *database.DB) *AddressRepository {
	return &AddressRepository{db: db}
}

func scanAddress(row scanner) (*models.Address, error) {
	addr := &models.Address{}
	err := row.Scan(&addr.ID, &addr.OrganizationID, &addr.StreetAddress1, &addr.StreetAddress2,
		&addr.City, &addr.State, &addr.Country, &addr.Zip)
	if err != nil {
		return nil, err
	}
	return addr, nil
}

// Create inserts one address. A missing parent organization fails with a
// NotFoundError.
func (r *AddressRepository) Create(ctx context.Context, assignments []patch.Assignment) (*models.Address, error) {
	query, args := insertQuery(r.db.Dialect, "addresses", assignments, addressColumns)
	addr, err := scanAddress(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "address", "organization")
	}
	return addr, nil
}

func (r *AddressRepository) ListByOrganization(ctx context.Context, orgID int64) ([]*models.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		r.db.Dialect.Rebind(`SELECT `+addressColumns+` FROM addresses WHERE organization_id = ? ORDER BY id`), orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	addrs := []*models.Address{}
	for rows.Next() {
		addr, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		addrs = append(addrs, addr)
	}
	return addrs, rows.Err()
}
