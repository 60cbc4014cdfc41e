package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"riffraff/internal/pkg/patch"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/models"
)

const userColumns = `id, username, email, password, first_name, last_name, role, organization, is_active, created_at, updated_at`

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row scanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName,
		&user.Role, &user.Organization, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a user. Duplicate usernames or emails fail with a
// ConflictError.
func (r *UserRepository) Create(ctx context.Context, assignments []patch.Assignment) (*models.User, error) {
	now := time.Now().Unix()
	assignments = append(assignments,
		patch.Assignment{Column: "created_at", Value: now},
		patch.Assignment{Column: "updated_at", Value: now},
	)

	query, args := insertQuery(r.db.Dialect, "user_accounts", assignments, userColumns)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translate(err, "user", "")
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.db.Dialect.Rebind(`SELECT ` + userColumns + ` FROM user_accounts WHERE id = ?`)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := r.db.Dialect.Rebind(`SELECT ` + userColumns + ` FROM user_accounts WHERE username = ?`)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// Update writes the given columns and bumps updated_at. A missing row
// returns (nil, nil).
func (r *UserRepository) Update(ctx context.Context, id int64, assignments []patch.Assignment) (*models.User, error) {
	if len(assignments) == 0 {
		return r.GetByID(ctx, id)
	}

	assignments = append(assignments, patch.Assignment{Column: "updated_at", Value: time.Now().Unix()})
	query, args := updateQuery(r.db.Dialect, "user_accounts", id, assignments, userColumns)
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, translate(err, "user", "")
	}
	return user, nil
}

// SetOrganizationLabel rewrites the denormalized organization label of a
// user. It reports whether the user exists.
func (r *UserRepository) SetOrganizationLabel(ctx context.Context, id int64, label string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		r.db.Dialect.Rebind(`UPDATE user_accounts SET organization = ?, updated_at = ? WHERE id = ?`),
		label, time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListWithoutOrganization returns users with an id above afterID, created at
// or before createdBefore, that administer no organization, in id order.
func (r *UserRepository) ListWithoutOrganization(ctx context.Context, createdBefore, afterID int64, limit int) ([]*models.User, error) {
	query := r.db.Dialect.Rebind(`
		SELECT ` + userColumns + `
		FROM user_accounts u
		WHERE u.created_at <= ?
		  AND u.id > ?
		  AND NOT EXISTS (SELECT 1 FROM organizations o WHERE o.admin_user_id = u.id)
		ORDER BY u.id
		LIMIT ?
	`)

	rows, err := r.db.QueryContext(ctx, query, createdBefore, afterID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}
