package repositories

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
	"riffraff/internal/platform/database"
	"riffraff/internal/platform/models"
	"riffraff/internal/testutil"
)

func TestInsertQuery(t *testing.T) {
	assignments := []patch.Assignment{
		{Column: "organization_id", Value: int64(7)},
		{Column: "index", Value: 1},
	}

	query, args := insertQuery(database.Postgres, "custom_fields", assignments, "id")
	want := `INSERT INTO custom_fields ("organization_id", "index") VALUES ($1, $2) RETURNING id`
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{int64(7), 1}) {
		t.Errorf("unexpected args %v", args)
	}

	query, _ = insertQuery(database.SQLite, "organizations", nil, "id")
	if query != "INSERT INTO organizations DEFAULT VALUES RETURNING id" {
		t.Errorf("unexpected empty insert %q", query)
	}
}

func TestUpdateQuery(t *testing.T) {
	assignments := []patch.Assignment{
		{Column: "currency_code", Value: "USD"},
		{Column: "phone", Value: nil},
	}

	query, args := updateQuery(database.SQLite, "organizations", 3, assignments, "id")
	want := `UPDATE organizations SET "currency_code" = ?, "phone" = ? WHERE id = ? RETURNING id`
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if !reflect.DeepEqual(args, []interface{}{"USD", nil, int64(3)}) {
		t.Errorf("unexpected args %v", args)
	}
}

func createUser(t *testing.T, repo *UserRepository, username string) *models.User {
	t.Helper()
	in := models.RegisterInput{Username: username, Email: username + "@example.com", Password: "secret"}
	user, err := repo.Create(context.Background(), in.Assignments("digest"))
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := createUser(t, repo, "alice")
	if user.ID == 0 {
		t.Fatal("expected generated id")
	}
	if user.Role != "admin" {
		t.Errorf("expected default role admin, got %q", user.Role)
	}
	if user.IsActive {
		t.Error("expected inactive by default")
	}
	if user.PasswordHash != "digest" {
		t.Errorf("unexpected password column %q", user.PasswordHash)
	}

	fetched, err := repo.GetByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if fetched == nil || fetched.ID != user.ID {
		t.Fatalf("expected user %d, got %+v", user.ID, fetched)
	}

	missing, err := repo.GetByUsername(ctx, "ghost")
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for unknown user, got (%v, %v)", missing, err)
	}
}

func TestUserRepository_CreateConflict(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	createUser(t, repo, "alice")

	tests := []struct {
		name   string
		input  models.RegisterInput
		column string
	}{
		{"duplicate username", models.RegisterInput{Username: "alice", Email: "other@example.com"}, "username"},
		{"duplicate email", models.RegisterInput{Username: "bob", Email: "alice@example.com"}, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := repo.Create(context.Background(), tt.input.Assignments("digest"))
			var conflict *apperrors.ConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("expected ConflictError, got %v", err)
			}
			if conflict.Field != tt.column {
				t.Errorf("expected conflict on %s, got %s", tt.column, conflict.Field)
			}
		})
	}
}

func TestUserRepository_Update(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	user := createUser(t, repo, "alice")

	updated, err := repo.Update(ctx, user.ID, []patch.Assignment{{Column: "first_name", Value: "Alice"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName == nil || *updated.FirstName != "Alice" {
		t.Errorf("first_name not updated: %+v", updated.FirstName)
	}
	if updated.Email != user.Email {
		t.Errorf("email changed unexpectedly to %q", updated.Email)
	}

	missing, err := repo.Update(ctx, 999, []patch.Assignment{{Column: "first_name", Value: "x"}})
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for missing user, got (%v, %v)", missing, err)
	}

	ok, err := repo.SetOrganizationLabel(ctx, user.ID, "Acme")
	if err != nil || !ok {
		t.Fatalf("set label: %v %v", ok, err)
	}
	fetched, _ := repo.GetByID(ctx, user.ID)
	if fetched.Organization == nil || *fetched.Organization != "Acme" {
		t.Errorf("label not synced: %+v", fetched.Organization)
	}
}

func TestUserRepository_ListWithoutOrganization(t *testing.T) {
	db := testutil.NewDB(t)
	users := NewUserRepository(db)
	orgs := NewOrganizationRepository(db)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	in := models.OrganizationInput{OrganizationFields: models.OrganizationFields{Name: patch.Set("Acme")}}
	if _, err := orgs.Create(ctx, in.Assignments(alice.ID, "UTC")); err != nil {
		t.Fatalf("create org: %v", err)
	}

	cutoff := time.Now().Add(time.Minute).Unix()
	pending, err := users.ListWithoutOrganization(ctx, cutoff, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != bob.ID {
		t.Errorf("expected only bob, got %+v", pending)
	}

	pending, err = users.ListWithoutOrganization(ctx, cutoff, bob.ID, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected nothing after bob, got %+v", pending)
	}

	pending, err = users.ListWithoutOrganization(ctx, 0, 0, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no users created before epoch, got %d", len(pending))
	}
}

func TestOrganizationRepository_CreateDefaults(t *testing.T) {
	db := testutil.NewDB(t)
	admin := createUser(t, NewUserRepository(db), "alice")
	repo := NewOrganizationRepository(db)

	in := models.OrganizationInput{OrganizationFields: models.OrganizationFields{
		Name:  patch.Set("Acme"),
		Phone: patch.Set("555-0100"),
	}}
	org, err := repo.Create(context.Background(), in.Assignments(admin.ID, "Asia/Kolkata"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if org.Name != "Acme" || org.Phone == nil || *org.Phone != "555-0100" {
		t.Errorf("supplied fields not stored: %+v", org)
	}
	if org.AdminUserID == nil || *org.AdminUserID != admin.ID {
		t.Errorf("admin not stamped: %v", org.AdminUserID)
	}
	if org.CurrencyCode == nil || *org.CurrencyCode != "INR" {
		t.Errorf("expected default currency INR, got %v", org.CurrencyCode)
	}
	if org.TimeZone == nil || *org.TimeZone != "Asia/Kolkata" {
		t.Errorf("expected time zone default, got %v", org.TimeZone)
	}
	if org.PricePrecision == nil || *org.PricePrecision != 2 {
		t.Errorf("expected precision 2, got %v", org.PricePrecision)
	}
	if org.IsDefaultOrg == nil || !*org.IsDefaultOrg || org.IsOrgActive == nil || !*org.IsOrgActive {
		t.Errorf("expected default flags true: %v %v", org.IsDefaultOrg, org.IsOrgActive)
	}
	if org.Fax != nil {
		t.Errorf("expected absent fax to stay NULL, got %v", *org.Fax)
	}
}

func TestOrganizationRepository_UpdateOnlyPresent(t *testing.T) {
	db := testutil.NewDB(t)
	admin := createUser(t, NewUserRepository(db), "alice")
	repo := NewOrganizationRepository(db)
	ctx := context.Background()

	in := models.OrganizationInput{OrganizationFields: models.OrganizationFields{
		Name:  patch.Set("Acme"),
		Phone: patch.Set("555-0100"),
	}}
	before, err := repo.Create(ctx, in.Assignments(admin.ID, "UTC"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fields := models.OrganizationFields{CurrencyCode: patch.Set("USD")}
	after, err := repo.Update(ctx, before.ID, fields.Assignments())
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if *after.CurrencyCode != "USD" {
		t.Errorf("currency not updated: %v", *after.CurrencyCode)
	}
	after.CurrencyCode = before.CurrencyCode
	if !reflect.DeepEqual(before, after) {
		t.Errorf("unrelated fields changed:\nbefore %+v\nafter  %+v", before, after)
	}

	cleared, err := repo.Update(ctx, before.ID, models.OrganizationFields{Phone: patch.Null[string]()}.Assignments())
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cleared.Phone != nil {
		t.Errorf("expected explicit null to clear phone, got %v", *cleared.Phone)
	}

	missing, err := repo.Update(ctx, 999, fields.Assignments())
	if err != nil || missing != nil {
		t.Errorf("expected (nil, nil) for missing org, got (%v, %v)", missing, err)
	}
}

func TestChildRepositories(t *testing.T) {
	db := testutil.NewDB(t)
	admin := createUser(t, NewUserRepository(db), "alice")
	orgs := NewOrganizationRepository(db)
	addresses := NewAddressRepository(db)
	fields := NewCustomFieldRepository(db)
	ctx := context.Background()

	in := models.OrganizationInput{OrganizationFields: models.OrganizationFields{Name: patch.Set("Acme")}}
	org, err := orgs.Create(ctx, in.Assignments(admin.ID, "UTC"))
	if err != nil {
		t.Fatalf("create org: %v", err)
	}

	addr, err := addresses.Create(ctx, models.AddressInput{City: patch.Set("Pune")}.Assignments(org.ID))
	if err != nil {
		t.Fatalf("create address: %v", err)
	}
	if addr.OrganizationID != org.ID || *addr.City != "Pune" || addr.Zip != nil {
		t.Errorf("unexpected address %+v", addr)
	}

	field, err := fields.Create(ctx, models.CustomFieldInput{Index: patch.Set(3), Label: patch.Set("GSTIN")}.Assignments(org.ID))
	if err != nil {
		t.Fatalf("create custom field: %v", err)
	}
	if field.OrganizationID != org.ID || *field.Index != 3 || *field.Label != "GSTIN" || field.Value != nil {
		t.Errorf("unexpected custom field %+v", field)
	}

	listed, err := addresses.ListByOrganization(ctx, org.ID)
	if err != nil || len(listed) != 1 {
		t.Fatalf("list addresses: %v %v", listed, err)
	}

	empty, err := fields.ListByOrganization(ctx, 999)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v %v", empty, err)
	}

	_, err = addresses.Create(ctx, models.AddressInput{}.Assignments(999))
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("expected NotFound for orphan address, got %v", err)
	}
}

func TestOrganizationRepository_DriverErrors(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	repo := NewOrganizationRepository(database.New(mockDB, database.Postgres))
	ctx := context.Background()
	boom := errors.New("connection reset")

	mock.ExpectQuery(regexp.QuoteMeta(`FROM organizations WHERE id = $1`)).
		WithArgs(int64(1)).
		WillReturnError(boom)

	if _, err := repo.GetByID(ctx, 1); !errors.Is(err, boom) {
		t.Errorf("expected driver error, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE organizations SET "name" = $1 WHERE id = $2 RETURNING`)).
		WithArgs("Renamed", int64(2)).
		WillReturnError(boom)

	fields := models.OrganizationFields{Name: patch.Set("Renamed")}
	if _, err := repo.Update(ctx, 2, fields.Assignments()); !errors.Is(err, boom) {
		t.Errorf("expected driver error, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM organizations WHERE id = $1`)).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err := repo.Exists(ctx, 3)
	if err != nil || exists {
		t.Errorf("expected (false, nil), got (%v, %v)", exists, err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
