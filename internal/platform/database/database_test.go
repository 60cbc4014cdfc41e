package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"riffraff/internal/platform/config"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		url     string
		dialect Dialect
		driver  string
		dsn     string
		memory  bool
	}{
		{"sqlite://riffraff.db", SQLite, "sqlite3", "riffraff.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL", false},
		{"sqlite:///./app.db", SQLite, "sqlite3", "./app.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL", false},
		{"sqlite:////tmp/app.db", SQLite, "sqlite3", "/tmp/app.db?_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL", false},
		{"sqlite://:memory:", SQLite, "sqlite3", ":memory:?_foreign_keys=1&_busy_timeout=5000", true},
		{"file:app.db?cache=shared", SQLite, "sqlite3", "file:app.db?cache=shared&_foreign_keys=1&_busy_timeout=5000&_journal_mode=WAL", false},
		{"postgres://u:p@localhost/riffraff", Postgres, "pgx", "postgres://u:p@localhost/riffraff", false},
		{"postgresql://localhost/riffraff", Postgres, "pgx", "postgresql://localhost/riffraff", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			dialect, driver, dsn, memory, err := parseURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, dialect)
			assert.Equal(t, tt.driver, driver)
			assert.Equal(t, tt.dsn, dsn)
			assert.Equal(t, tt.memory, memory)
		})
	}

	for _, bad := range []string{"mysql://localhost/x", "sqlite://", ""} {
		_, _, _, _, err := parseURL(bad)
		assert.Error(t, err, bad)
	}
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM t WHERE a = ? AND b = ?"
	assert.Equal(t, q, SQLite.Rebind(q))
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", Postgres.Rebind(q))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, `"index"`, Quote("index"))
	assert.Equal(t, `"a""b"`, Quote(`a"b`))
}

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(config.DatabaseConfig{URL: "sqlite://:memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openMemory(t)
	ctx := context.Background()

	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var versions int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&versions))
	assert.Equal(t, 1, versions)
}

func TestMigrate_OrganizationDefaults(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(context.Background(), db))

	res, err := db.Exec("INSERT INTO organizations (name) VALUES ('Acme')")
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)

	var (
		month, currency, dateFormat, sep, lang, currencyID, symbol string
		precision                                                  int
		isDefault, isActive                                        bool
		created                                                    int64
	)
	err = db.QueryRow(`SELECT fiscal_year_start_month, currency_code, date_format, field_separator,
		language_code, currency_id, currency_symbol, price_precision, is_default_org, is_org_active,
		account_created_date FROM organizations WHERE id = ?`, id).
		Scan(&month, &currency, &dateFormat, &sep, &lang, &currencyID, &symbol, &precision, &isDefault, &isActive, &created)
	require.NoError(t, err)

	assert.Equal(t, "Apr", month)
	assert.Equal(t, "INR", currency)
	assert.Equal(t, "ISO8601", dateFormat)
	assert.Equal(t, "-", sep)
	assert.Equal(t, "En-In", lang)
	assert.Equal(t, "INR", currencyID)
	assert.Equal(t, "Rs", symbol)
	assert.Equal(t, 2, precision)
	assert.True(t, isDefault)
	assert.True(t, isActive)
	assert.NotZero(t, created)
}

func TestConstraintViolations(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(context.Background(), db))

	insert := "INSERT INTO user_accounts (username, email, password) VALUES (?, ?, ?)"
	_, err := db.Exec(insert, "alice", "alice@example.com", "x")
	require.NoError(t, err)

	_, err = db.Exec(insert, "alice2", "alice@example.com", "x")
	column, ok := UniqueViolation(err)
	assert.True(t, ok)
	assert.Equal(t, "email", column)

	_, err = db.Exec("INSERT INTO addresses (organization_id, city) VALUES (999, 'Pune')")
	assert.True(t, ForeignKeyViolation(err))

	_, ok = UniqueViolation(assert.AnError)
	assert.False(t, ok)
	assert.False(t, ForeignKeyViolation(nil))
}
