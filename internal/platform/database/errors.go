package database

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// UniqueViolation reports whether err is a unique-constraint failure and,
// when the driver says so, which column caused it.
func UniqueViolation(err error) (column string, ok bool) {
	var se sqlite3.Error
	if errors.As(err, &se) {
		if se.ExtendedCode != sqlite3.ErrConstraintUnique && se.ExtendedCode != sqlite3.ErrConstraintPrimaryKey {
			return "", false
		}
		// UNIQUE constraint failed: user_accounts.email
		msg := se.Error()
		if i := strings.LastIndex(msg, "."); i >= 0 {
			column = msg[i+1:]
		}
		return column, true
	}

	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgUniqueViolation {
		// user_accounts_email_key
		column = strings.TrimSuffix(pe.ConstraintName, "_key")
		if pe.TableName != "" {
			column = strings.TrimPrefix(column, pe.TableName+"_")
		}
		return column, true
	}

	return "", false
}

func ForeignKeyViolation(err error) bool {
	var se sqlite3.Error
	if errors.As(err, &se) {
		return se.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}

	var pe *pgconn.PgError
	return errors.As(err, &pe) && pe.Code == pgForeignKeyViolation
}
