package repositories

import (
	"strings"

	apperrors "riffraff/internal/pkg/errors"
	"riffraff/internal/pkg/patch"
	"riffraff/internal/platform/database"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// insertQuery builds a sparse INSERT writing only the given assignments and
// returning the stored row.
func insertQuery(d database.Dialect, table string, assignments []patch.Assignment, returning string) (string, []interface{}) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)

	if len(assignments) == 0 {
		b.WriteString(" DEFAULT VALUES")
	} else {
		cols := make([]string, len(assignments))
		marks := make([]string, len(assignments))
		for i, a := range assignments {
			cols[i] = database.Quote(a.Column)
			marks[i] = "?"
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(cols, ", "))
		b.WriteString(") VALUES (")
		b.WriteString(strings.Join(marks, ", "))
		b.WriteString(")")
	}

	b.WriteString(" RETURNING ")
	b.WriteString(returning)

	return d.Rebind(b.String()), values(assignments)
}

// updateQuery builds an UPDATE touching only the given columns of row id and
// returning the stored row. assignments must not be empty.
func updateQuery(d database.Dialect, table string, id int64, assignments []patch.Assignment, returning string) (string, []interface{}) {
	sets := make([]string, len(assignments))
	for i, a := range assignments {
		sets[i] = database.Quote(a.Column) + " = ?"
	}

	query := "UPDATE " + table + " SET " + strings.Join(sets, ", ") + " WHERE id = ? RETURNING " + returning
	args := append(values(assignments), id)
	return d.Rebind(query), args
}

func values(assignments []patch.Assignment) []interface{} {
	args := make([]interface{}, len(assignments))
	for i, a := range assignments {
		args[i] = a.Value
	}
	return args
}

// translate maps driver constraint failures onto the error taxonomy. parent
// names the entity a foreign key points at.
func translate(err error, entity, parent string) error {
	if column, ok := database.UniqueViolation(err); ok {
		return apperrors.NewConflict(entity, column)
	}
	if parent != "" && database.ForeignKeyViolation(err) {
		return apperrors.NewNotFound(parent)
	}
	return err
}
