package dbx

import (
	"fmt"

	"github.com/Masterminds/squirrel"
)

// Dialect captures the per-store differences the repositories care about.
type Dialect struct {
	// Name is the short name used in configuration ("postgres", "sqlite").
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// Goose is the dialect name understood by goose.
	Goose string
	// Placeholder is the bind-parameter format for squirrel builders.
	Placeholder squirrel.PlaceholderFormat
	// ConstraintTargets reports support for ON CONFLICT ON CONSTRAINT.
	ConstraintTargets bool
}

var (
	Postgres = Dialect{
		Name:              "postgres",
		Driver:            "pgx",
		Goose:             "pgx",
		Placeholder:       squirrel.Dollar,
		ConstraintTargets: true,
	}

	SQLite = Dialect{
		Name:        "sqlite",
		Driver:      "sqlite",
		Goose:       "sqlite3",
		Placeholder: squirrel.Question,
	}
)

// DialectByName resolves a configured dialect name.
func DialectByName(name string) (Dialect, error) {
	switch name {
	case Postgres.Name, "pgx", "postgresql":
		return Postgres, nil
	case SQLite.Name, "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unknown database dialect %q", name)
	}
}
