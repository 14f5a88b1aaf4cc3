package upsert

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrNoConflictTarget        = errors.New("upsert: constraint or index elements must be specified")
	ErrAmbiguousConflictTarget = errors.New("upsert: specify either constraint or index elements, not both")
	ErrConstraintUnsupported   = errors.New("upsert: dialect does not support named constraint targets")
	ErrInvalidIdentifier       = errors.New("upsert: invalid identifier")
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func checkIdent(kind, name string) error {
	if !identRe.MatchString(name) {
		return fmt.Errorf("%w: %s %q", ErrInvalidIdentifier, kind, name)
	}
	return nil
}

// Conflict names the unique index or constraint used to detect an existing
// row. Exactly one of IndexElements and Constraint must be set.
type Conflict struct {
	// IndexElements are the columns of a unique index.
	IndexElements []string
	// IndexWhere is the predicate of a partial unique index, e.g.
	// "deleted IS NULL". Only valid together with IndexElements.
	IndexWhere string
	// Constraint is the name of a unique or exclusion constraint.
	Constraint string
}

// OnIndex is a conflict target on the given unique index columns.
func OnIndex(columns ...string) Conflict {
	return Conflict{IndexElements: columns}
}

// OnConstraint is a conflict target on a named constraint.
func OnConstraint(name string) Conflict {
	return Conflict{Constraint: name}
}

// Where restricts an index target to a partial index predicate.
func (c Conflict) Where(predicate string) Conflict {
	c.IndexWhere = predicate
	return c
}

func (c Conflict) validate(constraintsAllowed bool) error {
	switch {
	case len(c.IndexElements) == 0 && c.Constraint == "":
		return ErrNoConflictTarget
	case len(c.IndexElements) > 0 && c.Constraint != "":
		return ErrAmbiguousConflictTarget
	case c.Constraint != "":
		if c.IndexWhere != "" {
			return ErrAmbiguousConflictTarget
		}
		if !constraintsAllowed {
			return ErrConstraintUnsupported
		}
		return checkIdent("constraint", c.Constraint)
	}
	for _, col := range c.IndexElements {
		if err := checkIdent("index element", col); err != nil {
			return err
		}
	}
	return nil
}

// target renders the part following ON CONFLICT.
func (c Conflict) target() string {
	if c.Constraint != "" {
		return "ON CONSTRAINT " + c.Constraint
	}
	t := "(" + strings.Join(c.IndexElements, ", ") + ")"
	if c.IndexWhere != "" {
		t += " WHERE " + c.IndexWhere
	}
	return t
}

func (c Conflict) String() string {
	return c.target()
}
