package models

import (
	"errors"
	"fmt"
	"regexp"
)

// DefaultUserTable is the table used when an application does not name one.
const DefaultUserTable = "users"

// RelationAssets is the name of the linked-assets relationship.
const RelationAssets = "assets"

// Relation describes a one-to-many relationship from a user to rows of
// another table.
type Relation struct {
	Name       string
	Table      string
	ForeignKey string
}

// AssetsRelation links a user to the assets it created.
var AssetsRelation = Relation{Name: RelationAssets, Table: AssetTable, ForeignKey: AssetColCreatedBy}

// Capabilities is the static per-variant configuration. A nil relation means
// the variant does not have it at all.
type Capabilities struct {
	Assets *Relation
}

func (c Capabilities) relation(name string) (Relation, bool) {
	switch name {
	case RelationAssets:
		if c.Assets != nil {
			return *c.Assets, true
		}
	}
	return Relation{}, false
}

// Schema maps every variant to its capabilities and names the user table.
// It is fixed when the application is wired and not changed afterwards.
type Schema struct {
	table    string
	variants map[UserType]Capabilities
}

type SchemaOption func(*Schema)

// WithAssets enables the linked-assets relationship for the given variants.
func WithAssets(types ...UserType) SchemaOption {
	return func(s *Schema) {
		for _, t := range types {
			c := s.variants[t]
			rel := AssetsRelation
			c.Assets = &rel
			s.variants[t] = c
		}
	}
}

var tableRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var ErrInvalidSchema = errors.New("invalid schema")

// NewSchema builds a schema for table. Every enumerated variant is
// registered; none has relationships unless an option enables one.
func NewSchema(table string, opts ...SchemaOption) (*Schema, error) {
	if table == "" {
		table = DefaultUserTable
	}
	if !tableRe.MatchString(table) {
		return nil, fmt.Errorf("%w: table %q", ErrInvalidSchema, table)
	}
	s := &Schema{table: table, variants: make(map[UserType]Capabilities)}
	for _, t := range UserTypes() {
		s.variants[t] = Capabilities{}
	}
	for _, opt := range opts {
		opt(s)
	}
	for t := range s.variants {
		if !t.Valid() {
			return nil, fmt.Errorf("%w: %w: %q", ErrInvalidSchema, ErrInvalidUserType, t)
		}
	}
	return s, nil
}

// MustSchema is NewSchema for package-level declarations.
func MustSchema(table string, opts ...SchemaOption) *Schema {
	s, err := NewSchema(table, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) Table() string {
	return s.table
}

// Capabilities returns the configuration of variant t.
func (s *Schema) Capabilities(t UserType) (Capabilities, bool) {
	c, ok := s.variants[t]
	return c, ok
}

// Relation returns the named relationship of variant t, if it has one.
func (s *Schema) Relation(t UserType, name string) (Relation, bool) {
	c, ok := s.variants[t]
	if !ok {
		return Relation{}, false
	}
	return c.relation(name)
}

// HasAssets reports whether variant t has the linked-assets relationship.
func (s *Schema) HasAssets(t UserType) bool {
	_, ok := s.Relation(t, RelationAssets)
	return ok
}
