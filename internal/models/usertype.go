package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ErrInvalidUserType is returned for discriminator values outside the
// UserType enumeration.
var ErrInvalidUserType = errors.New("invalid user type")

// UserType is the discriminator of the user table.
type UserType string

const (
	UserTypeNormal UserType = "normal"
	UserTypeAdmin  UserType = "admin"
)

// UserTypes lists every enumerated value in declaration order.
func UserTypes() []UserType {
	return []UserType{UserTypeNormal, UserTypeAdmin}
}

// ParseUserType returns the enumerated value for s.
func ParseUserType(s string) (UserType, error) {
	t := UserType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidUserType, s)
	}
	return t, nil
}

func (t UserType) Valid() bool {
	switch t {
	case UserTypeNormal, UserTypeAdmin:
		return true
	}
	return false
}

func (t UserType) String() string {
	return string(t)
}

// Matches reports whether a stored discriminator value denotes t. Stored
// values may be the enum member itself or its underlying string, depending on
// the path that wrote them, and both forms compare equal.
func (t UserType) Matches(v any) bool {
	switch x := v.(type) {
	case UserType:
		return x == t
	case *UserType:
		return x != nil && *x == t
	case string:
		return x == string(t)
	case []byte:
		return string(x) == string(t)
	case fmt.Stringer:
		return x.String() == string(t)
	}
	return false
}

// Value implements driver.Valuer. Invalid values are passed through so that
// the store's enum/check constraint is what rejects them.
func (t UserType) Value() (driver.Value, error) {
	return string(t), nil
}

// Scan implements sql.Scanner.
func (t *UserType) Scan(src any) error {
	switch v := src.(type) {
	case string:
		*t = UserType(v)
	case []byte:
		*t = UserType(v)
	case nil:
		*t = ""
	default:
		return fmt.Errorf("cannot scan %T into UserType", src)
	}
	return nil
}
