package models

import "fmt"

// Variant is the behavioral view of a user selected by its discriminator.
// All variants share the same record and table.
type Variant interface {
	Kind() UserType
	Record() *User
}

// NormalUser is the default variant.
type NormalUser struct{ *User }

func (NormalUser) Kind() UserType   { return UserTypeNormal }
func (v NormalUser) Record() *User { return v.User }

// AdminUser is the administrative variant.
type AdminUser struct{ *User }

func (AdminUser) Kind() UserType   { return UserTypeAdmin }
func (v AdminUser) Record() *User { return v.User }

var variants = map[UserType]func(*User) Variant{
	UserTypeNormal: func(u *User) Variant { return NormalUser{u} },
	UserTypeAdmin:  func(u *User) Variant { return AdminUser{u} },
}

// Variant dispatches on the discriminator. A value outside the enumeration
// is a data-integrity violation and yields ErrInvalidUserType.
func (u *User) Variant() (Variant, error) {
	mk, ok := variants[u.userType]
	if !ok {
		return nil, fmt.Errorf("%w: %q on user %d", ErrInvalidUserType, u.userType, u.ID)
	}
	return mk(u), nil
}
