package models

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jbkit/internal/cryptox"
	"github.com/go-playground/validator/v10"
)

// ErrInvalidUser wraps validation failures of a user record.
var ErrInvalidUser = errors.New("invalid user")

// Column names of the user table.
const (
	ColID          = "id"
	ColCreated     = "created"
	ColUpdated     = "updated"
	ColDeleted     = "deleted"
	ColUserType    = "user_type"
	ColEmail       = "email"
	ColDOB         = "dob"
	ColName        = "name"
	ColPhoneNumber = "phone_number"
	ColPassword    = "password"
)

// UserColumns is the select list understood by User.ScanRow.
var UserColumns = []string{
	ColID, ColCreated, ColUpdated, ColDeleted, ColUserType,
	ColEmail, ColDOB, ColName, ColPhoneNumber, ColPassword,
}

// ProfileColumns are the columns a plain profile edit may overwrite.
var ProfileColumns = []string{ColName, ColDOB, ColPhoneNumber}

// User is one principal. Every variant shares this record and table; the
// discriminator decides which Variant it is treated as.
//
// The credential is only reachable through SetPassword, which stores a
// one-way hash, and IsCorrectPassword.
type User struct {
	Base
	Email       string
	Name        string
	PhoneNumber string
	DOB         *time.Time

	userType UserType
	password string
}

// NewUser returns an unsaved user of the normal variant.
func NewUser(email string) *User {
	return &User{Email: email, userType: UserTypeNormal}
}

// Password returns the stored credential hash.
func (u *User) Password() string {
	return u.password
}

// SetPassword hashes plaintext and stores the hash. The plaintext is not kept.
func (u *User) SetPassword(plaintext string) error {
	h, err := cryptox.HashPassword(plaintext)
	if err != nil {
		return err
	}
	u.password = h
	return nil
}

// SetPasswordWith is SetPassword with explicit hashing parameters.
func (u *User) SetPasswordWith(h *cryptox.Hasher, plaintext string) error {
	encoded, err := h.Hash(plaintext)
	if err != nil {
		return err
	}
	u.password = encoded
	return nil
}

// IsCorrectPassword reports whether plaintext matches the stored hash.
// A wrong password is false, never an error.
func (u *User) IsCorrectPassword(plaintext string) bool {
	if u.password == "" {
		return false
	}
	return cryptox.VerifyPassword(u.password, plaintext)
}

// Type returns the discriminator as stored, which may be outside the
// enumeration if it was written through SetTypeRaw.
func (u *User) Type() UserType {
	return u.userType
}

// SetType changes the variant. Any enumerated value may follow any other.
func (u *User) SetType(t UserType) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidUserType, t)
	}
	u.userType = t
	return nil
}

// SetTypeRaw assigns the discriminator without validation. Invalid values
// are rejected by the store on the next write, not here.
func (u *User) SetTypeRaw(v string) {
	u.userType = UserType(v)
}

// IsType reports whether the stored discriminator denotes t.
func (u *User) IsType(t UserType) bool {
	return t.Matches(u.userType)
}

func (u *User) String() string {
	return fmt.Sprintf("<User id=%d %s>", u.ID, u.Email)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("usertype", func(fl validator.FieldLevel) bool {
		return UserType(fl.Field().String()).Valid()
	})
	return v
}

type userRules struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
	Type     string `validate:"required,usertype"`
}

// Validate checks the fields required to create a user: a well-formed email,
// a credential and an enumerated type.
func (u *User) Validate() error {
	err := validate.Struct(userRules{
		Email:    u.Email,
		Password: u.password,
		Type:     string(u.userType),
	})
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return fmt.Errorf("%w: %s failed on %q", ErrInvalidUser, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidUser, err)
}

// RowScanner is implemented by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ScanRow reads a row selected with UserColumns.
func (u *User) ScanRow(r RowScanner) error {
	var (
		updated, deleted, dob   sql.NullTime
		email, name, phone, pwd sql.NullString
	)
	if err := r.Scan(&u.ID, &u.Created, &updated, &deleted, &u.userType,
		&email, &dob, &name, &phone, &pwd); err != nil {
		return err
	}
	u.Updated = timePtr(updated)
	u.Deleted = timePtr(deleted)
	u.DOB = timePtr(dob)
	u.Email = email.String
	u.Name = name.String
	u.PhoneNumber = phone.String
	u.password = pwd.String
	return nil
}

// InsertValues returns the full row for an insert. The identity is included
// only once assigned; created/updated/deleted are left to the store.
func (u *User) InsertValues() map[string]any {
	v := map[string]any{
		ColUserType:    u.userType,
		ColEmail:       nullString(u.Email),
		ColDOB:         nullTime(u.DOB),
		ColName:        nullString(u.Name),
		ColPhoneNumber: nullString(u.PhoneNumber),
		ColPassword:    nullString(u.password),
	}
	if u.ID != 0 {
		v[ColID] = u.ID
	}
	return v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
