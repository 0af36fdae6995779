package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors.
var (
	// ErrUserIDEmpty is returned when a user ID is empty or nil.
	ErrUserIDEmpty = fmt.Errorf("%w: user ID cannot be empty", ErrValidation)

	// ErrUserNameEmpty is returned when a user's display name is empty.
	ErrUserNameEmpty = fmt.Errorf("%w: user display name cannot be empty", ErrValidation)

	// ErrUserEmailEmpty is returned when a user's email is empty.
	ErrUserEmailEmpty = fmt.Errorf("%w: email cannot be empty", ErrValidation)

	// ErrUserEmailInvalid is returned when a user's email is malformed.
	ErrUserEmailInvalid = fmt.Errorf("%w: invalid email format", ErrValidation)

	// ErrPasswordTooShort is returned when a password has fewer than 12 characters.
	ErrPasswordTooShort = fmt.Errorf("%w: password must be at least 12 characters long", ErrValidation)

	// ErrPasswordTooLong is returned when a password exceeds bcrypt's 72-character limit.
	ErrPasswordTooLong = fmt.Errorf("%w: password must be at most 72 characters long", ErrValidation)

	// ErrPasswordEmpty is returned when neither a plaintext nor a hashed
	// password is present.
	ErrPasswordEmpty = fmt.Errorf("%w: password cannot be empty", ErrValidation)
)

// User represents a registered storefront customer. A user owns at most
// one cart and any number of orders; both reference the user by ID.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Password       string    `json:"-"` // Plaintext password, used transiently during registration
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a new User with the given email, display name, and
// password. It generates a new UUID for the user ID and sets the
// creation/update timestamps. Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(email, displayName, password string) (*User, error) {
	user := &User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: displayName,
		Password:    password, // Must be hashed before storage
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.DisplayName == "" {
		return ErrUserNameEmpty
	}

	if u.Email == "" {
		return ErrUserEmailEmpty
	}

	if !validEmailFormat(u.Email) {
		return ErrUserEmailInvalid
	}

	// During registration a plaintext password is present and its length
	// is checked; stored users carry only the hash.
	if u.Password != "" {
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		return ErrPasswordEmpty
	}

	return nil
}

// validEmailFormat performs basic structural validation of an email
// address: a non-edge '@' followed by a domain containing an interior dot.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
