package domain

import "time"

// Status is the lifecycle state of an account.
type Status string

const (
	// StatusNew is assigned at registration. The account must log in before
	// its registration window closes or it is deleted on the next attempt.
	StatusNew Status = "NEW"

	// StatusActive is reached on the first successful login of a NEW account.
	StatusActive Status = "ACTIVE"

	// StatusDeactivated and StatusDeleted are declared states with no
	// engine-driven transition into them. They are reachable only by direct
	// store manipulation and are rejected at login.
	StatusDeactivated Status = "DEACTIVATE"
	StatusDeleted     Status = "DELETED"
)

type Account struct {
	ID       string
	Name     string
	Surname  string
	Username string // unique across accounts
	Email    string

	PasswordHash string  // bcrypt encoded
	TOTPSecret   *string // base32 secret, set only when 2FA was enabled at registration
	SessionToken *string // cached signed token, reissued only on activation

	Status          Status
	AccountExpireAt *time.Time // set iff Status == NEW
	LastLoginAt     *time.Time
	IsAdmin         bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
