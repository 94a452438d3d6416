package store

import (
	"context"
	"errors"
	"time"

	"github.com/vaultmind/accountd/internal/account/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. The engine only ever touches the accounts collection, but
// keeping the sub-repository shape leaves room for more without churn.
type Store interface {
	Accounts() Accounts

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// AccountUpdate is a partial merge applied by FindAndUpdate. Nil fields are
// left untouched; ClearExpiry removes the registration deadline.
type AccountUpdate struct {
	Status       *domain.Status
	SessionToken *string
	LastLoginAt  *time.Time
	ClearExpiry  bool
}

type Accounts interface {
	// Insert persists a new account, assigns a fresh id and returns it.
	// Returns ErrAlreadyExists if the username is already taken (the schema
	// carries a unique constraint, so the check-then-insert race in the
	// engine cannot corrupt uniqueness).
	Insert(ctx context.Context, a domain.Account) (string, error)

	// FindByUsername returns ErrNotFound when no account matches.
	FindByUsername(ctx context.Context, username string) (domain.Account, error)

	// FindByIDAndUsername matches only when both fields identify the same
	// record. Used by removal to defend against stale or forged claims.
	FindByIDAndUsername(ctx context.Context, id, username string) (domain.Account, error)

	// FindAndUpdate atomically merges upd into the record identified by id
	// and returns the post-update record, or ErrNotFound if id matched
	// nothing.
	FindAndUpdate(ctx context.Context, id string, upd AccountUpdate) (domain.Account, error)

	// Remove deletes the record and reports whether a record was deleted.
	Remove(ctx context.Context, id string) (bool, error)
}
