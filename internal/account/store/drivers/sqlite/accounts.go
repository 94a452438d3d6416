package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/vaultmind/accountd/internal/account/domain"
	"github.com/vaultmind/accountd/internal/account/store"
	"github.com/vaultmind/accountd/pkg/idx"
)

const accountColumns = `id, name, surname, username, email, password_hash,
	totp_secret, session_token, status, account_expire_at, last_login_at,
	is_admin, created_at, updated_at`

type accountsRepo struct {
	db *sql.DB
}

func (r *accountsRepo) Insert(ctx context.Context, a domain.Account) (string, error) {
	id := idx.New().String()
	now := time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		a.Name,
		a.Surname,
		a.Username,
		a.Email,
		a.PasswordHash,
		mapOptionalString(a.TOTPSecret),
		mapOptionalString(a.SessionToken),
		string(a.Status),
		mapOptionalTime(a.AccountExpireAt),
		mapOptionalTime(a.LastLoginAt),
		a.IsAdmin,
		now,
		now,
	)
	if err != nil {
		return "", mapConstraint(err)
	}
	return id, nil
}

func (r *accountsRepo) FindByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE username = ?`, username)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

func (r *accountsRepo) FindByIDAndUsername(ctx context.Context, id, username string) (domain.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = ? AND username = ?`, id, username)

	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}
	return a, nil
}

// FindAndUpdate merges upd into the row and returns the post-update record.
// The update and re-read run in one transaction so concurrent writers to the
// same id serialize cleanly.
func (r *accountsRepo) FindAndUpdate(ctx context.Context, id string, upd store.AccountUpdate) (domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Account{}, err
	}
	defer func() { _ = tx.Rollback() }()

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*upd.Status))
	}
	if upd.SessionToken != nil {
		sets = append(sets, "session_token = ?")
		args = append(args, *upd.SessionToken)
	}
	if upd.LastLoginAt != nil {
		sets = append(sets, "last_login_at = ?")
		args = append(args, *upd.LastLoginAt)
	}
	if upd.ClearExpiry {
		sets = append(sets, "account_expire_at = NULL")
	}
	args = append(args, id)

	res, err := tx.ExecContext(ctx, `
		UPDATE accounts SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return domain.Account{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Account{}, err
	}
	if affected == 0 {
		return domain.Account{}, store.ErrNotFound
	}

	row := tx.QueryRowContext(ctx, `
		SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id)
	a, err := scanAccount(row)
	if err != nil {
		return domain.Account{}, mapNotFound(err)
	}

	if err := tx.Commit(); err != nil {
		return domain.Account{}, err
	}
	return a, nil
}

func (r *accountsRepo) Remove(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
