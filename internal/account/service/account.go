// Package service implements the account lifecycle engine: registration,
// login and removal, including the NEW→ACTIVE activation handshake and the
// cleanup of registrations that were never activated in time.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/vaultmind/accountd/internal/account/domain"
	"github.com/vaultmind/accountd/internal/account/store"
	"github.com/vaultmind/accountd/pkg/cryptox"
	"github.com/vaultmind/accountd/pkg/jwtx"
	"github.com/vaultmind/accountd/pkg/slogx"
)

var emailPattern = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// Config carries the knobs the lifecycle engine needs. It is constructed once
// at startup and injected; the engine never reads ambient state.
type Config struct {
	Issuer             string // project name, used as token issuer and TOTP issuer
	TOTPEnabled        bool
	TOTP               cryptox.TOTPConfig
	SessionTTL         time.Duration // session token lifetime
	RegistrationWindow time.Duration // time a NEW account has to activate
	QRCodeSize         int           // provisioning QR edge length in pixels
}

// AccountService is the state machine for account registration, login and
// removal. It is stateless between calls; all durable state lives in Store.
type AccountService struct {
	Store  store.Store
	Signer jwtx.Signer
	Config Config
}

type RegisterRequest struct {
	Name     string
	Surname  string
	Username string
	Password string
	Email    string
}

// RegisterResult deliberately omits the session token: it is collected via
// Login. The TOTP secret is returned exactly once here, it cannot be
// recovered later.
type RegisterResult struct {
	QRCode     *string   // base64 PNG data URL, nil when 2FA is off
	Secret     *string   // raw TOTP secret, nil when 2FA is off
	ExpireTime string    // registration window as a human string, e.g. "5m"
	ExpireDate time.Time // absolute activation deadline
}

type LoginResult struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Token     string
	State     string // StateAccessGrant
}

type RemoveResult struct {
	Message string
	State   string // StateRemoved
}

// Register creates a NEW account with a bounded activation window. When 2FA
// is enabled system-wide a TOTP secret is generated and handed back along
// with a provisioning QR code.
func (s *AccountService) Register(ctx context.Context, req RegisterRequest) (*RegisterResult, error) {
	log := slogx.FromContext(ctx)

	if req.Name == "" || req.Surname == "" || req.Username == "" || req.Password == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name, surname, username, password and email are required", ErrValidation)
	}
	if !emailPattern.MatchString(req.Email) {
		return nil, fmt.Errorf("%w: email address is not valid", ErrValidation)
	}

	// Friendly check before inserting. Not atomic with the insert; the
	// unique index on username is what actually defends the invariant.
	_, err := s.Store.Accounts().FindByUsername(ctx, req.Username)
	switch {
	case err == nil:
		log.Info("registration with taken username", "username", req.Username)
		return nil, ErrUsernameTaken
	case !errors.Is(err, store.ErrNotFound):
		log.Error("username lookup failed", "err", err)
		return nil, ErrInternal
	}

	var totpKey *cryptox.TOTPKey
	if s.Config.TOTPEnabled {
		totpKey, err = cryptox.GenerateTOTP(s.Config.Issuer, req.Username, s.Config.TOTP)
		if err != nil {
			log.Error("TOTP secret generation failed", "err", err)
			return nil, ErrInternal
		}
	}

	hash, err := cryptox.HashPassword(req.Password)
	if err != nil {
		log.Error("password hashing failed", "err", err)
		return nil, ErrInternal
	}

	now := time.Now().UTC()
	expireAt := now.Add(s.Config.RegistrationWindow)

	account := domain.Account{
		Name:            req.Name,
		Surname:         req.Surname,
		Username:        req.Username,
		Email:           req.Email,
		PasswordHash:    hash,
		Status:          domain.StatusNew,
		AccountExpireAt: &expireAt,
	}
	if totpKey != nil {
		secret := totpKey.Secret
		account.TOTPSecret = &secret
	}

	id, err := s.Store.Accounts().Insert(ctx, account)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			// Lost the race between the lookup and the insert.
			return nil, ErrUsernameTaken
		}
		log.Error("account insert failed", "username", req.Username, "err", err)
		return nil, ErrInternal
	}

	token := s.issueToken(ctx, id, req.Username, false)
	if token == "" {
		// Token signing failed after the insert landed. Compensate by
		// removing the account again so the username is not burned.
		s.compensateRegistration(ctx, id, req.Username)
		return nil, ErrTokenIssuance
	}
	if _, err := s.Store.Accounts().FindAndUpdate(ctx, id, store.AccountUpdate{SessionToken: &token}); err != nil {
		log.Error("caching session token failed", "id", id, "err", err)
	}

	result := &RegisterResult{
		ExpireTime: fmt.Sprintf("%dm", int(s.Config.RegistrationWindow.Minutes())),
		ExpireDate: expireAt,
	}
	if totpKey != nil {
		secret := totpKey.Secret
		result.Secret = &secret
		if qr, err := totpKey.QRCodePNG(s.Config.QRCodeSize); err == nil {
			result.QRCode = &qr
		} else {
			log.Error("QR code rendering failed", "err", err)
		}
	}

	log.Info("account registered", "id", id, "username", req.Username, "expires_at", expireAt)
	return result, nil
}

// Login authenticates with password plus optional TOTP. A NEW account inside
// its window is activated and gets a fresh session token; a NEW account past
// its window is deleted. Active accounts get their cached token back.
func (s *AccountService) Login(ctx context.Context, username, password, authCode string) (*LoginResult, error) {
	log := slogx.FromContext(ctx)

	if username == "" || password == "" || (s.Config.TOTPEnabled && authCode == "") {
		return nil, fmt.Errorf("%w: authCode, username and password are required", ErrValidation)
	}

	account, err := s.Store.Accounts().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("login for unknown username", "username", username)
			return nil, ErrAccessFailed
		}
		log.Error("account lookup failed", "err", err)
		return nil, ErrInternal
	}

	if !cryptox.VerifyPassword(password, account.PasswordHash) {
		log.Warn("password verification failed", "username", username)
		return nil, ErrAccessFailed
	}

	if s.Config.TOTPEnabled {
		ok := account.TOTPSecret != nil && cryptox.VerifyTOTP(*account.TOTPSecret, authCode, s.Config.TOTP)
		if !ok {
			log.Warn("TOTP verification failed", "username", username)
			return nil, ErrTOTPDeclined
		}
	}

	now := time.Now().UTC()

	switch {
	case account.Status == domain.StatusNew && account.AccountExpireAt != nil && !account.AccountExpireAt.Before(now):
		// First login inside the window: activate. Signing failure aborts
		// without touching the record.
		token := s.issueToken(ctx, account.ID, account.Username, account.IsAdmin)
		if token == "" {
			return nil, ErrTokenIssuance
		}

		active := domain.StatusActive
		updated, err := s.Store.Accounts().FindAndUpdate(ctx, account.ID, store.AccountUpdate{
			Status:       &active,
			SessionToken: &token,
			LastLoginAt:  &now,
			ClearExpiry:  true,
		})
		if err != nil {
			log.Error("account activation failed", "id", account.ID, "err", err)
			return nil, ErrInternal
		}
		account = updated
		log.Info("account activated", "id", account.ID, "username", username)

	case account.Status == domain.StatusNew && account.AccountExpireAt != nil && account.AccountExpireAt.Before(now):
		// Never activated in time; terminal for this account.
		if _, err := s.Store.Accounts().Remove(ctx, account.ID); err != nil {
			log.Error("expired account cleanup failed", "id", account.ID, "err", err)
			return nil, ErrInternal
		}
		log.Info("expired registration removed", "id", account.ID, "username", username)
		return nil, ErrRegistrationExpired
	}

	if account.Status != domain.StatusActive {
		log.Warn("login to inactive account", "username", username, "status", account.Status)
		return nil, ErrAccountNotActive
	}

	// Re-login only refreshes last_login_at; the cached token is returned
	// as-is rather than resigned.
	if _, err := s.Store.Accounts().FindAndUpdate(ctx, account.ID, store.AccountUpdate{LastLoginAt: &now}); err != nil {
		log.Error("last login refresh failed", "id", account.ID, "err", err)
		return nil, ErrInternal
	}

	token := ""
	if account.SessionToken != nil {
		token = *account.SessionToken
	}

	return &LoginResult{
		Username:  account.Username,
		FirstName: account.Name,
		LastName:  account.Surname,
		Email:     account.Email,
		Token:     token,
		State:     StateAccessGrant,
	}, nil
}

// Remove deletes the account identified by verified token claims. Both id
// and username must match the same record.
func (s *AccountService) Remove(ctx context.Context, id, username string) (*RemoveResult, error) {
	log := slogx.FromContext(ctx)

	if id == "" || username == "" {
		return nil, fmt.Errorf("%w: missing attributes from token", ErrValidation)
	}

	account, err := s.Store.Accounts().FindByIDAndUsername(ctx, id, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			log.Warn("removal claims matched no account", "id", id, "username", username)
			return nil, ErrAccessFailed
		}
		log.Error("account lookup failed", "err", err)
		return nil, ErrInternal
	}

	if _, err := s.Store.Accounts().Remove(ctx, account.ID); err != nil {
		log.Error("account removal failed", "id", account.ID, "err", err)
		return nil, ErrInternal
	}

	log.Info("account removed", "id", account.ID, "username", username)
	return &RemoveResult{Message: "user removed", State: StateRemoved}, nil
}

// issueToken signs a session token for the account. Signing failures are
// logged and reported as an empty token; callers decide whether that aborts
// the flow.
func (s *AccountService) issueToken(ctx context.Context, id, username string, isAdmin bool) string {
	claims := jwtx.NewSessionClaims(id, username, isAdmin, s.Config.SessionTTL, s.Config.Issuer, time.Now().UTC())
	token, err := s.Signer.Sign(claims)
	if err != nil {
		slogx.FromContext(ctx).Error("session token signing failed", "id", id, "err", err)
		return ""
	}
	return token
}

// compensateRegistration is the one compensating-transaction path: undo a
// just-created account whose token could not be issued.
func (s *AccountService) compensateRegistration(ctx context.Context, id, username string) {
	log := slogx.FromContext(ctx)
	if _, err := s.Remove(ctx, id, username); err != nil {
		log.Error("registration compensation failed", "id", id, "username", username, "err", err)
	}
}
