package cryptox

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTPConfig carries the shared-secret parameters. The zero value is not
// usable; construct via the app config.
type TOTPConfig struct {
	Digits int           // passcode length (default 6)
	Period time.Duration // time step (default 30s)
	Skew   uint          // adjacent steps accepted on verify (default 0, exact step)
}

// TOTPKey is a freshly generated shared secret plus its provisioning URL.
type TOTPKey struct {
	Secret string // base32 encoded
	URL    string // otpauth:// provisioning URI

	key *otp.Key
}

// GenerateTOTP creates a new random TOTP secret bound to issuer/account.
func GenerateTOTP(issuer, account string, cfg TOTPConfig) (*TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      uint(cfg.Period.Seconds()),
		Digits:      otp.Digits(cfg.Digits),
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("cryptox: failed to generate TOTP key: %w", err)
	}

	return &TOTPKey{Secret: key.Secret(), URL: key.String(), key: key}, nil
}

// QRCodePNG renders the provisioning URI as a scannable PNG, returned as a
// base64 data URL for direct embedding in a client.
func (k *TOTPKey) QRCodePNG(size int) (string, error) {
	img, err := k.key.Image(size, size)
	if err != nil {
		return "", fmt.Errorf("cryptox: failed to render QR image: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("cryptox: failed to encode QR image: %w", err)
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// VerifyTOTP checks code against the passcode derived from secret at the
// current time step. Malformed secrets count as a failed verification.
func VerifyTOTP(secret, code string, cfg TOTPConfig) bool {
	ok, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    uint(cfg.Period.Seconds()),
		Skew:      cfg.Skew,
		Digits:    otp.Digits(cfg.Digits),
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && ok
}
