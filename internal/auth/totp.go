package auth

import (
	"time"

	"github.com/pquerna/otp/totp"
)

// GenerateTOTP creates a new secret for account and returns it with the otpauth:// URL for authenticator apps.
func GenerateTOTP(issuer, account string) (secret, url string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// VerifyTOTP checks a one-time code against secret at time t, allowing one period of clock skew.
func VerifyTOTP(code, secret string, t time.Time) error {
	ok, err := totp.ValidateCustom(code, secret, t, totp.ValidateOpts{
		Period: 30,
		Skew:   1,
		Digits: 6,
	})
	if err != nil || !ok {
		return ErrInvalidTOTPCode
	}

	return nil
}
