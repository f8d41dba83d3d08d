package okta

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/identity"
	"github.com/oktatools/okta-creds/shared"
)

const (
	// MfaFactorPush is the Okta factor type for push notification MFA.
	MfaFactorPush = "push"
	// MfaFactorTotp is the Okta factor type for app-generated (TOTP) code MFA.
	MfaFactorTotp = "token:software:totp"
	// MfaFactorHotp is the Okta factor type for hardware token code MFA.
	MfaFactorHotp = "token:hotp"
	// MfaFactorToken is the Okta factor type for generic OTP token MFA.
	MfaFactorToken = "token"
)

// ErrMfaNotConfigured is the error returned when the identity provider demands MFA but no
// usable factor or token source is available.
var ErrMfaNotConfigured = errors.New("MFA required, but no supported factor is configured")

// SamlClient is the interface for clients capable of authenticating a user with the
// identity provider and returning the SAML assertion document used with the AWS
// AssumeRoleWithSAML API call.
type SamlClient interface {
	identity.Provider
	Authenticate() error
	AuthenticateWithContext(ctx context.Context) error
	SetCookieJar(jar http.CookieJar)
	SamlAssertion() (*credentials.SamlAssertion, error)
	SamlAssertionWithContext(ctx context.Context) (*credentials.SamlAssertion, error)
}

// AuthenticationConfig holds the properties used to authenticate an identity with the
// Okta organization.
type AuthenticationConfig struct {
	// Username is the username of the principal to authenticate.
	Username string
	// Password is the password of the principal to authenticate.
	Password string
	// MfaTokenCode is a static, or obtained by means outside of the client, MFA OTP code.
	// When set, it is submitted exactly once; a rejection is a fatal authentication error.
	MfaTokenCode string
	// MfaFactor is the preferred Okta factor type (see the MfaFactor* constants), used to
	// disambiguate when the account has more than one eligible factor enrolled.
	MfaFactor string
	// MfaTokenProvider defines a function which the client can call when an
	// authentication flow requiring MFA OTP codes is detected.
	MfaTokenProvider func() (string, error)
	// CredentialInputProvider defines a function which the client can call to gather
	// missing username and password values.
	CredentialInputProvider func(user, password string) (string, string, error)
	// UserAgent overrides the User-Agent header sent on requests to the identity provider.
	UserAgent string
	// Logger is the logging interface to use with the client.
	Logger shared.Logger
}

type mfaAmbiguousError struct {
	factors []string
}

// Error lists the eligible factor types so the caller can disambiguate with an explicit
// factor preference instead of the client guessing.
func (e *mfaAmbiguousError) Error() string {
	return fmt.Sprintf("multiple MFA factors available (%s), set a factor preference to choose one",
		strings.Join(e.factors, ", "))
}

type apiError struct {
	Code    string `json:"errorCode"`
	Message string `json:"errorSummary"`
	Id      string `json:"errorId"`
}

func (e *apiError) Error() string {
	return e.Message
}
