package helpers

// CredentialInputProvider specifies the interface for gathering username and password
// credentials to use when authenticating with the identity provider.
type CredentialInputProvider interface {
	ReadInput(user, password string) (string, string, error)
}

// MfaInputProvider specifies the interface for getting MFA values (typically OTP codes)
// during an identity provider MFA challenge.
type MfaInputProvider interface {
	ReadInput() (string, error)
}

// SelectionInputProvider specifies the interface for choosing one item from an
// enumerated list, used for interactive role and profile selection.
type SelectionInputProvider interface {
	ReadInput(prompt string, choices []string) (int, error)
}
