package config

// OktaCredentials contains the secret material used to authenticate with the Okta
// organization. The password value is the raw value, any decryption/unobfuscation must
// be done externally. Values typically arrive from environment variables or command
// line flags, but an ini key is supported for parity with the other profile settings.
type OktaCredentials struct {
	Password string `ini:"password,omitempty" env:"OKTA_PASSWORD"`
}

// MergeIn takes the credential settings in the provided "creds" argument and applies them to the existing
// OktaCredentials object.  New values are applied only if they are not the field type's zero value, the last
// (non-zero) value takes priority.
func (c *OktaCredentials) MergeIn(creds ...*OktaCredentials) {
	for _, cr := range creds {
		if len(cr.Password) > 0 {
			c.Password = cr.Password
		}
	}
}
