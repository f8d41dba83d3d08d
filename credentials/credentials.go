package credentials

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
)

// ExpirationMargin is the buffer subtracted from a credential's expiration time when
// deciding whether the credential is still usable.  Credentials inside the margin are
// proactively refreshed instead of being handed to a caller who may outlive them.
const ExpirationMargin = 5 * time.Minute

// Credentials is the temporary credential type handled by okta-creds.  The ini tags
// describe the stored form of a credential profile record in the AWS shared credentials
// file, including the `expiration` key (RFC3339) which allows validity checking without
// any network calls.  The env tags name the environment variables used for the console
// output destination.
type Credentials struct {
	AccessKeyId     string    `ini:"aws_access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string    `ini:"aws_secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
	Token           string    `ini:"aws_session_token,omitempty" env:"AWS_SESSION_TOKEN,omitempty"`
	Expiration      time.Time `ini:"expiration" env:"-"`
	ProviderName    string    `ini:"-" env:"-"`
}

// Env returns a map of environment variable names and values which can be used to set
// the credentials as environment variables.
func (c *Credentials) Env() map[string]string {
	m := make(map[string]string)
	m["AWS_ACCESS_KEY_ID"] = c.AccessKeyId
	m["AWS_SECRET_ACCESS_KEY"] = c.SecretAccessKey

	if len(c.Token) > 0 {
		m["AWS_SESSION_TOKEN"] = c.Token
		m["AWS_SECURITY_TOKEN"] = c.Token
	}

	return m
}

// Expired reports whether the credentials have passed (or reached) the point where they
// should be renewed, applying the provided safety margin.  A credential whose expiration
// is exactly `now + margin` counts as expired, favoring refresh over serving stale keys.
// Credentials with missing keys or a zero expiration are always expired.
func (c *Credentials) Expired(margin time.Duration) bool {
	if c == nil || !c.Value().HasKeys() || c.Expiration.IsZero() {
		return true
	}
	return !time.Now().Before(c.Expiration.Add(-1 * margin))
}

// Value returns an aws.Credentials type for programmatic use.
func (c *Credentials) Value() aws.Credentials {
	return aws.Credentials{
		AccessKeyID:     c.AccessKeyId,
		SecretAccessKey: c.SecretAccessKey,
		SessionToken:    c.Token,
		Source:          c.ProviderName,
		Expires:         c.Expiration,
		CanExpire:       true,
	}
}

// StsCredentials returns an AWS sts.Credentials type for programmatic use. Also suitable for long term caching.
func (c *Credentials) StsCredentials() *types.Credentials {
	return &types.Credentials{
		AccessKeyId:     aws.String(c.AccessKeyId),
		Expiration:      aws.Time(c.Expiration),
		SecretAccessKey: aws.String(c.SecretAccessKey),
		SessionToken:    aws.String(c.Token),
	}
}

// FromValue provides a way to take an aws.Credentials type and convert it to a Credentials type.
func FromValue(v aws.Credentials) *Credentials {
	return &Credentials{
		AccessKeyId:     v.AccessKeyID,
		SecretAccessKey: v.SecretAccessKey,
		Token:           v.SessionToken,
		ProviderName:    v.Source,
		Expiration:      v.Expires,
	}
}

// FromStsCredentials provides a way to take an AWS sts.Credentials and convert it to a Credentials type.
// Since credential provider information is not a native part of the AWS sts.Credentials type, it should
// be set manually in the ProviderName field on the returned object, using data sourced elsewhere.
func FromStsCredentials(v *types.Credentials) *Credentials {
	c := new(Credentials)

	if v == nil {
		return c
	}

	if v.AccessKeyId != nil {
		c.AccessKeyId = *v.AccessKeyId
	}

	if v.SecretAccessKey != nil {
		c.SecretAccessKey = *v.SecretAccessKey
	}

	if v.SessionToken != nil {
		c.Token = *v.SessionToken
	}

	if v.Expiration != nil {
		c.Expiration = *v.Expiration
	}

	return c
}
