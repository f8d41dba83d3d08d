package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/oktatools/okta-creds/shared"
)

const (
	// SamlRoleProviderName is the name given to this AWS credential provider.
	SamlRoleProviderName = "samlRoleProvider"
	// AssumeRoleDurationMin is the minimum allowed Assume Role credential duration by the AWS API.
	AssumeRoleDurationMin = 15 * time.Minute
	// AssumeRoleDurationMax is the maximum allowed Assume Role credential duration by the AWS API.
	AssumeRoleDurationMax = 12 * time.Hour
	// AssumeRoleDurationDefault is a sensible default value for Assume Role credential duration.
	AssumeRoleDurationDefault = 1 * time.Hour
)

// samlRoleProvider contains the settings to perform the AssumeRoleWithSAML operation in the AWS API.
// An optional Cache provides the ability to cache the credentials in order to limit API calls.
type samlRoleProvider struct {
	Client        stsApi
	Cache         CredentialCacher
	Duration      time.Duration
	ExpiryWindow  time.Duration
	Logger        shared.Logger
	RoleArn       string
	PrincipalArn  string
	samlAssertion *SamlAssertion
}

// NewSamlRoleProvider configures a default samlRoleProvider to allow Assume Role using SAML. The
// roleArn and principalArn arguments identify the role binding to assume, and saml is the base64
// encoded SAML assertion returned by the identity provider.  The credential duration is set to
// AssumeRoleDurationDefault, and the ExpiryWindow to ExpirationMargin.
func NewSamlRoleProvider(cfg aws.Config, roleArn, principalArn string, saml *SamlAssertion) *samlRoleProvider {
	return &samlRoleProvider{
		Client:        sts.NewFromConfig(cfg),
		Duration:      AssumeRoleDurationDefault,
		ExpiryWindow:  ExpirationMargin,
		Logger:        new(shared.DefaultLogger),
		RoleArn:       roleArn,
		PrincipalArn:  principalArn,
		samlAssertion: saml,
	}
}

// SamlAssertion is the implementation of the SamlRoleProvider interface for setting the SAML assertion used for the
// Assume Role with SAML operation.
func (p *samlRoleProvider) SamlAssertion(saml *SamlAssertion) {
	p.samlAssertion = saml
}

// SetRole updates the role and SAML principal ARN pair used for the Assume Role with SAML
// operation.  The role binding is often not known until the assertion has been fetched and
// resolved, after the provider was constructed.
func (p *samlRoleProvider) SetRole(roleArn, principalArn string) {
	p.RoleArn = roleArn
	p.PrincipalArn = principalArn
}

// ValidateDuration checks the configured credential duration against the limits of the STS API
// before any network call is made.  An unset (zero) duration falls back to the default, while an
// explicitly configured out-of-range value is a configuration error.
func (p *samlRoleProvider) ValidateDuration() error {
	if p.Duration == 0 {
		p.Duration = AssumeRoleDurationDefault
		return nil
	}

	if p.Duration < AssumeRoleDurationMin || p.Duration > AssumeRoleDurationMax {
		return fmt.Errorf("credential duration %s outside allowed range [%s, %s]",
			p.Duration, AssumeRoleDurationMin, AssumeRoleDurationMax)
	}
	return nil
}

// Retrieve implements the AWS aws.CredentialsProvider interface to return a set of Assume Role
// with SAML credentials.  If the provider is configured to use a cache, it will be consulted
// before any network activity.  Expired (or margin-expired) cached credentials trigger a refresh
// via the STS API, and the fresh credentials are stored back in the cache.
func (p *samlRoleProvider) Retrieve(ctx context.Context) (aws.Credentials, error) {
	var err error
	creds := p.checkCache()

	if creds.Expired(p.ExpiryWindow) {
		p.Logger.Debugf("Detected expired or unset saml role credentials, refreshing")
		creds, err = p.retrieve(ctx)
		if err != nil {
			return aws.Credentials{}, err
		}

		if p.Cache != nil {
			if err = p.Cache.Store(creds); err != nil {
				p.Logger.Debugf("error caching credentials: %v", err)
			}
		}
	}

	v := creds.Value()
	v.Source = SamlRoleProviderName
	return v, nil
}

// ClearCache removes any cached credentials held by this provider's cache.
func (p *samlRoleProvider) ClearCache() error {
	if p.Cache != nil {
		p.Logger.Debugf("clearing cached saml role credentials")
		return p.Cache.Clear()
	}
	return nil
}

// checkCache will load credentials from cache.  If a cache is not configured, this method will
// return an empty and expired set of credentials.
func (p *samlRoleProvider) checkCache() *Credentials {
	creds := new(Credentials)

	if p.Cache != nil {
		if creds = p.Cache.Load(); creds.Value().HasKeys() {
			p.Logger.Debugf("loaded sts credentials from cache")
		} else {
			creds.Expiration = time.Unix(0, 0)
		}
	}

	return creds
}

func (p *samlRoleProvider) retrieve(ctx context.Context) (*Credentials, error) {
	in, err := p.getAssumeRoleWithSamlInput()
	if err != nil {
		return nil, err
	}

	out, err := p.Client.AssumeRoleWithSAML(ctx, in)
	if err != nil {
		return nil, err
	}

	// expiration comes from the STS response, never computed locally, so the offline
	// validity check stays correct across issuance latency and clock skew
	c := FromStsCredentials(out.Credentials)
	return c, nil
}

func (p *samlRoleProvider) getAssumeRoleWithSamlInput() (*sts.AssumeRoleWithSAMLInput, error) {
	if p.samlAssertion == nil || len(*p.samlAssertion) < 20 {
		return nil, errors.New("invalid SAML Assertion detected, check your local SAML and identity provider configuration")
	}

	if err := p.ValidateDuration(); err != nil {
		return nil, err
	}

	principal := p.PrincipalArn
	if len(principal) < 1 {
		rd, err := p.samlAssertion.RoleDetails()
		if err != nil {
			return nil, err
		}
		principal = rd.RolePrincipal(p.RoleArn)
	}

	in := &sts.AssumeRoleWithSAMLInput{
		DurationSeconds: aws.Int32(int32(p.Duration.Seconds())),
		PrincipalArn:    aws.String(principal),
		RoleArn:         aws.String(p.RoleArn),
		SAMLAssertion:   aws.String(p.samlAssertion.String()),
	}

	return in, nil
}
