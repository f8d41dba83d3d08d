package client

import (
	"context"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/oktatools/okta-creds/client/okta"
	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/credentials/helpers"
	"github.com/oktatools/okta-creds/identity"
	"github.com/oktatools/okta-creds/shared"
)

type samlRoleClient struct {
	samlClient   okta.SamlClient
	roleProvider credentials.SamlRoleProvider
	awsCredCache *aws.CredentialsCache
	resolver     *roleResolver
	lookup       *accountLookup
	session      aws.Config
	logger       shared.Logger
	roleArn      string
	forcePrompt  bool
	resolved     *ResolvedRole
}

// SamlRoleClientConfig is the means to specify the configuration for the Assume Role with SAML
// operation.  This includes information necessary to communicate with Okta, as well as the
// configuration for the AWS API calls.
type SamlRoleClientConfig struct {
	okta.AuthenticationConfig
	Cache             credentials.CredentialCacher
	CookieJar         http.CookieJar
	RoleSelector      helpers.SelectionInputProvider
	Duration          time.Duration
	RoleArn           string
	ForcePrompt       bool
	AccountLookup     bool
	AccountLookupFile string
}

// NewSamlRoleClient returns a new SAML aware AwsClient for obtaining identity information from
// Okta, and for making the AWS Assume Role with SAML API call.  The orgUrl and appUrl arguments
// are the Okta organization endpoint and the AWS application link, respectively.
func NewSamlRoleClient(cfg aws.Config, orgUrl, appUrl string, clientCfg *SamlRoleClientConfig) (*samlRoleClient, error) {
	sc, err := okta.NewClient(orgUrl, appUrl)
	if err != nil {
		return nil, err
	}
	sc.Username = clientCfg.Username
	sc.Password = clientCfg.Password
	sc.MfaTokenCode = clientCfg.MfaTokenCode
	sc.MfaFactor = clientCfg.MfaFactor
	sc.UserAgent = clientCfg.UserAgent

	if clientCfg.MfaTokenProvider != nil {
		sc.MfaTokenProvider = clientCfg.MfaTokenProvider
	}
	if clientCfg.CredentialInputProvider != nil {
		sc.CredentialInputProvider = clientCfg.CredentialInputProvider
	}
	if clientCfg.Logger != nil {
		sc.Logger = clientCfg.Logger
	}
	if clientCfg.CookieJar != nil {
		sc.SetCookieJar(clientCfg.CookieJar)
	}

	p := credentials.NewSamlRoleProvider(cfg, clientCfg.RoleArn, "", new(credentials.SamlAssertion))
	p.Duration = clientCfg.Duration
	p.Cache = clientCfg.Cache
	if clientCfg.Logger != nil {
		p.Logger = clientCfg.Logger
	}

	cfg.Credentials = p

	var lookup *accountLookup
	if clientCfg.AccountLookup || len(clientCfg.AccountLookupFile) > 0 {
		lookup = newAccountLookup(cfg, clientCfg.AccountLookupFile, clientCfg.Logger)
	}

	return &samlRoleClient{
		samlClient:   sc,
		roleProvider: p,
		resolver:     newRoleResolver(clientCfg.RoleSelector, clientCfg.Logger),
		lookup:       lookup,
		session:      cfg,
		logger:       p.Logger,
		roleArn:      clientCfg.RoleArn,
		forcePrompt:  clientCfg.ForcePrompt,
		awsCredCache: aws.NewCredentialsCache(p, func(o *aws.CredentialsCacheOptions) {
			o.ExpiryWindow = p.ExpiryWindow
		}),
	}, nil
}

// Identity is the implementation of the IdentityClient interface for retrieving identity
// information from Okta.
func (c *samlRoleClient) Identity() (*identity.Identity, error) {
	return c.samlClient.Identity()
}

// Roles is the implementation of the IdentityClient interface for retrieving the role list
// carried in the SAML assertion.
func (c *samlRoleClient) Roles() (*identity.Roles, error) {
	return c.samlClient.Roles()
}

// ResolvedRole returns the role binding chosen during the most recent credential fetch, or
// nil if cached credentials satisfied the request and no resolution was needed.
func (c *samlRoleClient) ResolvedRole() *ResolvedRole {
	return c.resolved
}

// ResolveRole calls ResolveRoleWithContext using a background context.
func (c *samlRoleClient) ResolveRole() (*ResolvedRole, error) {
	return c.ResolveRoleWithContext(context.Background())
}

// ResolveRoleWithContext fetches the SAML assertion (authenticating with Okta as needed) and
// determines the role to assume.  The selection is memoized, repeat calls return the same
// role without touching the IdP again.
func (c *samlRoleClient) ResolveRoleWithContext(ctx context.Context) (*ResolvedRole, error) {
	if c.resolved != nil {
		return c.resolved, nil
	}

	saml, err := c.samlClient.SamlAssertionWithContext(ctx)
	if err != nil {
		return nil, err
	}
	c.roleProvider.SamlAssertion(saml)

	rd, err := saml.RoleDetails()
	if err != nil {
		return nil, err
	}

	var names map[string]string
	if c.lookup != nil {
		names = c.lookup.AccountNames(ctx, saml, rd)
	}

	resolved, err := c.resolver.Resolve(rd, names, c.roleArn, c.forcePrompt)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("resolved role %s (%s)", resolved.RoleArn, resolved.Source)

	c.roleProvider.SetRole(resolved.RoleArn, resolved.PrincipalArn)
	c.resolved = resolved
	return resolved, nil
}

// Credentials is the implementation of the CredentialClient interface, and calls
// CredentialsWithContext with a background context.
func (c *samlRoleClient) Credentials() (*credentials.Credentials, error) {
	return c.CredentialsWithContext(context.Background())
}

// CredentialsWithContext is the implementation of the CredentialClient interface for retrieving
// temporary AWS credentials using the Assume Role with SAML operation.  Valid cached credentials
// are returned without any contact with the IdP or AWS; otherwise the role is resolved and a
// fresh set is fetched from STS.
func (c *samlRoleClient) CredentialsWithContext(ctx context.Context) (*credentials.Credentials, error) {
	// assume any error on the first attempt means we need to resolve the role binding
	// and re-fetch credentials from the IdP and AWS
	v, err := c.awsCredCache.Retrieve(ctx)
	if err != nil {
		if _, err = c.ResolveRoleWithContext(ctx); err != nil {
			return nil, err
		}

		v, err = c.awsCredCache.Retrieve(ctx)
		if err != nil {
			return nil, err
		}
	}

	return credentials.FromValue(v), nil
}

// ConfigProvider returns the AWS SDK aws.Config for this client.
func (c *samlRoleClient) ConfigProvider() aws.Config {
	return c.session
}

// ClearCache invalidates the in-memory AWS credential cache and removes the cached
// credential file for this client, forcing the next Credentials call to re-fetch.
func (c *samlRoleClient) ClearCache() error {
	if c.awsCredCache != nil {
		c.awsCredCache.Invalidate()
	}
	c.resolved = nil
	return c.roleProvider.ClearCache()
}
