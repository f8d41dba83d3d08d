package client

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/oktatools/okta-creds/client/okta"
	"github.com/oktatools/okta-creds/config"
	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/identity"
)

const mockAssertionDoc = `<saml2:AttributeStatement>
>arn:aws:iam::012345678901:saml-provider/Okta,arn:aws:iam::012345678901:role/MockAdmin<
</saml2:AttributeStatement>`

var _ okta.SamlClient = (*mockSamlClient)(nil)

/*
 */
type mockSamlClient struct {
	sendError bool
	fetches   int
}

func (c *mockSamlClient) Identity() (*identity.Identity, error) {
	if c.sendError {
		return nil, errors.New("error: Identity()")
	}

	return &identity.Identity{
		IdentityType: "user",
		Provider:     "mockSamlProvider",
		Username:     "saml_user",
	}, nil
}

func (c *mockSamlClient) Roles(...string) (*identity.Roles, error) {
	if c.sendError {
		return nil, errors.New("error: Roles()")
	}

	r := identity.Roles([]string{"role1", "role2"})
	return &r, nil
}

func (c *mockSamlClient) Authenticate() error {
	return c.AuthenticateWithContext(context.Background())
}

func (c *mockSamlClient) AuthenticateWithContext(context.Context) error {
	if c.sendError {
		return errors.New("error: Authenticate()")
	}
	return nil
}

func (c *mockSamlClient) SetCookieJar(http.CookieJar) {
	// return
}

func (c *mockSamlClient) SamlAssertion() (*credentials.SamlAssertion, error) {
	return c.SamlAssertionWithContext(context.Background())
}

func (c *mockSamlClient) SamlAssertionWithContext(context.Context) (*credentials.SamlAssertion, error) {
	c.fetches++
	if c.sendError {
		return new(credentials.SamlAssertion), errors.New("error: SamlAssertion()")
	}

	saml := credentials.SamlAssertion(base64.StdEncoding.EncodeToString([]byte(mockAssertionDoc)))
	return &saml, nil
}

var _ credentials.SamlRoleProvider = (*mockSamlRoleProvider)(nil)

/*
 */
type mockSamlRoleProvider struct {
	roleArn      string
	principalArn string
	sendError    bool
	roleRequired bool
}

func (p *mockSamlRoleProvider) Retrieve(context.Context) (aws.Credentials, error) {
	if p.sendError {
		return aws.Credentials{}, errors.New("failed")
	}

	if p.roleRequired && len(p.roleArn) < 1 {
		return aws.Credentials{}, errors.New("no role bound")
	}

	return aws.Credentials{
		AccessKeyID:     "mockAK",
		SecretAccessKey: "mockSK",
		SessionToken:    "mockToken",
		Source:          "mockSamlRoleProvider",
		CanExpire:       true,
		Expires:         time.Now().Add(1 * time.Hour),
	}, nil
}

func (p *mockSamlRoleProvider) SamlAssertion(*credentials.SamlAssertion) {
	// return
}

func (p *mockSamlRoleProvider) SetRole(roleArn, principalArn string) {
	p.roleArn = roleArn
	p.principalArn = principalArn
}

func (p *mockSamlRoleProvider) ClearCache() error {
	return nil
}

/*
 */
type mockResolver bool

func (m *mockResolver) Config(profile string) (*config.OktaConfig, error) {
	cfg := new(config.OktaConfig)
	cfg.ProfileName = profile

	switch profile {
	case "okta-bad":
		cfg.BaseUrl = "ftp://example.org/"
		cfg.AppUrl = "ftp://example.org/home/amazon_aws/mock/123"
	case "okta":
		cfg.BaseUrl = "http://localhost/"
		cfg.AppUrl = "http://localhost/home/amazon_aws/mock/123"
	case "":
		return nil, errors.New("error condition")
	}

	return cfg, nil
}

func (m *mockResolver) Credentials(string) (*config.OktaCredentials, error) {
	if *m {
		return nil, errors.New("error condition")
	}
	return new(config.OktaCredentials), nil
}
