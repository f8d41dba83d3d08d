package client

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/oktatools/okta-creds/shared"
)

func newTestSamlRoleClient(sc *mockSamlClient, p *mockSamlRoleProvider) *samlRoleClient {
	return &samlRoleClient{
		samlClient:   sc,
		roleProvider: p,
		resolver:     newRoleResolver(nil, nil),
		logger:       new(shared.DefaultLogger),
		awsCredCache: aws.NewCredentialsCache(p),
	}
}

func TestNewSamlRoleClient(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		cfg := new(SamlRoleClientConfig)
		c, err := NewSamlRoleClient(aws.Config{}, "http://okta.mock.local", "http://okta.mock.local/home/amazon_aws/mock/123", cfg)
		if err != nil {
			t.Error(err)
			return
		}

		if c == nil || c.samlClient == nil || c.roleProvider == nil || c.awsCredCache == nil {
			t.Error("invalid client")
		}

		if c.lookup != nil {
			t.Error("unexpected account lookup")
		}
	})

	t.Run("account lookup enabled", func(t *testing.T) {
		cfg := &SamlRoleClientConfig{AccountLookup: true}
		c, err := NewSamlRoleClient(aws.Config{}, "http://okta.mock.local", "http://okta.mock.local/home/amazon_aws/mock/123", cfg)
		if err != nil {
			t.Error(err)
			return
		}

		if c.lookup == nil {
			t.Error("account lookup was not configured")
		}
	})

	t.Run("bad url", func(t *testing.T) {
		if _, err := NewSamlRoleClient(aws.Config{}, "gopher://this.is.bad", "http://okta.mock.local/home/amazon_aws/mock/123", new(SamlRoleClientConfig)); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("nil client config", func(t *testing.T) {
		defer func() {
			if x := recover(); x == nil {
				t.Error("did not receive expected panic calling NewSamlRoleClient with nil client config")
			}
		}()
		_, _ = NewSamlRoleClient(aws.Config{}, "http://okta.mock.local", "http://okta.mock.local/home/amazon_aws/mock/123", nil)
	})
}

func TestSamlRoleClient_Identity(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		c := &samlRoleClient{samlClient: &mockSamlClient{}}
		id, err := c.Identity()
		if err != nil {
			t.Error(err)
			return
		}

		if id == nil || id.Username != "saml_user" || id.IdentityType != "user" || id.Provider != "mockSamlProvider" {
			t.Error("data mismatch")
		}
	})

	t.Run("error", func(t *testing.T) {
		c := &samlRoleClient{samlClient: &mockSamlClient{sendError: true}}
		if _, err := c.Identity(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}

func TestSamlRoleClient_Roles(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		c := &samlRoleClient{samlClient: &mockSamlClient{}}
		roles, err := c.Roles()
		if err != nil {
			t.Error(err)
			return
		}

		if roles == nil || len(*roles) < 2 {
			t.Error("data mismatch")
		}
	})

	t.Run("error", func(t *testing.T) {
		c := &samlRoleClient{samlClient: &mockSamlClient{sendError: true}}
		if _, err := c.Roles(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}

func TestSamlRoleClient_ResolveRole(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		p := new(mockSamlRoleProvider)
		c := newTestSamlRoleClient(new(mockSamlClient), p)

		res, err := c.ResolveRole()
		if err != nil {
			t.Error(err)
			return
		}

		if res.RoleArn != "arn:aws:iam::012345678901:role/MockAdmin" || res.Source != RoleSourceOnlyOption {
			t.Errorf("unexpected resolution %+v", res)
		}

		if p.roleArn != res.RoleArn || p.principalArn != "arn:aws:iam::012345678901:saml-provider/Okta" {
			t.Error("role was not set on the provider")
		}
	})

	t.Run("memoized", func(t *testing.T) {
		sc := new(mockSamlClient)
		c := newTestSamlRoleClient(sc, new(mockSamlRoleProvider))

		first, err := c.ResolveRole()
		if err != nil {
			t.Error(err)
			return
		}

		second, err := c.ResolveRole()
		if err != nil {
			t.Error(err)
			return
		}

		if first != second || sc.fetches != 1 {
			t.Error("repeat resolution contacted the identity provider")
		}

		if c.ResolvedRole() != first {
			t.Error("data mismatch")
		}
	})

	t.Run("bad saml fetch", func(t *testing.T) {
		c := newTestSamlRoleClient(&mockSamlClient{sendError: true}, new(mockSamlRoleProvider))

		if _, err := c.ResolveRole(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}

func TestSamlRoleClient_Credentials(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		c := newTestSamlRoleClient(new(mockSamlClient), new(mockSamlRoleProvider))

		creds, err := c.Credentials()
		if err != nil {
			t.Error(err)
			return
		}

		if !creds.Value().HasKeys() {
			t.Error("invalid credentials")
		}

		// provider satisfied the request without any role resolution
		if c.ResolvedRole() != nil {
			t.Error("unexpected role resolution")
		}
	})

	t.Run("resolves role on failure", func(t *testing.T) {
		p := &mockSamlRoleProvider{roleRequired: true}
		c := newTestSamlRoleClient(new(mockSamlClient), p)

		creds, err := c.Credentials()
		if err != nil {
			t.Error(err)
			return
		}

		if !creds.Value().HasKeys() {
			t.Error("invalid credentials")
		}

		if c.ResolvedRole() == nil || len(p.roleArn) < 1 {
			t.Error("role was not resolved")
		}
	})

	t.Run("bad saml fetch", func(t *testing.T) {
		p := &mockSamlRoleProvider{roleRequired: true}
		c := newTestSamlRoleClient(&mockSamlClient{sendError: true}, p)

		if _, err := c.Credentials(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}

func TestSamlRoleClient_ConfigProvider(t *testing.T) {
	c := &samlRoleClient{session: aws.Config{}}
	if cp := c.ConfigProvider(); cp.Credentials != c.session.Credentials {
		t.Error("invalid config provider")
	}
}

func TestSamlRoleClient_ClearCache(t *testing.T) {
	p := new(mockSamlRoleProvider)
	c := newTestSamlRoleClient(new(mockSamlClient), p)
	c.resolved = &ResolvedRole{RoleArn: "mock"}

	if err := c.ClearCache(); err != nil {
		t.Error(err)
	}

	if c.ResolvedRole() != nil {
		t.Error("resolved role was not reset")
	}
}
