package credentials

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
)

func newSamlRoleProvider() *samlRoleProvider {
	saml := SamlAssertion(base64.StdEncoding.EncodeToString([]byte(`
<someTag>arn:aws:iam::01234567890:role/mockRole,arn:aws:iam::01234567890:saml-provider/mockPrincipal</someTag>
`)))

	p := NewSamlRoleProvider(aws.Config{}, "arn:aws:iam::01234567890:role/mockRole", "arn:aws:iam::01234567890:saml-provider/mockPrincipal", &saml)
	p.Client = new(stsMock)
	return p
}

func TestNewSamlRoleProvider(t *testing.T) {
	p := newSamlRoleProvider()

	if p.Duration != AssumeRoleDurationDefault {
		t.Error("invalid default duration")
	}

	if p.ExpiryWindow != ExpirationMargin {
		t.Error("invalid default expiry window")
	}

	if p.Logger == nil {
		t.Error("invalid default logger")
	}
}

func TestSamlRoleProvider_ValidateDuration(t *testing.T) {
	t.Run("zero uses default", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Duration = 0

		if err := p.ValidateDuration(); err != nil {
			t.Error(err)
			return
		}

		if p.Duration != AssumeRoleDurationDefault {
			t.Error("duration was not defaulted")
		}
	})

	t.Run("too short", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Duration = 1 * time.Minute

		if err := p.ValidateDuration(); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("too long", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Duration = 100 * time.Hour

		if err := p.ValidateDuration(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}

func TestSamlRoleProvider_Retrieve(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Cache = new(memCredCache)

		v, err := p.Retrieve(context.Background())
		if err != nil {
			t.Error(err)
			return
		}

		if !v.HasKeys() || len(v.SessionToken) < 1 || v.Source != SamlRoleProviderName {
			t.Error("invalid credentials")
		}
	})

	t.Run("expiration from response", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Duration = 2 * time.Hour

		v, err := p.Retrieve(context.Background())
		if err != nil {
			t.Error(err)
			return
		}

		if time.Until(v.Expires) < 90*time.Minute {
			t.Error("expiration not taken from STS response")
		}
	})

	t.Run("invalid duration is pre-flight", func(t *testing.T) {
		m := new(stsMock)
		p := newSamlRoleProvider()
		p.Client = m
		p.Duration = 1 * time.Minute

		if _, err := p.Retrieve(context.Background()); err == nil {
			t.Error("did not receive expected error")
			return
		}

		if m.Calls > 0 {
			t.Error("unexpected call to STS API")
		}
	})

	t.Run("invalid saml assertion", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.samlAssertion = new(SamlAssertion)

		if _, err := p.Retrieve(context.Background()); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("principal from assertion", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.PrincipalArn = ""

		v, err := p.Retrieve(context.Background())
		if err != nil {
			t.Error(err)
			return
		}

		if !v.HasKeys() {
			t.Error("invalid credentials")
		}
	})
}

func TestSamlRoleProvider_Retrieve_Cache(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		c := &memCredCache{
			creds: &Credentials{
				AccessKeyId:     "AKcached",
				SecretAccessKey: "SKcached",
				Token:           "STcached",
				Expiration:      time.Now().Add(6 * time.Hour),
			},
		}
		m := new(stsMock)
		p := newSamlRoleProvider()
		p.Client = m
		p.Cache = c

		v, err := p.Retrieve(context.Background())
		if err != nil {
			t.Error(err)
			return
		}

		if v.AccessKeyID != "AKcached" || v.SecretAccessKey != "SKcached" || v.SessionToken != "STcached" {
			t.Error("credential mismatch")
			return
		}

		if m.Calls > 0 {
			t.Error("unexpected call to STS API")
		}
	})

	t.Run("expired", func(t *testing.T) {
		c := &memCredCache{
			creds: &Credentials{
				AccessKeyId:     "AKcached",
				SecretAccessKey: "SKcached",
				Token:           "STcached",
				Expiration:      time.Now().Add(-6 * time.Hour),
			},
		}
		p := newSamlRoleProvider()
		p.Cache = c

		v, err := p.Retrieve(context.Background())
		if err != nil {
			t.Error(err)
			return
		}

		if v.AccessKeyID == "AKcached" || v.SecretAccessKey == "SKcached" || v.SessionToken == "STcached" {
			t.Error("unexpected credential match")
			return
		}

		// fresh credentials land back in the cache
		if c.Load().AccessKeyId != v.AccessKeyID {
			t.Error("cache was not updated")
		}
	})

	t.Run("repeat call hits cache", func(t *testing.T) {
		m := new(stsMock)
		p := newSamlRoleProvider()
		p.Client = m
		p.Cache = new(memCredCache)

		if _, err := p.Retrieve(context.Background()); err != nil {
			t.Error(err)
			return
		}

		if _, err := p.Retrieve(context.Background()); err != nil {
			t.Error(err)
			return
		}

		if m.Calls != 1 {
			t.Errorf("expected 1 STS call, got %d", m.Calls)
		}
	})
}

func TestSamlRoleProvider_SetRole(t *testing.T) {
	p := newSamlRoleProvider()
	p.SetRole("newRole", "newPrincipal")

	if p.RoleArn != "newRole" || p.PrincipalArn != "newPrincipal" {
		t.Error("role mismatch")
	}
}

func TestSamlRoleProvider_ClearCache(t *testing.T) {
	t.Run("no cache", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Cache = nil

		if err := p.ClearCache(); err != nil {
			t.Error(err)
		}
	})

	t.Run("with cache", func(t *testing.T) {
		p := newSamlRoleProvider()
		p.Cache = &memCredCache{
			creds: &Credentials{
				AccessKeyId:     "AKcached",
				SecretAccessKey: "SKcached",
				Token:           "STcached",
				Expiration:      time.Now().Add(6 * time.Hour),
			},
		}

		if err := p.ClearCache(); err != nil {
			t.Error(err)
			return
		}

		if p.Cache.Load().Value().HasKeys() {
			t.Error("cache was not cleared")
		}
	})
}
