package credentials

import (
	"encoding/base64"
	"fmt"
	"strings"
	"testing"
	"time"
)

func encodeAssertion(data string) SamlAssertion {
	return SamlAssertion(base64.StdEncoding.EncodeToString([]byte(data)))
}

func TestSamlAssertion_RoleDetails(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := new(SamlAssertion).RoleDetails(); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("no data", func(t *testing.T) {
		a := encodeAssertion(`my mock saml assertion`)

		rd, err := a.RoleDetails()
		if err != nil {
			t.Error(err)
			return
		}

		if len(rd.Roles()) > 0 {
			t.Error("unexpected data returned")
		}
	})

	t.Run("good", func(t *testing.T) {
		a := encodeAssertion(`
<someTag>arn:aws:iam::01234567890:role/mockRole1,arn:aws:iam::01234567890:saml-provider/mockPrincipal1</someTag>
<someTag>arn:aws:iam::01234567890:saml-provider/mockPrincipal2,arn:aws:iam::01234567890:role/mockRole2</someTag>
`)
		rd, err := a.RoleDetails()
		if err != nil {
			t.Error(err)
			return
		}

		if len(rd.Roles()) != 2 || len(rd.Principals()) != 2 {
			t.Error("role data mismatch")
		}

		for _, v := range rd.Roles() {
			if !strings.Contains(v, "mockRole") {
				t.Errorf("bad role name %s", v)
			}
		}

		if p := rd.RolePrincipal("arn:aws:iam::01234567890:role/mockRole2"); !strings.HasSuffix(p, "mockPrincipal2") {
			t.Errorf("bad principal %s", p)
		}
	})

	t.Run("duplicates collapse", func(t *testing.T) {
		a := encodeAssertion(`
<someTag>arn:aws:iam::01234567890:role/mockRole,arn:aws:iam::01234567890:saml-provider/mockPrincipal</someTag>
<someTag>arn:aws:iam::01234567890:role/mockRole,arn:aws:iam::01234567890:saml-provider/mockPrincipal</someTag>
`)
		rd, err := a.RoleDetails()
		if err != nil {
			t.Error(err)
			return
		}

		if len(rd.Roles()) != 1 {
			t.Errorf("expected 1 role, got %d", len(rd.Roles()))
		}
	})

	t.Run("roles sorted", func(t *testing.T) {
		a := encodeAssertion(`
<someTag>arn:aws:iam::01234567890:role/zRole,arn:aws:iam::01234567890:saml-provider/mockPrincipal</someTag>
<someTag>arn:aws:iam::01234567890:role/aRole,arn:aws:iam::01234567890:saml-provider/mockPrincipal</someTag>
<someTag>arn:aws:iam::01234567890:role/mRole,arn:aws:iam::01234567890:saml-provider/mockPrincipal</someTag>
`)
		rd, err := a.RoleDetails()
		if err != nil {
			t.Error(err)
			return
		}

		roles := rd.Roles()
		if !strings.HasSuffix(roles[0], "aRole") || !strings.HasSuffix(roles[1], "mRole") || !strings.HasSuffix(roles[2], "zRole") {
			t.Errorf("roles not sorted: %v", roles)
		}
	})
}

func TestSamlAssertion_RoleSessionName(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		a := encodeAssertion(`<Attribute Name="https://aws.amazon.com/SAML/Attributes/RoleSessionName"><AttributeValue>my_user@mock.org</AttributeValue></Attribute>`)

		name, err := a.RoleSessionName()
		if err != nil {
			t.Error(err)
			return
		}

		if name != "my_user@mock.org" {
			t.Errorf("unexpected session name %s", name)
		}
	})

	t.Run("missing", func(t *testing.T) {
		a := encodeAssertion(`my mock saml assertion`)
		if _, err := a.RoleSessionName(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}

func TestSamlAssertion_ExpiresAt(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if _, err := new(SamlAssertion).ExpiresAt(); err == nil {
			t.Error("did not receive expected error")
		}
	})

	t.Run("no data", func(t *testing.T) {
		a := encodeAssertion(`my mock saml assertion`)

		exp, err := a.ExpiresAt()
		if err != nil {
			t.Error(err)
			return
		}

		if !exp.Equal(time.Unix(0, 0)) {
			t.Error("unexpected expiration")
		}
	})

	t.Run("good", func(t *testing.T) {
		issue := time.Now().UTC().Truncate(time.Second)
		a := encodeAssertion(fmt.Sprintf(`<saml2:Assertion ID="mock" IssueInstant="%s">`, issue.Format(time.RFC3339)))

		exp, err := a.ExpiresAt()
		if err != nil {
			t.Error(err)
			return
		}

		if !exp.Equal(issue.Add(4 * time.Minute)) {
			t.Errorf("unexpected expiration %s", exp)
		}
	})
}

func TestSamlAssertion_Decode(t *testing.T) {
	t.Run("good", func(t *testing.T) {
		a := encodeAssertion(`mock doc`)

		doc, err := a.Decode()
		if err != nil {
			t.Error(err)
			return
		}

		if doc != "mock doc" {
			t.Error("doc mismatch")
		}
	})

	t.Run("bad base64", func(t *testing.T) {
		a := SamlAssertion("not base64 !!!")
		if _, err := a.Decode(); err == nil {
			t.Error("did not receive expected error")
		}
	})
}
