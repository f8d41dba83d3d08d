package credentials

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
)

// SamlAssertion represents the base64 encoded SAML assertion document, and provides methods for extracting data
// necessary for the Assume Role with SAML operation.
type SamlAssertion string

// RoleDetails will inspect the SAML Assertion document and find the AWS IAM role, and saml-provider principal
// ARNs which are authorized for use with the AssumeRoleWithSaml API call.  Duplicate role entries collapse to
// a single pair.
func (s *SamlAssertion) RoleDetails() (*RoleDetails, error) {
	saml, err := s.Decode()
	if err != nil {
		return nil, err
	}

	rd := new(RoleDetails)
	rd.details = make(map[string]string)

	// static regex should never error
	re := regexp.MustCompile(`>(arn:aws:iam::\d+:(?:role|saml-provider)/.*?),(arn:aws:iam::\d+:(?:role|saml-provider)/.*?)<`)

	m := re.FindAllStringSubmatch(saml, -1)
	for _, r := range m {
		if strings.Contains(r[1], ":role/") {
			rd.details[r[1]] = r[2]
		} else {
			rd.details[r[2]] = r[1]
		}
	}

	return rd, nil
}

// RoleSessionName extracts the RoleSessionName attribute value from the assertion document.
func (s *SamlAssertion) RoleSessionName() (string, error) {
	saml, err := s.Decode()
	if err != nil {
		return "", err
	}

	// static regex should never error
	re := regexp.MustCompile(`RoleSessionName.*?>([\w_=,.@-]+)<`)

	m := re.FindStringSubmatch(saml)
	if len(m) < 2 {
		return "", fmt.Errorf("unable to find RoleSessionName attribute in SAML doc")
	}
	return m[1], nil
}

// ExpiresAt returns the time at which this SAML Assertion is no longer valid.  AWS appears to enforce
// a maximum limit of 5 minutes, so the value returned will be slightly less than that time.
func (s *SamlAssertion) ExpiresAt() (time.Time, error) {
	t := time.Unix(0, 0)

	saml, err := s.Decode()
	if err != nil {
		return t, err
	}

	// could be saml:Assertion, or saml2:Assertion, static regex should never error
	re := regexp.MustCompile(`<(?:saml\d*:)?Assertion.*\sIssueInstant="([[:graph:]]+)"`)

	m := re.FindStringSubmatch(saml)
	if m != nil {
		issueTime, err := time.Parse(time.RFC3339, m[1])
		if err != nil {
			return t, err
		}
		t = issueTime.Add(4 * time.Minute)
	}

	return t, nil
}

// Decode converts the base64 encoded SAML Assertion to the XML text form.
func (s *SamlAssertion) Decode() (string, error) {
	if s == nil || len(*s) < 1 {
		return "", errors.New("invalid saml assertion")
	}

	doc, err := base64.StdEncoding.DecodeString(string(*s))
	return string(doc), err
}

func (s *SamlAssertion) String() string {
	return string(*s)
}

// RoleDetails aligns the IAM SAML principal ARNs with IAM roles, as specified in the
// SAML Assertion document.
type RoleDetails struct {
	details map[string]string
}

// RolePrincipal returns the principal ARN string for the specified role. The empty
// string is returned if no match was found.
func (r *RoleDetails) RolePrincipal(role string) string {
	return r.details[role]
}

// Roles enumerates the IAM roles found in the SAMLResponse document.  The list is
// sorted by role ARN so interactive prompts enumerate the same ordering on every run.
func (r *RoleDetails) Roles() []string {
	rd := make([]string, 0, len(r.details))

	for k := range r.details {
		rd = append(rd, k)
	}

	sort.Strings(rd)
	return rd
}

// Principals returns the list of AWS SAML integration principal ARN values.
func (r *RoleDetails) Principals() []string {
	rd := make([]string, 0, len(r.details))

	for _, v := range r.details {
		rd = append(rd, v)
	}

	sort.Strings(rd)
	return rd
}

// String iterates over the configured role and principal ARNs and returns a line-based
// string of the role/principal pairs.
func (r *RoleDetails) String() string {
	sb := new(strings.Builder)
	for _, k := range r.Roles() {
		sb.WriteString(fmt.Sprintf("  %s %s\n", k, r.details[k]))
	}
	return sb.String()
}
