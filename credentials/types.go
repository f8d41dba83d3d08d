package credentials

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// ErrInvalidCredentials is the error returned when a set of invalid AWS credentials is detected.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrNoRoles is the error returned when a SAML assertion contains no assumable roles.
var ErrNoRoles = errors.New("no roles available in SAML assertion")

// CredentialCacher is the interface details to implement AWS credential caching.
type CredentialCacher interface {
	Load() *Credentials
	Store(cred *Credentials) error
	Clear() error
}

// SamlRoleProvider defines the methods used for interacting with the AssumeRoleWithSAML call.
type SamlRoleProvider interface {
	aws.CredentialsProvider
	SamlAssertion(saml *SamlAssertion)
	SetRole(roleArn, principalArn string)
	ClearCache() error
}

type stsApi interface {
	AssumeRoleWithSAML(ctx context.Context, params *sts.AssumeRoleWithSAMLInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleWithSAMLOutput, error)
}
