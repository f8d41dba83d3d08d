package client

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/oktatools/okta-creds/config"
	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/credentials/helpers"
	"github.com/oktatools/okta-creds/identity"
	"github.com/oktatools/okta-creds/shared"
)

// DefaultOptions is a set of options provided as a convenience for setting common behavior, such as
// credential caching, session persistence, and the interactive input prompts.
var DefaultOptions = &Options{
	EnableCache:             true,
	MfaInputProvider:        helpers.NewMfaTokenProvider(os.Stdin).ReadInput,
	CredentialInputProvider: helpers.NewUserPasswordInputProvider(os.Stdin).ReadInput,
	RoleSelector:            helpers.NewSelectionInputProvider(os.Stdin),
	Logger:                  new(shared.DefaultLogger),
	CommandCredentials:      new(config.OktaCredentials),
}

// CredentialClient defines the methods for implementations which know how to retrieve temporary
// AWS credentials via the STS API.
type CredentialClient interface {
	Credentials() (*credentials.Credentials, error)
	CredentialsWithContext(ctx context.Context) (*credentials.Credentials, error)
	ConfigProvider() aws.Config
	ClearCache() error
}

// IdentityClient defines the methods for implementations which retrieve caller identity and role
// information from an external identity source.
type IdentityClient interface {
	Identity() (*identity.Identity, error)
	Roles() (*identity.Roles, error)
}

// AwsClient is a super-interface which combines the functions of the CredentialClient and IdentityClient
// to provide a cohesive solution for obtaining credentials and identity information.
type AwsClient interface {
	IdentityClient
	CredentialClient
	ResolvedRole() *ResolvedRole
}

// Options provides a way to manage various attributes used by the client Factory to configure the
// client built for the given profile configuration.
type Options struct {
	EnableCache             bool
	PersistentSession       bool
	CookieJarPath           string
	ForceRolePrompt         bool
	AccountLookup           bool
	AccountLookupFile       string
	UserAgent               string
	AwsLogMode              aws.ClientLogMode
	MfaInputProvider        func() (string, error)
	CredentialInputProvider func(string, string) (string, string, error)
	RoleSelector            helpers.SelectionInputProvider
	Logger                  shared.Logger
	CommandCredentials      *config.OktaCredentials
}
