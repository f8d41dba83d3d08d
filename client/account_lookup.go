package client

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/shared"
)

// narrow views of the AWS service clients so the lookup is testable with a mock API
type stsSamlApi interface {
	AssumeRoleWithSAML(ctx context.Context, params *sts.AssumeRoleWithSAMLInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleWithSAMLOutput, error)
}

type iamAliasApi interface {
	ListAccountAliases(ctx context.Context, params *iam.ListAccountAliasesInput, optFns ...func(*iam.Options)) (*iam.ListAccountAliasesOutput, error)
}

// accountLookup maps the AWS account IDs found in a SAML assertion's role list to account
// names, so the interactive role prompt can show something friendlier than bare account
// numbers.  The names come from the iam:ListAccountAliases API, called with short-lived
// credentials assumed from the assertion itself.  An optional file acts as a read-through
// cache of account ID to name mappings, populated with any names fetched from the API.
type accountLookup struct {
	path   string
	logger shared.Logger
	stsFn  func() stsSamlApi
	iamFn  func(aws.Credentials) iamAliasApi
}

func newAccountLookup(cfg aws.Config, path string, logger shared.Logger) *accountLookup {
	if logger == nil {
		logger = new(shared.DefaultLogger)
	}

	return &accountLookup{
		path:   path,
		logger: logger,
		stsFn:  func() stsSamlApi { return sts.NewFromConfig(cfg) },
		iamFn: func(v aws.Credentials) iamAliasApi {
			c := cfg.Copy()
			c.Credentials = awscreds.NewStaticCredentialsProvider(v.AccessKeyID, v.SecretAccessKey, v.SessionToken)
			return iam.NewFromConfig(c)
		},
	}
}

// AccountNames returns a map of AWS account ID to account name for the accounts appearing
// in the role details.  The lookup is best effort, an account whose name can't be fetched
// is logged and skipped, never failing the credential flow it decorates.
func (l *accountLookup) AccountNames(ctx context.Context, saml *credentials.SamlAssertion, details *credentials.RoleDetails) map[string]string {
	names := l.loadNameFile()

	var added bool
	for account, role := range accountRoles(details) {
		if _, ok := names[account]; ok {
			continue
		}

		name, err := l.fetchName(ctx, saml, details, role)
		if err != nil {
			l.logger.Warningf("account name lookup failed for %s: %v", account, err)
			continue
		}
		if len(name) < 1 {
			// account has no alias set
			continue
		}

		names[account] = name
		added = true
	}

	if added && len(l.path) > 0 {
		if err := l.saveNameFile(names); err != nil {
			l.logger.Warningf("failed to update account name file %s: %v", l.path, err)
		}
	}

	return names
}

// fetchName assumes the given role with the minimum allowed duration and asks IAM for the
// account's alias.  Accounts can carry at most one alias, an empty return means none is set.
func (l *accountLookup) fetchName(ctx context.Context, saml *credentials.SamlAssertion, details *credentials.RoleDetails, roleArn string) (string, error) {
	out, err := l.stsFn().AssumeRoleWithSAML(ctx, &sts.AssumeRoleWithSAMLInput{
		DurationSeconds: aws.Int32(int32(credentials.AssumeRoleDurationMin.Seconds())),
		PrincipalArn:    aws.String(details.RolePrincipal(roleArn)),
		RoleArn:         aws.String(roleArn),
		SAMLAssertion:   aws.String(saml.String()),
	})
	if err != nil {
		return "", err
	}

	v := credentials.FromStsCredentials(out.Credentials).Value()
	aliases, err := l.iamFn(v).ListAccountAliases(ctx, new(iam.ListAccountAliasesInput))
	if err != nil {
		return "", err
	}

	if len(aliases.AccountAliases) < 1 {
		return "", nil
	}
	return aliases.AccountAliases[0], nil
}

// accountRoles reduces the role list to one role per account.  Roles() is sorted, so the
// lexically first role for each account wins and the choice is stable between runs.
func accountRoles(details *credentials.RoleDetails) map[string]string {
	roles := details.Roles()

	m := make(map[string]string)
	for _, role := range roles {
		account := roleAccountId(role)
		if len(account) < 1 {
			continue
		}
		if _, ok := m[account]; !ok {
			m[account] = role
		}
	}
	return m
}

func roleAccountId(roleArn string) string {
	a, err := arn.Parse(roleArn)
	if err != nil {
		return ""
	}
	return a.AccountID
}

// a missing or unparseable name file is not an error, the lookup starts empty and the
// next successful fetch rewrites it
func (l *accountLookup) loadNameFile() map[string]string {
	names := make(map[string]string)

	if len(l.path) < 1 {
		return names
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return names
	}
	_ = json.Unmarshal(data, &names)

	return names
}

func (l *accountLookup) saveNameFile(names map[string]string) error {
	// serializable by construction
	data, _ := json.MarshalIndent(names, "", "  ")
	return os.WriteFile(l.path, data, 0600)
}
