package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws/arn"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/smithy-go/logging"

	"github.com/oktatools/okta-creds/client/okta"
	"github.com/oktatools/okta-creds/config"
	"github.com/oktatools/okta-creds/credentials/cache"
	"github.com/oktatools/okta-creds/shared"
)

// Factory builds a configured AwsClient from a resolved profile configuration.  The supplied
// Options affect caching, session persistence, and the interactive prompt behavior of the
// returned client.
type Factory struct {
	resolver config.Resolver
	options  *Options
}

// NewClientFactory uses the provided Resolver to look up the credential material for a profile,
// pairing it with the supplied Options to build AwsClient values.
func NewClientFactory(res config.Resolver, opts *Options) *Factory {
	return &Factory{resolver: res, options: opts}
}

// Get returns an AwsClient for the given configuration, which is expected to be fully resolved
// and valid.
func (f *Factory) Get(cfg *config.OktaConfig) (AwsClient, error) {
	if cfg == nil {
		return nil, errors.New("invalid configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	creds, err := f.resolver.Credentials(cfg.ProfileName)
	if err != nil {
		// non-fatal error, just set empty creds
		creds = new(config.OktaCredentials)
	}
	creds.MergeIn(f.options.CommandCredentials)

	f.options.Logger.Debugf("CLIENT CONFIG: %+v", cfg)
	return f.samlClient(cfg, creds)
}

func (f *Factory) samlClient(cfg *config.OktaConfig, creds *config.OktaCredentials) (AwsClient, error) {
	logger := f.options.Logger
	logger.Debugf("configuring Okta SAML client")

	samlCfg := &SamlRoleClientConfig{
		AuthenticationConfig: okta.AuthenticationConfig{
			Username:                cfg.Username,
			Password:                creds.Password,
			MfaTokenCode:            cfg.MfaCode,
			MfaFactor:               cfg.MfaFactor,
			MfaTokenProvider:        f.options.MfaInputProvider,
			CredentialInputProvider: f.options.CredentialInputProvider,
			UserAgent:               f.options.UserAgent,
			Logger:                  logger,
		},
		RoleSelector:      f.options.RoleSelector,
		Duration:          cfg.Duration,
		RoleArn:           cfg.RoleArn,
		ForcePrompt:       f.options.ForceRolePrompt,
		CookieJar:         f.cookieJar(),
		AccountLookup:     f.options.AccountLookup,
		AccountLookupFile: f.options.AccountLookupFile,
	}

	if f.options.EnableCache {
		samlCfg.Cache = cache.NewFileCredentialCache(cacheFileName(".okta_saml_role", cfg.ProfileName, cfg.RoleArn))
	}

	awsOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithSharedConfigProfile(""),
		awsconfig.WithLogger(awsLogger{logger}),
	}
	if f.options.AwsLogMode != 0 {
		awsOpts = append(awsOpts, awsconfig.WithClientLogMode(f.options.AwsLogMode))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsOpts...)
	if err != nil {
		return nil, err
	}

	return NewSamlRoleClient(awsCfg, cfg.BaseUrl, cfg.AppUrl, samlCfg)
}

// cookieJar returns the file-backed jar for the Okta session when persistence is enabled,
// otherwise nil so the client falls back to its in-memory jar and the session dies with the
// process.
func (f *Factory) cookieJar() http.CookieJar {
	if !f.options.PersistentSession {
		return nil
	}

	p := f.options.CookieJarPath
	if len(p) < 1 {
		p = filepath.Join(cachePath(), ".okta_creds.cookies")
	}
	return cache.CookieJar(p).WithLogger(f.options.Logger)
}

// awsLogger adapts a shared.Logger to the smithy logging interface used by the AWS SDK.
type awsLogger struct {
	shared.Logger
}

func (l awsLogger) Logf(class logging.Classification, format string, v ...interface{}) {
	if class == logging.Warn {
		l.Warningf(format, v...)
		return
	}
	l.Debugf(format, v...)
}

func cachePath() string {
	f := awsconfig.DefaultSharedConfigFilename()
	if v, ok := os.LookupEnv("AWS_CONFIG_FILE"); ok {
		f = v
	}
	return filepath.Dir(f)
}

func cacheFileName(prefix, profile, role string) string {
	if len(profile) < 1 && arn.IsARN(role) {
		roleArn, _ := arn.Parse(role)
		roleParts := strings.Split(roleArn.Resource, `/`)
		profile = fmt.Sprintf("%s-%s", roleArn.AccountID, roleParts[len(roleParts)-1])
	}
	return filepath.Join(cachePath(), fmt.Sprintf("%s_%s", prefix, profile))
}
