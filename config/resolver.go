package config

import "github.com/oktatools/okta-creds/shared"

type resolver struct {
	loader    Loader
	defConfig *OktaConfig
	defCreds  *OktaCredentials
	config    *OktaConfig
	creds     *OktaCredentials
}

// NewResolver configures a Resolver using the provided loader.
func NewResolver(loader Loader) *resolver {
	return &resolver{
		loader:    loader,
		defConfig: new(OktaConfig),
		defCreds:  new(OktaCredentials),
	}
}

// WithLogger sets the logger used by the config package.
func (r *resolver) WithLogger(l shared.Logger) *resolver {
	logger = l // package-level logger
	return r
}

// WithDefaultConfig is a fluent method for setting an initial/default configuration object, which will be used as the
// base configuration for any calls to Config().
func (r *resolver) WithDefaultConfig(config *OktaConfig) *resolver {
	if config != nil {
		r.defConfig = config
	}
	return r
}

// WithDefaultCredentials is a fluent method for setting an initial/default credentials object, which will be used as
// the base credentials for any calls to Credentials().
func (r *resolver) WithDefaultCredentials(creds *OktaCredentials) *resolver {
	if creds != nil {
		r.defCreds = creds
	}
	return r
}

// MergeConfig sets additional configuration for the resolver, and returns the updated configuration.
// For best effect, use after calling Config()
func (r *resolver) MergeConfig(cfg ...*OktaConfig) *OktaConfig {
	if r.config == nil {
		r.config = r.defConfig
	}
	r.config.MergeIn(cfg...)
	return r.config
}

// MergeCredentials sets additional credentials for the resolver, and returns the updated credentials.
// For best effect, use after calling Credentials()
func (r *resolver) MergeCredentials(creds ...*OktaCredentials) *OktaCredentials {
	if r.creds == nil {
		r.creds = r.defCreds
	}
	r.creds.MergeIn(creds...)
	return r.creds
}

// Config is the implementation of the Resolver interface to build a coherent OktaConfig object.
func (r *resolver) Config(profile string) (*OktaConfig, error) {
	c, err := r.loader.Config(profile)
	if err != nil {
		return nil, err
	}

	r.config = new(OktaConfig)
	r.config.MergeIn(r.defConfig)
	r.config.MergeIn(c)
	r.config.ProfileName = profile

	return r.config, nil
}

// Credentials is the implementation of the Resolver interface to build a coherent OktaCredentials object.
func (r *resolver) Credentials(profile string) (*OktaCredentials, error) {
	c, err := r.loader.Credentials(profile)
	if err != nil {
		return nil, err
	}

	r.creds = new(OktaCredentials)
	r.creds.MergeIn(r.defCreds)
	r.creds.MergeIn(c)

	return r.creds, nil
}
