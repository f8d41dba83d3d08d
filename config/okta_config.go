package config

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// OktaConfig holds the per-profile settings used to authenticate against an Okta
// organization and assume an AWS role with the resulting SAML assertion.  Fields which
// support ini-style configuration specify the configuration key in the "ini" tag.
// Fields which support configuration by environment variables specify the environment
// variable name in the "env" tag.
type OktaConfig struct {
	BaseUrl     string        `ini:"base_url" env:"OKTA_BASE_URL"`
	AppUrl      string        `ini:"app_url" env:"OKTA_APP_URL"`
	MfaFactor   string        `ini:"factor" env:"OKTA_MFA_FACTOR"`
	MfaCode     string        `env:"MFA_CODE"` // only env var supported, since this value frequently changes over time
	Duration    time.Duration `ini:"duration" env:"CREDENTIALS_DURATION"`
	RoleArn     string        `ini:"role"` // last role used, written back after a fresh choice
	Username    string        `ini:"username" env:"OKTA_USERNAME"`
	Region      string        `ini:"region" env:"AWS_REGION,AWS_DEFAULT_REGION"`
	CredProfile string        `ini:"profile"` // default name of the credential profile to write
	ProfileName string        // does not participate in value Marshal/Unmarshal, explicitly set
}

// BaseURL returns the url.URL value for the BaseUrl field (the Okta organization endpoint).
func (c *OktaConfig) BaseURL() (*url.URL, error) {
	return c.handleUrl(c.BaseUrl)
}

// AppURL returns the url.URL value for the AppUrl field (the AWS SAML application link
// used to fetch the identity assertion).
func (c *OktaConfig) AppURL() (*url.URL, error) {
	return c.handleUrl(c.AppUrl)
}

// MergeIn takes the settings in the provided "config" argument and applies them to the existing OktaConfig object.
// New values are applied only if they are not the field type's zero value, the last (non-zero) value takes priority.
func (c *OktaConfig) MergeIn(config ...*OktaConfig) {
	for _, cfg := range config {
		if len(cfg.BaseUrl) > 0 {
			c.BaseUrl = cfg.BaseUrl
		}

		if len(cfg.AppUrl) > 0 {
			c.AppUrl = cfg.AppUrl
		}

		if len(cfg.MfaFactor) > 0 {
			c.MfaFactor = cfg.MfaFactor
		}

		if len(cfg.MfaCode) > 0 {
			c.MfaCode = cfg.MfaCode
		}

		if cfg.Duration > 0 {
			c.Duration = cfg.Duration
		}

		if len(cfg.RoleArn) > 0 {
			c.RoleArn = cfg.RoleArn
		}

		if len(cfg.Username) > 0 {
			c.Username = cfg.Username
		}

		if len(cfg.Region) > 0 {
			c.Region = cfg.Region
		}

		if len(cfg.CredProfile) > 0 {
			c.CredProfile = cfg.CredProfile
		}
	}
}

// Validate checks that the current configuration settings are sane.  The organization
// endpoint and application link are required and must be http(s) URLs.
func (c *OktaConfig) Validate() error {
	if len(c.BaseUrl) < 1 {
		return errors.New("missing Okta organization URL (base_url)")
	}

	if len(c.AppUrl) < 1 {
		return errors.New("missing Okta AWS application URL (app_url)")
	}

	for _, u := range []string{c.BaseUrl, c.AppUrl} {
		parsed, err := url.Parse(u)
		if err != nil {
			return err
		}

		if !strings.HasPrefix(parsed.Scheme, "http") {
			return errors.New("Okta URLs must use an http(s) scheme")
		}
	}

	return nil
}

func (c *OktaConfig) handleUrl(u string) (*url.URL, error) {
	if len(u) < 1 {
		return nil, &url.Error{
			Op:  "parse",
			URL: u,
			Err: errors.New("invalid url"),
		}
	}

	return url.Parse(u)
}
