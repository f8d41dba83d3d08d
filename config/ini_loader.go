package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mitchellh/go-homedir"
	"gopkg.in/ini.v1"

	"github.com/oktatools/okta-creds/credentials"
)

// DefaultIniLoader creates a default Loader type to gather configuration and credentials from ini-style data sources.
var DefaultIniLoader = new(iniLoader)

type iniLoader bool

// Config loads fields in the OktaConfig type which support ini-style configuration. The section name to load is
// specified with the profile argument.  If the profile argument is empty, the "default" section will be parsed and
// loaded. An optional variadic sources argument can be provided which can be any of the supported go-ini data source
// types.  If no sources are specified, the default configuration file (~/.okta-aws) is used, unless overridden with
// the OKTA_CONFIG_FILE environment variable.
func (l *iniLoader) Config(profile string, sources ...interface{}) (*OktaConfig, error) {
	file, err := resolveConfigSources(sources...)
	if err != nil {
		return nil, err
	}

	c := new(OktaConfig)
	if len(profile) < 1 {
		profile = ini.DefaultSection
	} else {
		// unconditionally attempt to load default section config first
		_ = file.Section(ini.DefaultSection).MapTo(c)
	}

	s, err := lookupProfile(file, profile)
	if err != nil {
		return c, err
	}

	pc := new(OktaConfig)
	if err = s.MapTo(pc); err != nil {
		return c, err
	}
	c.MergeIn(pc)

	c.ProfileName = profile
	return c, nil
}

// Credentials loads the Okta password from ini-style configuration. The section name to load is specified with the
// profile argument.  If the profile argument is empty, the "default" section will be parsed and loaded.  If no sources
// are specified, the default configuration file (~/.okta-aws) is used, unless overridden with the OKTA_CONFIG_FILE
// environment variable.
func (l *iniLoader) Credentials(profile string, sources ...interface{}) (*OktaCredentials, error) {
	file, err := resolveConfigSources(sources...)
	if err != nil {
		return nil, err
	}

	if len(profile) < 1 {
		profile = strings.ToLower(ini.DefaultSection)
	}

	s, err := lookupProfile(file, profile)
	if err != nil {
		return nil, err
	}

	c := new(OktaCredentials)
	if err = s.MapTo(c); err != nil {
		return nil, err
	}

	return c, nil
}

// Profiles enumerates the section (profile) names found in the configuration file, sorted
// lexically so interactive profile switching enumerates a stable ordering.
func (l *iniLoader) Profiles(sources ...interface{}) ([]string, error) {
	file, err := resolveConfigSources(sources...)
	if err != nil {
		return nil, err
	}

	profiles := make([]string, 0)
	for _, s := range file.Sections() {
		if s.Name() == ini.DefaultSection {
			continue
		}
		profiles = append(profiles, strings.TrimPrefix(s.Name(), "profile "))
	}

	sort.Strings(profiles)
	return profiles, nil
}

// SaveRole writes roleArn as the profile's "role" key in the configuration file, so later
// runs can reuse the choice without prompting.  The rest of the profile is left untouched.
func (l *iniLoader) SaveRole(profile, roleArn string) error {
	src := oktaConfigFile()

	f, err := loadOrCreate(src)
	if err != nil {
		return err
	}

	if len(profile) < 1 {
		profile = ini.DefaultSection
	}

	s, err := lookupProfile(f, profile)
	if err != nil {
		s = f.Section(profile)
	}
	s.Key("role").SetValue(roleArn)

	return writeFile(f, src, 0600)
}

// SaveAwsCredentials upserts the credential record into the AWS shared credentials file
// (AWS_SHARED_CREDENTIALS_FILE honored), keyed by profile name.  The record is written via
// temp file and rename, so concurrent readers see either the old complete record or the
// new complete record, never a partial one.
func (l *iniLoader) SaveAwsCredentials(profile string, cred *credentials.Credentials) error {
	if cred == nil || !cred.Value().HasKeys() {
		return credentials.ErrInvalidCredentials
	}

	src := awsCredentialsFile()

	f, err := loadOrCreate(src)
	if err != nil {
		return err
	}

	if err = f.Section(profile).ReflectFrom(cred); err != nil {
		return err
	}

	return writeFile(f, src, 0600)
}

// AwsCredentials reads the credential record for the named profile from the AWS shared
// credentials file.  A missing file or section returns empty (and therefore expired)
// credentials rather than an error, since absence simply means a full issuance is needed.
func (l *iniLoader) AwsCredentials(profile string, sources ...interface{}) *credentials.Credentials {
	c := new(credentials.Credentials)

	file, err := resolveCredentialSources(sources...)
	if err != nil {
		return c
	}

	s, err := file.GetSection(profile)
	if err != nil {
		return c
	}

	if err = s.MapTo(c); err != nil {
		return new(credentials.Credentials)
	}

	return c
}

func loadOrCreate(src string) (*ini.File, error) {
	f, err := ini.Load(src)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		f = ini.Empty()
	}
	return f, nil
}

func writeFile(f *ini.File, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0750); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), fmt.Sprintf("%s.*", filepath.Base(dst)))
	if err != nil {
		return err
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err = f.SaveTo(tmp.Name()); err != nil {
		return err
	}
	_ = tmp.Close()

	if err = os.Rename(tmp.Name(), dst); err == nil {
		_ = os.Chmod(dst, mode)
	}

	return err
}

func oktaConfigFile() string {
	if e, ok := os.LookupEnv("OKTA_CONFIG_FILE"); ok {
		return e
	}

	home, err := homedir.Dir()
	if err != nil {
		return ".okta-aws"
	}
	return filepath.Join(home, ".okta-aws")
}

func awsCredentialsFile() string {
	if e, ok := os.LookupEnv("AWS_SHARED_CREDENTIALS_FILE"); ok {
		return e
	}

	home, err := homedir.Dir()
	if err != nil {
		return filepath.Join(".aws", "credentials")
	}
	return filepath.Join(home, ".aws", "credentials")
}

func resolveConfigSources(sources ...interface{}) (*ini.File, error) {
	f := ini.Empty()

	if len(sources) < 1 {
		src := oktaConfigFile()
		sources = []interface{}{src}
		logger.Debugf("using configuration source %s", src)
	}

	for _, s := range sources {
		if err := f.Append(s); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func resolveCredentialSources(sources ...interface{}) (*ini.File, error) {
	f := ini.Empty()

	if len(sources) < 1 {
		src := awsCredentialsFile()
		sources = []interface{}{src}
		logger.Debugf("using credentials source %s", src)
	}

	for _, s := range sources {
		if err := f.Append(s); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func lookupProfile(f *ini.File, profile string) (*ini.Section, error) {
	s, err := f.GetSection(profile)
	if err != nil {
		// try looking up 'profile name' before failing
		return f.GetSection(fmt.Sprintf("profile %s", profile))
	}
	return s, err
}
