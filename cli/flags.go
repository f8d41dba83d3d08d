package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/oktatools/okta-creds/credentials"
)

var configFlags = []cli.Flag{oktaProfileFlag, durationFlag, mfaCodeFlag, mfaFactorFlag, usernameFlag, passwordFlag}
var sinkFlags = []cli.Flag{awsProfileFlag, cacheFlag, forceFlag, refreshRoleFlag}
var sessionFlags = []cli.Flag{cookieJarFlag, persistentSessionFlag, userAgentFlag}
var otherFlags = []cli.Flag{switchFlag, expFlag, whoamiFlag, lookupFlag, lookupFileFlag, vFlag}

/*
 * Config flags - affect/override resolved configuration values.
 */
var oktaProfileFlag = &cli.StringFlag{
	Name:    "okta-profile",
	Aliases: []string{"o"},
	Usage:   "name of the Okta profile section in ~/.okta-aws to use",
	EnvVars: []string{"OKTA_PROFILE"},
}

var durationFlag = &cli.DurationFlag{
	Name:        "duration",
	Aliases:     []string{"d"},
	Usage:       "lifetime of the retrieved role credentials",
	EnvVars:     []string{"CREDENTIALS_DURATION"},
	DefaultText: fmt.Sprintf("%d hour", int64(credentials.AssumeRoleDurationDefault.Hours())),
	Destination: &cmdlineCfg.Duration,
}

var mfaCodeFlag = &cli.StringFlag{
	Name:        "token",
	Aliases:     []string{"t"},
	Usage:       "MFA token code, submitted once without prompting",
	EnvVars:     []string{"MFA_CODE"},
	Destination: &cmdlineCfg.MfaCode,
}

var mfaFactorFlag = &cli.StringFlag{
	Name:        "factor",
	Aliases:     []string{"m"},
	Usage:       "preferred Okta MFA factor type (ex. push, token:software:totp)",
	EnvVars:     []string{"OKTA_MFA_FACTOR"},
	Destination: &cmdlineCfg.MfaFactor,
}

// No Destination, set in the App's Before attribute so env var and flag handling stay consistent.
var usernameFlag = &cli.StringFlag{
	Name:    "username",
	Aliases: []string{"U"},
	Usage:   "username for Okta authentication",
	EnvVars: []string{"OKTA_USERNAME"},
}

// No Destination, set in the App's Before attribute so env var and flag handling stay consistent.
var passwordFlag = &cli.StringFlag{
	Name:    "password",
	Aliases: []string{"P"},
	Usage:   "password for Okta authentication",
	EnvVars: []string{"OKTA_PASSWORD"},
}

/*
 * Sink flags - where the retrieved credentials end up, and cache behavior.
 */
var awsProfileFlag = &cli.StringFlag{
	Name:    "profile",
	Aliases: []string{"p"},
	Usage:   "write credentials to this AWS credential file profile instead of printing export statements",
}

var cacheFlag = &cli.BoolFlag{
	Name:    "cache",
	Aliases: []string{"c"},
	Usage:   "mirror console credentials to the credential cache file",
}

var forceFlag = &cli.BoolFlag{
	Name:    "force",
	Aliases: []string{"f"},
	Usage:   "fetch new credentials even if cached ones are still valid",
}

var refreshRoleFlag = &cli.BoolFlag{
	Name:    "refresh-role",
	Aliases: []string{"r"},
	Usage:   "prompt for the role to assume, ignoring any saved role",
}

/*
 * Session flags - Okta session persistence across runs.
 */
var cookieJarFlag = &cli.StringFlag{
	Name:    "cookie-jar",
	Aliases: []string{"j"},
	Usage:   "file used to store the Okta session cookies",
}

var persistentSessionFlag = &cli.BoolFlag{
	Name:  "persistent-session",
	Usage: "keep the Okta session alive across invocations",
}

var userAgentFlag = &cli.StringFlag{
	Name:  "user-agent",
	Usage: "User-Agent header value sent on requests to Okta",
}

/*
 * Other flags - informational extras and profile switching.
 */
var switchFlag = &cli.BoolFlag{
	Name:    "switch",
	Aliases: []string{"s"},
	Usage:   "choose the Okta profile from the configured profiles",
}

var expFlag = &cli.BoolFlag{
	Name:    "expiration",
	Aliases: []string{"e"},
	Usage:   "show credential expiration time",
}

var whoamiFlag = &cli.BoolFlag{
	Name:    "whoami",
	Aliases: []string{"w"},
	Usage:   "print the AWS identity information for the retrieved credentials",
}

var lookupFlag = &cli.BoolFlag{
	Name:    "lookup",
	Aliases: []string{"l"},
	Usage:   "look up AWS account names to show next to the roles in the role prompt",
}

var lookupFileFlag = &cli.StringFlag{
	Name:  "lookup-file",
	Usage: "file used to cache looked-up AWS account names, implies --lookup",
}
