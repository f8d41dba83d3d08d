package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/mmmorris1975/simple-logger/logger"
	"github.com/urfave/cli/v2"

	"github.com/oktatools/okta-creds/client"
	"github.com/oktatools/okta-creds/config"
	"github.com/oktatools/okta-creds/credentials"
)

var (
	log          = logger.StdLogger
	opts         = client.DefaultOptions
	cmdlineCfg   = new(config.OktaConfig)
	cmdlineCreds = new(config.OktaCredentials)

	configResolver config.Resolver = config.DefaultResolver.WithLogger(log)
	clientFactory                  = client.NewClientFactory(configResolver, opts)
)

// App is the struct used to manage the configuration and behavior for the cli handling library.
var App = &cli.App{
	Usage:     "Retrieve temporary AWS credentials using Okta-federated SAML authentication",
	UsageText: fmt.Sprintf("%s [options] [profile]", filepath.Base(os.Args[0])),
	Flags:     append(configFlags, append(sinkFlags, append(sessionFlags, otherFlags...)...)...),

	UseShortOptionHandling: true,
	EnableBashCompletion:   true,

	BashComplete: func(ctx *cli.Context) {
		cli.DefaultAppComplete(ctx)
		bashCompleteProfile(ctx)
	},

	Before: func(ctx *cli.Context) error {
		opts.Logger = log
		log.SetLevel(logger.WARN)

		if verbose, ok := ctx.Value(vFlag.Name).([]bool); ok {
			if len(verbose) > 0 {
				log.SetLevel(logger.DEBUG)

				if len(verbose) > 1 {
					opts.AwsLogMode = aws.LogRequest | aws.LogResponse
				}
			}
		}

		cmdlineCfg.Username = ctx.String(usernameFlag.Name)
		cmdlineCreds.Password = ctx.String(passwordFlag.Name)
		opts.CommandCredentials = cmdlineCreds

		opts.UserAgent = ctx.String(userAgentFlag.Name)
		opts.CookieJarPath = ctx.String(cookieJarFlag.Name)
		opts.PersistentSession = ctx.Bool(persistentSessionFlag.Name) || len(opts.CookieJarPath) > 0
		opts.ForceRolePrompt = ctx.Bool(refreshRoleFlag.Name)
		opts.AccountLookupFile = ctx.String(lookupFileFlag.Name)
		opts.AccountLookup = ctx.Bool(lookupFlag.Name) || len(opts.AccountLookupFile) > 0

		return nil
	},

	Metadata: map[string]interface{}{
		"url": "https://github.com/oktatools/okta-creds",
	},

	Action: execCmd,
}

//nolint:gochecknoinits // kinda need this here
func init() {
	// override built-in version flag to use -V instead of -v (which we want to use for the verbose flag)
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func execCmd(ctx *cli.Context) error {
	profile := resolveOktaProfile(ctx)

	if ctx.Bool(switchFlag.Name) {
		p, err := switchProfile()
		if err != nil {
			return err
		}
		profile = p
	}

	cfg, err := configResolver.Config(profile)
	if err != nil {
		return err
	}
	cfg.MergeIn(cmdlineCfg)

	sinkProfile := ctx.String(awsProfileFlag.Name)
	if len(sinkProfile) < 1 {
		sinkProfile = cfg.CredProfile
	}

	force := ctx.Bool(forceFlag.Name) || ctx.Bool(refreshRoleFlag.Name)

	// offline validity check against the credential file record, valid credentials mean
	// we're done without ever contacting the IdP or AWS
	if len(sinkProfile) > 0 && !force {
		if creds := config.DefaultIniLoader.AwsCredentials(sinkProfile); !creds.Expired(credentials.ExpirationMargin) {
			log.Debugf("credentials for profile %s still valid, skipping refresh", sinkProfile)
			return printCredInfo(ctx, cfg, creds)
		}
	}

	var c client.AwsClient
	c, err = clientFactory.Get(cfg)
	if err != nil {
		return err
	}

	if force {
		refreshCreds(c)
	}

	var creds *credentials.Credentials
	creds, err = c.Credentials()
	if err != nil {
		return err
	}

	saveRole(cfg.ProfileName, c.ResolvedRole())

	if len(sinkProfile) > 0 {
		if err = config.DefaultIniLoader.SaveAwsCredentials(sinkProfile, creds); err != nil {
			return err
		}
		log.Infof("credentials written to profile %s", sinkProfile)
	} else {
		printCreds(buildEnv(cfg.Region, creds))

		if ctx.Bool(cacheFlag.Name) {
			if err = cacheConsoleCreds(creds); err != nil {
				return err
			}
		}
	}

	return printCredInfo(ctx, cfg, creds)
}

func printCredInfo(ctx *cli.Context, cfg *config.OktaConfig, creds *credentials.Credentials) error {
	if ctx.Bool(expFlag.Name) {
		printCredExpiration(creds)
	}

	if ctx.Bool(whoamiFlag.Name) {
		return printCredIdentity(cfg.Region, creds)
	}

	return nil
}

// the profile comes from the flag, then the 1st positional argument, falling back to the
// default section of the configuration file when neither is given.
func resolveOktaProfile(ctx *cli.Context) string {
	if p := ctx.String(oktaProfileFlag.Name); len(p) > 0 {
		return p
	}
	return ctx.Args().First()
}
