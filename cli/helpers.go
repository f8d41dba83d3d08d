package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"

	"github.com/oktatools/okta-creds/client"
	"github.com/oktatools/okta-creds/config"
	"github.com/oktatools/okta-creds/credentials"
	"github.com/oktatools/okta-creds/credentials/cache"
)

const consoleCacheFile = ".okta-credentials.cache"

// we're only clearing the cached AWS STS credentials for the profile, external IdP session
// state is left alone.  There is a non-zero chance you may need to re-authenticate if your
// Okta session expired in the meantime.
func refreshCreds(c client.AwsClient) {
	if err := c.ClearCache(); err != nil {
		log.Warningf("failed to clear cache: %v", err)
	}
}

// write the chosen role back to the profile section so the next run skips the prompt.  A
// write failure only costs a prompt next time, so it is not fatal.
func saveRole(profile string, resolved *client.ResolvedRole) {
	if resolved == nil || resolved.Source == client.RoleSourceConfigured {
		return
	}

	if err := config.DefaultIniLoader.SaveRole(profile, resolved.RoleArn); err != nil {
		log.Warningf("failed to save role %s: %v", resolved.RoleArn, err)
	}
}

func switchProfile() (string, error) {
	profiles, err := config.DefaultIniLoader.Profiles()
	if err != nil {
		return "", err
	}

	switch len(profiles) {
	case 0:
		return "", errors.New("no Okta profiles configured")
	case 1:
		return profiles[0], nil
	default:
		idx, err := opts.RoleSelector.ReadInput("Please choose the Okta profile to use", profiles)
		if err != nil {
			return "", err
		}
		return profiles[idx], nil
	}
}

func buildEnv(region string, creds *credentials.Credentials) map[string]string {
	env := creds.Env()

	if len(region) > 0 {
		env["AWS_REGION"] = region
		env["AWS_DEFAULT_REGION"] = region
	}

	return env
}

func printCreds(env map[string]string) {
	format := "%s %s='%s'\n"
	exportToken := "export"

	// SHELL env var is not set by default in "normal" Windows cmd.exe and PowerShell sessions.
	// If we detect it, assume we're running under something like git-bash (or maybe Cygwin?)
	// and fall through to using linux-style env var setting syntax
	if runtime.GOOS == "windows" && len(os.Getenv("SHELL")) < 1 {
		exportToken = "set"
		format = "%s %s=%s\n"
	}

	for k, v := range env {
		fmt.Printf(format, exportToken, k, v)
	}
}

// mirror the console credentials into the cache file so other tooling (and later runs) can
// pick them up without hitting the IdP.
func cacheConsoleCreds(creds *credentials.Credentials) error {
	home, err := homedir.Dir()
	if err != nil {
		return err
	}

	return cache.NewFileCredentialCache(filepath.Join(home, consoleCacheFile)).Store(creds)
}

func printCredExpiration(creds *credentials.Credentials) {
	var msg string

	exp := creds.Expiration
	if exp.IsZero() {
		// honestly, this should _never_ happen, since it goes against the entire reason for this program
		msg = "credentials will not expire"
	} else {
		format := exp.Format("2006-01-02 15:04:05")
		hmn := humanize.Time(exp)

		tense := "will expire"
		if exp.Before(time.Now()) {
			tense = "expired"
		}

		msg = fmt.Sprintf("Credentials %s on %s (%s)", tense, format, hmn)
	}

	_, _ = fmt.Fprintln(os.Stderr, msg)
}

func printCredIdentity(region string, creds *credentials.Credentials) error {
	cfg := aws.Config{
		Region: region,
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return creds.Value(), nil
		}),
	}

	id, err := sts.NewFromConfig(cfg).GetCallerIdentity(context.Background(), new(sts.GetCallerIdentityInput))
	if err != nil {
		return err
	}

	log.Infof("{UserId: %s, Account: %s, Arn: %s}", *id.UserId, *id.Account, *id.Arn)
	return nil
}

func bashCompleteProfile(ctx *cli.Context) {
	if ctx.NArg() > 0 {
		return
	}

	profiles, err := config.DefaultIniLoader.Profiles()
	if err != nil {
		log.Debugf("completion error: %v", err)
		return
	}

	for _, p := range profiles {
		fmt.Println(p)
	}
}
