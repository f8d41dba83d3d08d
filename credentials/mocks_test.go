package credentials

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/aws-sdk-go-v2/service/sts/types"
)

// stsMock provides a mock STS client used for testing.  Calls counts the number of
// AssumeRoleWithSAML requests so tests can verify cache behavior.
type stsMock struct {
	stsApi
	Calls int
}

// AssumeRoleWithSAML implements the AWS API for getting role credentials using SAML for testing.
func (m *stsMock) AssumeRoleWithSAML(_ context.Context, in *sts.AssumeRoleWithSAMLInput, _ ...func(*sts.Options)) (*sts.AssumeRoleWithSAMLOutput, error) {
	m.Calls++

	d, err := validateDuration(in.DurationSeconds)
	if err != nil {
		return nil, err
	}

	if in.RoleArn == nil || len(*in.RoleArn) < 1 {
		return nil, errors.New("InvalidParameter: RoleArn")
	}

	if in.PrincipalArn == nil || len(*in.PrincipalArn) < 1 {
		return nil, errors.New("InvalidParameter: PrincipalArn")
	}

	if in.SAMLAssertion == nil || len(*in.SAMLAssertion) < 20 {
		return nil, errors.New("InvalidParameter: SAMLAssertion")
	}

	return &sts.AssumeRoleWithSAMLOutput{Credentials: buildCredentials(d)}, nil
}

func validateDuration(d *int32) (time.Duration, error) {
	if d != nil {
		t := time.Duration(*d) * time.Second
		if t < 900*time.Second || t > 12*time.Hour {
			return time.Duration(0), errors.New("InvalidParameter: DurationSeconds")
		}
		return t, nil
	}
	return 1 * time.Hour, nil
}

func buildCredentials(d time.Duration) *types.Credentials {
	exp := time.Now().Add(d)
	return &types.Credentials{
		AccessKeyId:     aws.String("mockAK"),
		SecretAccessKey: aws.String("mockSK"),
		SessionToken:    aws.String(fmt.Sprintf("mockST-%d", exp.Unix())),
		Expiration:      &exp,
	}
}

// memCredCache is an in-memory CredentialCacher for testing.
type memCredCache struct {
	creds *Credentials
}

func (c *memCredCache) Load() *Credentials {
	if c.creds == nil {
		c.creds = new(Credentials)
	}
	return c.creds
}

func (c *memCredCache) Store(creds *Credentials) error {
	c.creds = creds
	return nil
}

func (c *memCredCache) Clear() error {
	c.creds = nil
	return nil
}
