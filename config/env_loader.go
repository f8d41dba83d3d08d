package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DefaultEnvLoader creates a default EnvLoader type to read configuration and credentials from environment variables.
var DefaultEnvLoader = new(envLoader)

type envLoader bool

// Config is the implementation of the Loader interface.  The profile and sources arguments are ignored, and the value
// is returned via delegation to the EnvConfig() method.
func (l *envLoader) Config(string, ...interface{}) (*OktaConfig, error) {
	return l.EnvConfig()
}

// Credentials is the implementation of the Loader interface.  The profile and sources arguments are ignored, and the
// value is returned via delegation to the EnvCredentials() method.
func (l *envLoader) Credentials(string, ...interface{}) (*OktaCredentials, error) {
	return l.EnvCredentials()
}

// EnvConfig loads fields in the OktaConfig type which support environment variables.
func (l *envLoader) EnvConfig() (*OktaConfig, error) {
	c := new(OktaConfig)
	if err := resolveEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

// EnvCredentials loads the Okta password from environment variables.
func (l *envLoader) EnvCredentials() (*OktaCredentials, error) {
	c := new(OktaCredentials)
	if err := resolveEnv(c); err != nil {
		return nil, err
	}
	return c, nil
}

func resolveEnv(t interface{}) error {
	tv := reflect.ValueOf(t)
	if tv.Kind() != reflect.Ptr {
		return errors.New("not a pointer")
	}
	tt := tv.Elem().Type()

	for i := 0; i < tt.NumField(); i++ {
		ft := tt.Field(i)
		if envTag, ok := ft.Tag.Lookup("env"); ok && envTag != "-" {
			val := getEnvVar(envTag)
			if err := setVal(tv.Elem().Field(i), val); err != nil {
				return err
			}
		}
	}
	return nil
}

func getEnvVar(tag string) string {
	// loop through tag value of potential env vars to use, return the 1st one which is set
	for _, envVar := range strings.Split(tag, `,`) {
		if envVal, ok := os.LookupEnv(envVar); ok && len(envVal) > 0 {
			return envVal
		}
	}
	return ""
}

func setVal(field reflect.Value, value string) error {
	switch field.Type().Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int64:
		i := int64(0)
		if len(value) > 0 {
			// could be an actual Int64, or an alias ... like time.Duration
			n, err := strconv.ParseInt(value, 0, 64)
			if err != nil {
				d, err := time.ParseDuration(value)
				if err != nil {
					return err
				}
				n = int64(d)
			}
			i = n
		}
		field.SetInt(i)
	default:
		return fmt.Errorf("unknown type: %s", field.Type().Kind().String())
	}
	return nil
}
