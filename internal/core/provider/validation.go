// Package provider contains pure validation of cloud provider settings.
// This is part of the Functional Core - all functions are pure with no I/O.
package provider

import (
	"errors"
	"regexp"
)

// =============================================================================
// Credential Validation (Pure - no I/O)
// =============================================================================

var (
	ErrAWSAccessKeyRequired = errors.New("AWS access key ID is required when a secret access key is set")
	ErrAWSSecretKeyRequired = errors.New("AWS secret access key is required when an access key ID is set")
	ErrAWSInvalidRegion     = errors.New("AWS region is not valid")
)

// AWSCredentials represents optional static AWS access credentials. When both
// keys are empty the SDK's default credential chain is used.
type AWSCredentials struct {
	AccessKeyID     string `json:"access_key_id" mapstructure:"access_key_id"`
	SecretAccessKey string `json:"secret_access_key" mapstructure:"secret_access_key"`
	SessionToken    string `json:"session_token" mapstructure:"session_token"`
}

// Static reports whether explicit keys were supplied.
func (c AWSCredentials) Static() bool {
	return c.AccessKeyID != "" || c.SecretAccessKey != ""
}

// ValidateAWSCredentials checks that static keys come as a pair.
func ValidateAWSCredentials(creds AWSCredentials) error {
	if creds.AccessKeyID == "" && creds.SecretAccessKey != "" {
		return ErrAWSAccessKeyRequired
	}
	if creds.AccessKeyID != "" && creds.SecretAccessKey == "" {
		return ErrAWSSecretKeyRequired
	}
	return nil
}

var regionPattern = regexp.MustCompile(`^[a-z]{2}(-gov|-iso[a-z]*)?-[a-z]+-\d+$`)

// ValidateAWSRegion accepts an empty region (resolved from the environment by
// the SDK) or a well-formed region name such as "eu-west-1".
func ValidateAWSRegion(region string) error {
	if region == "" || regionPattern.MatchString(region) {
		return nil
	}
	return ErrAWSInvalidRegion
}
