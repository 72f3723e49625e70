package provider

import (
	"errors"

	smithy "github.com/aws/smithy-go"
)

// APIErrorCode returns the AWS error code carried by err, or "" when err did
// not come from an AWS API.
func APIErrorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}

// logAttrs returns slog key/value pairs describing err.
func logAttrs(err error) []any {
	attrs := []any{"error", err}
	if code := APIErrorCode(err); code != "" {
		attrs = append(attrs, "error_code", code)
	}
	return attrs
}
