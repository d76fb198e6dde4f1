package tokenstore

import (
	"errors"
	"os"
)

// FileName is the well-known name of the token file consumed by downstream steps.
const FileName = "meshstack_token.json"

var (
	// ErrEmptyToken is returned when a record without token is written.
	ErrEmptyToken = errors.New("token is empty")

	// ErrVerifyFailed is returned when the record read back differs from the one written.
	ErrVerifyFailed = errors.New("token file verification failed")
)

// TokenRecord is the JSON document handed to later pipeline steps.
type TokenRecord struct {
	Token   string `json:"token"`
	BaseURL string `json:"baseUrl"`
}

// ResolveDir returns runnerTemp if set, otherwise the OS temporary directory.
func ResolveDir(runnerTemp string) string {
	if runnerTemp != "" {
		return runnerTemp
	}
	return os.TempDir()
}
