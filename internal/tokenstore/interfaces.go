package tokenstore

import "context"

// TokenStore reads and writes the token record.
type TokenStore interface {
	// Read returns the stored record. Returns error if the record is missing or malformed.
	Read(ctx context.Context) (TokenRecord, error)

	// Write persists the record, replacing any previous one.
	Write(ctx context.Context, record TokenRecord) error

	// Path returns where the record is stored.
	Path() string
}
