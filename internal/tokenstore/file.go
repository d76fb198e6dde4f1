package tokenstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore stores the token record as JSON at <dir>/meshstack_token.json.
// Existing files are truncated in place (no temp file, no rename).
type FileStore struct {
	filePath string
}

// Compile-time check to ensure FileStore implements TokenStore
var _ TokenStore = (*FileStore)(nil)

// NewFileStore creates a FileStore writing into dir. The directory must exist;
// it is owned by the runner and never created here.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	filePath, err := filepath.Abs(filepath.Join(dir, FileName))
	if err != nil {
		return nil, fmt.Errorf("resolving token file path: %w", err)
	}

	return &FileStore{
		filePath: filePath,
	}, nil
}

// Path returns the absolute path of the token file.
func (f *FileStore) Path() string {
	return f.filePath
}

// Read decodes the token record from disk.
func (f *FileStore) Read(ctx context.Context) (TokenRecord, error) {
	if err := ctx.Err(); err != nil {
		return TokenRecord{}, err
	}

	data, err := os.ReadFile(f.filePath)
	if err != nil {
		return TokenRecord{}, err
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return TokenRecord{}, fmt.Errorf("decoding %s: %w", f.filePath, err)
	}
	return record, nil
}

// Write encodes the record and overwrites the token file with 0600 permissions.
// An empty token is rejected before anything touches the disk.
func (f *FileStore) Write(ctx context.Context, record TokenRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if record.Token == "" {
		return ErrEmptyToken
	}

	// Characters like & in a base URL query are written as-is, not as \u0026
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("encoding token record: %w", err)
	}
	data := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))

	// WriteFile keeps the mode of an existing file, so enforce it afterwards
	if err := os.WriteFile(f.filePath, data, 0600); err != nil {
		return err
	}
	return os.Chmod(f.filePath, 0600)
}

// Persist writes the record and reads it back as confirmation.
// Returns the path of the written file.
func Persist(ctx context.Context, store TokenStore, record TokenRecord) (string, error) {
	if err := store.Write(ctx, record); err != nil {
		return "", fmt.Errorf("writing token file: %w", err)
	}

	stored, err := store.Read(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrVerifyFailed, err)
	}
	if stored != record {
		return "", fmt.Errorf("%w: content mismatch in %s", ErrVerifyFailed, store.Path())
	}

	return store.Path(), nil
}
