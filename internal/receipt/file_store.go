package receipt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	root   string
	logger zerolog.Logger
}

// NewFileStore creates a store rooted at dir, creating it when missing.
func NewFileStore(dir string, logger zerolog.Logger) (Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create receipts directory %s: %w", dir, err)
	}
	return &fileStore{
		root:   dir,
		logger: logger.With().Str("component", "receipt-file-store").Logger(),
	}, nil
}

// Put writes to a temporary file first so readers never see partial uploads.
func (s *fileStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	target, err := s.path(key)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("failed to create receipt directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to create temporary receipt file")
		return fmt.Errorf("failed to create receipt file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, readerWithContext(ctx, body))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		s.logger.Error().Err(err).Str("key", key).Msg("failed to write receipt file")
		return fmt.Errorf("failed to write receipt %s: %w", key, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("failed to store receipt %s: %w", key, err)
	}

	s.logger.Info().
		Str("key", key).
		Str("content_type", contentType).
		Int64("bytes", written).
		Msg("receipt stored on local file system")

	return nil
}

func (s *fileStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	target, err := s.path(key)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(target)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open receipt %s: %w", key, err)
	}
	return f, nil
}

func (s *fileStore) path(key string) (string, error) {
	cleaned, ok := cleanKey(key)
	if !ok {
		return "", fmt.Errorf("invalid receipt key %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// ctxReader stops copying once ctx is cancelled.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
