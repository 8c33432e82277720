package receipt

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// fallbackStore writes to S3 when available and falls back to the local
// store when S3 is disabled or failing.
type fallbackStore struct {
	s3        Store
	local     Store
	s3Prefix  string
	s3Enabled bool
	logger    zerolog.Logger
}

// NewFallbackStore creates a store that tries S3 first, then local disk.
// If s3 is nil, only the local store is used.
func NewFallbackStore(s3 Store, local Store, s3Prefix string, s3Enabled bool, logger zerolog.Logger) Store {
	return &fallbackStore{
		s3:        s3,
		local:     local,
		s3Prefix:  s3Prefix,
		s3Enabled: s3Enabled,
		logger:    logger.With().Str("component", "receipt-fallback-store").Logger(),
	}
}

func (s *fallbackStore) useS3() bool {
	return s.s3Enabled && s.s3 != nil
}

// Put buffers body so the local fallback can replay it after a failed upload.
func (s *fallbackStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if !s.useS3() {
		return s.local.Put(ctx, key, contentType, body)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read receipt body: %w", err)
	}

	s3Key := s.s3Prefix + key
	err = s.s3.Put(ctx, s3Key, contentType, bytes.NewReader(data))
	if err == nil {
		return nil
	}

	s.logger.Warn().
		Err(err).
		Str("s3_key", s3Key).
		Msg("failed to store receipt in S3, falling back to local file system")

	return s.local.Put(ctx, key, contentType, bytes.NewReader(data))
}

func (s *fallbackStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s.useS3() {
		s3Key := s.s3Prefix + key
		rc, err := s.s3.Open(ctx, s3Key)
		if err == nil {
			return rc, nil
		}
		s.logger.Debug().
			Err(err).
			Str("s3_key", s3Key).
			Msg("receipt not readable from S3, trying local file system")
	}

	return s.local.Open(ctx, key)
}
