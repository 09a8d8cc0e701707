// Package store opens the configured artifact backend and moves encoded
// model bundles in and out of it.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"carprice/db/artifact"
	"carprice/db/clickhouse"
	"carprice/db/postgres"
	"carprice/db/s3"
	bundle "carprice/decision/artifact"
	"carprice/pkg/platform"
)

// Open returns the backend named by cfg.Backend.
func Open(ctx context.Context, cfg platform.ArtifactConfig, logger zerolog.Logger) (artifact.Store, error) {
	logger = logger.With().Str("backend", cfg.Backend).Logger()

	switch cfg.Backend {
	case platform.BackendFile, "":
		logger.Debug().Str("path", cfg.Path).Msg("using file artifact store")
		return artifact.NewFileStore(cfg.Path), nil

	case platform.BackendPostgres:
		s, err := postgres.NewStore(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		logger.Debug().Msg("connected to postgres artifact store")
		return s, nil

	case platform.BackendClickHouse:
		ch := clickhouse.DefaultConfig()
		ch.Host = cfg.ClickHouse.Host
		if cfg.ClickHouse.Port != 0 {
			ch.Port = cfg.ClickHouse.Port
		}
		if cfg.ClickHouse.Database != "" {
			ch.Database = cfg.ClickHouse.Database
		}
		if cfg.ClickHouse.Username != "" {
			ch.Username = cfg.ClickHouse.Username
		}
		ch.Password = cfg.ClickHouse.Password
		s, err := clickhouse.NewStore(ctx, ch)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("host", ch.Host).Int("port", ch.Port).Msg("connected to clickhouse artifact store")
		return s, nil

	case platform.BackendS3:
		s, err := s3.NewStore(ctx, cfg.Bucket, cfg.Key, cfg.Region, cfg.Endpoint)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("bucket", cfg.Bucket).Str("key", cfg.Key).Msg("using s3 artifact store")
		return s, nil

	default:
		return nil, fmt.Errorf("%w: %q", platform.ErrInvalidBackend, cfg.Backend)
	}
}

// PublishBundle encodes b and publishes it. It returns the content hash
// recorded in the envelope.
func PublishBundle(ctx context.Context, s artifact.Store, b *bundle.Bundle) (string, error) {
	blob, err := bundle.Encode(b)
	if err != nil {
		return "", fmt.Errorf("encode artifact: %w", err)
	}
	digest, err := bundle.Digest(blob)
	if err != nil {
		return "", err
	}
	if err := s.Publish(ctx, blob); err != nil {
		return "", fmt.Errorf("publish artifact: %w", err)
	}
	return digest, nil
}

// LoadBundle loads the published artifact and verifies it.
func LoadBundle(ctx context.Context, s artifact.Store) (*bundle.Bundle, error) {
	blob, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artifact: %w", err)
	}
	b, err := bundle.Decode(blob)
	if err != nil {
		return nil, fmt.Errorf("decode artifact: %w", err)
	}
	return b, nil
}
