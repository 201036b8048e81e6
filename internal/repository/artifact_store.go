package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Store persists pipeline artifacts keyed by "<user_id>/<file>".
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// FSStore writes artifacts under baseDir, one directory per user. Existing
// artifacts are overwritten on rerun.
type FSStore struct {
	baseDir string
	logger  *zap.Logger
}

func NewFSStore(baseDir string, logger *zap.Logger) *FSStore {
	return &FSStore{
		baseDir: baseDir,
		logger:  logger,
	}
}

func (s *FSStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := filepath.Join(s.baseDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(path, value, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", key, err)
	}

	s.logger.Debug("Artifact saved", zap.String("path", path))
	return nil
}

func (s *FSStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", key, err)
	}
	return data, nil
}
