package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SourceExt is the file extension of marq sources.
const SourceExt = ".mq"

// WriteSource stores text under path. Rewriting a path keeps its position
// in the listing order.
func (s *Store) WriteSource(ctx context.Context, path, text string) error {
	sum := sha256.Sum256([]byte(text))
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sources (path, text, hash, seq)
		VALUES (?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM sources))
		ON CONFLICT(path) DO UPDATE SET text = excluded.text, hash = excluded.hash
	`, path, text, hex.EncodeToString(sum[:]))
	if err != nil {
		return fmt.Errorf("write source %s: %w", path, err)
	}
	return nil
}

// SetMeta stores a bundle property.
func (s *Store) SetMeta(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set meta %s: %w", key, err)
	}
	return nil
}

// BundleID returns the bundle's identity, assigning a UUIDv7 on first use.
func (s *Store) BundleID(ctx context.Context) (string, error) {
	id, err := s.Meta(ctx, MetaBundleID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}
	generated, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate bundle id: %w", err)
	}
	if err := s.SetMeta(ctx, MetaBundleID, generated.String()); err != nil {
		return "", err
	}
	return generated.String(), nil
}

// ImportDir stores every source file below dir. Paths are recorded relative
// to dir with a leading slash, and dir becomes the bundle root "/".
// Returns the number of files written.
func (s *Store) ImportDir(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, SourceExt) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := s.WriteSource(ctx, "/"+filepath.ToSlash(rel), string(data)); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("import %s: %w", dir, err)
	}
	if err := s.SetMeta(ctx, MetaRoot, "/"); err != nil {
		return count, err
	}
	if _, err := s.BundleID(ctx); err != nil {
		return count, err
	}
	return count, nil
}
