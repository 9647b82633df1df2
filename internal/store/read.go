package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Meta keys.
const (
	MetaBundleID = "bundle_id"
	MetaRoot     = "root"
)

// Source is one stored source file.
type Source struct {
	Path string
	Text string
	Hash string // hex SHA-256 of Text
	Seq  int64
}

// ReadSource returns the source stored under path.
// Returns ErrNotFound if there is none.
func (s *Store) ReadSource(ctx context.Context, path string) (Source, error) {
	var src Source
	err := s.db.QueryRowContext(ctx, `
		SELECT path, text, hash, seq FROM sources WHERE path = ?
	`, path).Scan(&src.Path, &src.Text, &src.Hash, &src.Seq)
	if errors.Is(err, sql.ErrNoRows) {
		return Source{}, fmt.Errorf("source %s: %w", path, ErrNotFound)
	}
	if err != nil {
		return Source{}, fmt.Errorf("read source %s: %w", path, err)
	}
	return src, nil
}

// ListSources returns every stored source in insertion order.
// Returns an empty slice (not nil) for an empty bundle.
func (s *Store) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT path, text, hash, seq FROM sources
		ORDER BY seq ASC, path ASC COLLATE BINARY
	`)
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	sources := []Source{}
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Path, &src.Text, &src.Hash, &src.Seq); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sources: %w", err)
	}
	return sources, nil
}

// Meta returns a bundle property.
// Returns ErrNotFound if the key is unset.
func (s *Store) Meta(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read meta %s: %w", key, err)
	}
	return value, nil
}
