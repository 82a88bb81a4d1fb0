package loam

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
	"github.com/aretw0/todomvc/pkg/domain"
)

// Store keeps key/value pairs as documents in a Loam repository.
// Each key maps to one document whose body is the raw value.
// Deleted keys are kept as tombstones so the history stays readable.
type Store struct {
	Repo *loam.TypedRepository[EntryMetadata]
}

// New creates a new Loam backed store.
func New(repo *loam.TypedRepository[EntryMetadata]) *Store {
	return &Store{Repo: repo}
}

// Open initializes a Loam repository at dir and wraps it.
func Open(dir string) (*Store, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve loam dir: %w", err)
	}
	repo, err := loam.Init(abs, loam.WithVersioning(false), loam.WithForceTemp(false))
	if err != nil {
		return nil, fmt.Errorf("loam init failed for %s: %w", abs, err)
	}
	return New(loam.NewTypedRepository[EntryMetadata](repo)), nil
}

// Get returns the value for key, or domain.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	id, live, err := s.lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	if !live {
		return nil, domain.ErrKeyNotFound
	}

	doc, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", key, err)
	}
	return []byte(doc.Content), nil
}

// Set writes value under key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	err := s.Repo.Save(ctx, &loam.DocumentModel[EntryMetadata]{
		ID:      documentID(key),
		Content: string(value),
		Data:    EntryMetadata{Key: key},
	})
	if err != nil {
		return fmt.Errorf("loam save failed for %s: %w", key, err)
	}
	return nil
}

// Delete marks key as removed. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, live, err := s.lookup(ctx, key)
	if err != nil || !live {
		return err
	}
	err = s.Repo.Save(ctx, &loam.DocumentModel[EntryMetadata]{
		ID:   documentID(key),
		Data: EntryMetadata{Key: key, Deleted: true},
	})
	if err != nil {
		return fmt.Errorf("loam delete failed for %s: %w", key, err)
	}
	return nil
}

// Keys lists the live keys in sorted order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}
	keys := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.Data.Deleted {
			continue
		}
		keys = append(keys, keyOf(doc.ID, doc.Data))
	}
	sort.Strings(keys)
	return keys, nil
}

// lookup scans the listing for key. Loam reports missing documents as
// plain errors, so existence is decided from the listing instead.
func (s *Store) lookup(ctx context.Context, key string) (string, bool, error) {
	docs, err := s.Repo.List(ctx)
	if err != nil {
		return "", false, fmt.Errorf("loam list failed: %w", err)
	}
	for _, doc := range docs {
		if keyOf(doc.ID, doc.Data) == key {
			return doc.ID, !doc.Data.Deleted, nil
		}
	}
	return "", false, nil
}

func keyOf(docID string, meta EntryMetadata) string {
	if meta.Key != "" {
		return meta.Key
	}
	raw := trimExtension(filepath.Base(docID))
	if k, err := url.PathUnescape(raw); err == nil {
		return k
	}
	return raw
}

func documentID(key string) string {
	return url.PathEscape(key)
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	return strings.TrimSuffix(id, ext)
}
