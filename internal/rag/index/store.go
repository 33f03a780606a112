// Package index implements the durable per-owner nearest-neighbor
// index. One snapshot file per owner, written atomically; mutations
// for a given owner are serialized, owners never block each other.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/docbrief/nlp-engine/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const snapshotVersion = 1

var unsafeOwnerChars = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)

// Config controls the store. With Persist disabled the store behaves
// as a pure in-memory index (the per-request default); snapshots are
// neither written nor read.
type Config struct {
	Dir       string
	Dimension int
	Persist   bool
	CacheTTL  time.Duration
}

// snapshot is the on-disk artifact: vectors, source text, ordinals and
// a dimension/version tag.
type snapshot struct {
	OwnerID   string         `json:"owner_id"`
	Dimension int            `json:"dimension"`
	Version   int            `json:"version"`
	Chunks    []entity.Chunk `json:"chunks"`
}

// ownerIndex holds a published, immutable chunk slice. Append swaps in
// a fresh slice under the owner's write lock, so concurrent searches
// never observe a partially-applied mutation.
type ownerIndex struct {
	mu     sync.RWMutex
	chunks []entity.Chunk
}

func (oi *ownerIndex) load() []entity.Chunk {
	oi.mu.RLock()
	defer oi.mu.RUnlock()
	return oi.chunks
}

func (oi *ownerIndex) publish(chunks []entity.Chunk) {
	oi.mu.Lock()
	oi.chunks = chunks
	oi.mu.Unlock()
}

// Store is the VectorIndexStore: open/append/search/reset keyed by
// owner id, with loaded indexes cached in memory.
type Store struct {
	cfg    Config
	cache  *gocache.Cache
	logger *zap.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if cfg.Dimension <= 0 {
		return nil, fmt.Errorf("index dimension must be positive, got %d", cfg.Dimension)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	if cfg.Persist {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index dir: %w", err)
		}
	}
	return &Store{
		cfg:    cfg,
		cache:  gocache.New(cfg.CacheTTL, cfg.CacheTTL/3),
		logger: logger,
		locks:  map[string]*sync.Mutex{},
	}, nil
}

// Dimension returns the fixed embedding dimension of the store.
func (s *Store) Dimension() int { return s.cfg.Dimension }

// ownerLock returns the single-writer mutex for an owner.
func (s *Store) ownerLock(ownerID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[ownerID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[ownerID] = l
	}
	return l
}

// Open loads the owner's persisted index into memory, creating an
// empty one if none exists, and returns the number of chunks held.
func (s *Store) Open(ctx context.Context, ownerID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return len(s.openIndex(ownerID).load()), nil
}

// Append adds chunks to the owner's index and persists a new snapshot.
// Ordinals are reassigned so the stored sequence stays gap-free and
// monotonic across multiple ingestions.
func (s *Store) Append(ctx context.Context, ownerID string, chunks []entity.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}
	for _, c := range chunks {
		if len(c.Embedding) != 0 && len(c.Embedding) != s.cfg.Dimension {
			return &entity.IndexIOError{OwnerID: ownerID, Op: "append",
				Err: fmt.Errorf("embedding dimension %d, index dimension %d", len(c.Embedding), s.cfg.Dimension)}
		}
	}

	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	idx := s.openIndexLocked(ownerID)
	existing := idx.load()

	next := make([]entity.Chunk, 0, len(existing)+len(chunks))
	next = append(next, existing...)
	for i, c := range chunks {
		c.OwnerID = ownerID
		c.Ordinal = len(existing) + i
		next = append(next, c)
	}

	if s.cfg.Persist {
		if err := s.writeSnapshot(ownerID, next); err != nil {
			return &entity.IndexIOError{OwnerID: ownerID, Op: "append", Err: err}
		}
	}
	idx.publish(next)
	return nil
}

// Search returns the k chunks most similar to the query vector,
// descending by cosine similarity, earlier ordinal winning ties.
func (s *Store) Search(ctx context.Context, ownerID string, query []float32, k int) ([]entity.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return TopK(s.openIndex(ownerID).load(), query, k), nil
}

// Reset discards every chunk the owner has, in memory and on disk.
func (s *Store) Reset(ctx context.Context, ownerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()

	s.cache.Delete(ownerID)
	if !s.cfg.Persist {
		return nil
	}
	if err := os.Remove(s.snapshotPath(ownerID)); err != nil && !os.IsNotExist(err) {
		return &entity.IndexIOError{OwnerID: ownerID, Op: "reset", Err: err}
	}
	return nil
}

// openIndex returns the cached in-memory index for the owner, loading
// the snapshot lazily. A corrupt or mismatched snapshot is logged and
// replaced by a fresh empty index rather than failing the request.
func (s *Store) openIndex(ownerID string) *ownerIndex {
	if cached, ok := s.cache.Get(ownerID); ok {
		return cached.(*ownerIndex)
	}
	lock := s.ownerLock(ownerID)
	lock.Lock()
	defer lock.Unlock()
	return s.openIndexLocked(ownerID)
}

// openIndexLocked is the miss path of openIndex. The caller must hold
// the owner's lock: loading and installing the index under it keeps a
// single ownerIndex live per owner, so a slow loader can never clobber
// an index another goroutine has already appended to.
func (s *Store) openIndexLocked(ownerID string) *ownerIndex {
	if cached, ok := s.cache.Get(ownerID); ok {
		return cached.(*ownerIndex)
	}

	idx := &ownerIndex{}
	if s.cfg.Persist {
		chunks, err := s.readSnapshot(ownerID)
		if err != nil {
			s.logger.Warn("index snapshot unreadable, starting fresh",
				zap.String("owner_id", ownerID),
				zap.Error(&entity.IndexIOError{OwnerID: ownerID, Op: "load", Err: err}),
			)
		} else {
			idx.chunks = chunks
		}
	}
	s.cache.Set(ownerID, idx, gocache.DefaultExpiration)
	return idx
}

func (s *Store) snapshotPath(ownerID string) string {
	safe := unsafeOwnerChars.ReplaceAllString(ownerID, "_")
	return filepath.Join(s.cfg.Dir, safe+".json")
}

func (s *Store) readSnapshot(ownerID string) ([]entity.Chunk, error) {
	data, err := os.ReadFile(s.snapshotPath(ownerID))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snap.Version, snapshotVersion)
	}
	if snap.Dimension != s.cfg.Dimension {
		return nil, fmt.Errorf("snapshot dimension %d, index dimension %d", snap.Dimension, s.cfg.Dimension)
	}
	return snap.Chunks, nil
}

// writeSnapshot persists atomically: a temp file in the same directory
// is renamed over the previous snapshot, so a crash mid-write never
// corrupts the durable copy.
func (s *Store) writeSnapshot(ownerID string, chunks []entity.Chunk) error {
	data, err := json.Marshal(snapshot{
		OwnerID:   ownerID,
		Dimension: s.cfg.Dimension,
		Version:   snapshotVersion,
		Chunks:    chunks,
	})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	path := s.snapshotPath(ownerID)
	tmp, err := os.CreateTemp(s.cfg.Dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("swap snapshot: %w", err)
	}
	return nil
}
