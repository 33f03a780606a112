package index

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testStore(t *testing.T, persist bool) *Store {
	t.Helper()
	s, err := NewStore(Config{
		Dir:       t.TempDir(),
		Dimension: 4,
		Persist:   persist,
		CacheTTL:  time.Minute,
	}, zap.NewNop())
	require.NoError(t, err)
	return s
}

func chunkWithVec(text string, vec []float32) entity.Chunk {
	return entity.Chunk{ID: text, Text: text, Embedding: vec}
}

func TestStore_AppendAndSearch(t *testing.T) {
	s := testStore(t, false)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "u1", []entity.Chunk{
		chunkWithVec("exact", []float32{1, 0, 0, 0}),
		chunkWithVec("near", []float32{1, 1, 0, 0}),
		chunkWithVec("far", []float32{0, 0, 1, 0}),
	}))

	results, err := s.Search(ctx, "u1", []float32{1, 0, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact", results[0].Chunk.Text)
	assert.Equal(t, "near", results[1].Chunk.Text)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestStore_OrdinalsStayGapFreeAcrossAppends(t *testing.T) {
	s := testStore(t, false)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "u1", []entity.Chunk{
		{ID: "a", Ordinal: 7, Embedding: []float32{1, 0, 0, 0}},
		{ID: "b", Ordinal: 7, Embedding: []float32{0, 1, 0, 0}},
	}))
	require.NoError(t, s.Append(ctx, "u1", []entity.Chunk{
		{ID: "c", Ordinal: 0, Embedding: []float32{0, 0, 1, 0}},
	}))

	results, err := s.Search(ctx, "u1", []float32{1, 1, 1, 1}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	seen := map[int]string{}
	for _, r := range results {
		seen[r.Chunk.Ordinal] = r.Chunk.ID
	}
	assert.Equal(t, map[int]string{0: "a", 1: "b", 2: "c"}, seen)
}

func TestStore_DimensionMismatchRejected(t *testing.T) {
	s := testStore(t, false)

	err := s.Append(context.Background(), "u1", []entity.Chunk{
		chunkWithVec("bad", []float32{1, 0, 0}),
	})

	var ioErr *entity.IndexIOError
	require.ErrorAs(t, err, &ioErr)
	assert.Equal(t, "append", ioErr.Op)
}

func TestStore_OwnersAreIsolated(t *testing.T) {
	s := testStore(t, false)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "alice", []entity.Chunk{chunkWithVec("a", []float32{1, 0, 0, 0})}))

	n, err := s.Open(ctx, "bob")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.Open(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, Dimension: 4, Persist: true, CacheTTL: time.Minute}

	s1, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s1.Append(ctx, "u1", []entity.Chunk{
		chunkWithVec("alpha", []float32{1, 0, 0, 0}),
		chunkWithVec("beta", []float32{0, 1, 0, 0}),
	}))

	// A fresh store over the same directory sees the snapshot.
	s2, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)

	n, err := s2.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	results, err := s2.Search(ctx, "u1", []float32{0, 1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "beta", results[0].Chunk.Text)
}

func TestStore_CorruptSnapshotStartsFresh(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, Dimension: 4, Persist: true, CacheTTL: time.Minute}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u1.json"), []byte("{not json"), 0o644))

	s, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)

	n, err := s.Open(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, n, "corrupt snapshot is replaced by an empty index")
}

func TestStore_DimensionMismatchSnapshotStartsFresh(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewStore(Config{Dir: dir, Dimension: 4, Persist: true, CacheTTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s1.Append(ctx, "u1", []entity.Chunk{chunkWithVec("a", []float32{1, 0, 0, 0})}))

	// Same directory reopened with a different dimension.
	s2, err := NewStore(Config{Dir: dir, Dimension: 8, Persist: true, CacheTTL: time.Minute}, zap.NewNop())
	require.NoError(t, err)

	n, err := s2.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_ResetRemovesSnapshot(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, Dimension: 4, Persist: true, CacheTTL: time.Minute}
	s, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, "u1", []entity.Chunk{chunkWithVec("a", []float32{1, 0, 0, 0})}))
	require.FileExists(t, filepath.Join(dir, "u1.json"))

	require.NoError(t, s.Reset(ctx, "u1"))
	assert.NoFileExists(t, filepath.Join(dir, "u1.json"))

	n, err := s.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestStore_SnapshotPathSanitizesOwnerID(t *testing.T) {
	s := testStore(t, false)

	path := s.snapshotPath("user@example.com/../etc")

	assert.Equal(t, "user_example_com____etc.json", filepath.Base(path))
	assert.Equal(t, s.cfg.Dir, filepath.Dir(path))
}

func TestStore_ConcurrentAppendsAllPersisted(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, Dimension: 4, Persist: true, CacheTTL: time.Minute}
	s, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Append(ctx, "u1", []entity.Chunk{
				chunkWithVec(fmt.Sprintf("chunk-%d", i), []float32{1, 0, 0, 0}),
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := s.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, writers, n)

	// The durable copy holds every append too.
	s2, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	n, err = s2.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, writers, n)
}

func TestStore_SearchDuringAppendsKeepsEveryWrite(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{Dir: dir, Dimension: 4, Persist: true, CacheTTL: time.Minute}
	s, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	// Cold-cache readers racing the writers must never install a stale
	// index over one that already received appends.
	const writers = 8
	const readers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := s.Append(ctx, "u1", []entity.Chunk{
				chunkWithVec(fmt.Sprintf("chunk-%d", i), []float32{1, 0, 0, 0}),
			})
			assert.NoError(t, err)
		}(i)
	}
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Search(ctx, "u1", []float32{1, 0, 0, 0}, 4)
			assert.NoError(t, err)
			_, err = s.Open(ctx, "u1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	n, err := s.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, writers, n)

	s2, err := NewStore(cfg, zap.NewNop())
	require.NoError(t, err)
	n, err = s2.Open(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, writers, n, "durable snapshot holds every append despite concurrent reads")
}

func TestStore_OpenIndexInstallsSingleInstancePerOwner(t *testing.T) {
	s := testStore(t, false)

	const loaders = 32
	indexes := make([]*ownerIndex, loaders)
	var wg sync.WaitGroup
	for i := 0; i < loaders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			indexes[i] = s.openIndex("u1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < loaders; i++ {
		assert.Same(t, indexes[0], indexes[i], "every caller must see the one installed index")
	}
}

func TestTopK_RankingAndTieBreak(t *testing.T) {
	chunks := []entity.Chunk{
		{ID: "a", Ordinal: 0, Embedding: []float32{0, 1}},
		{ID: "b", Ordinal: 1, Embedding: []float32{1, 0}},
		{ID: "c", Ordinal: 2, Embedding: []float32{2, 0}},
		{ID: "d", Ordinal: 3, Embedding: []float32{1, 1}},
	}

	results := TopK(chunks, []float32{1, 0}, 3)

	require.Len(t, results, 3)
	// b and c both score 1.0; the earlier ordinal wins the tie.
	assert.Equal(t, "b", results[0].Chunk.ID)
	assert.Equal(t, "c", results[1].Chunk.ID)
	assert.Equal(t, "d", results[2].Chunk.ID)
}

func TestTopK_ClampsAndHandlesEmpty(t *testing.T) {
	chunks := []entity.Chunk{{ID: "a", Embedding: []float32{1, 0}}}

	assert.Len(t, TopK(chunks, []float32{1, 0}, 10), 1)
	assert.Nil(t, TopK(chunks, []float32{1, 0}, 0))
	assert.Nil(t, TopK(nil, []float32{1, 0}, 3))
}

func TestTopK_MissingEmbeddingScoresZero(t *testing.T) {
	chunks := []entity.Chunk{
		{ID: "plain", Ordinal: 0},
		{ID: "scored", Ordinal: 1, Embedding: []float32{1, 0}},
	}

	results := TopK(chunks, []float32{1, 0}, 2)

	require.Len(t, results, 2)
	assert.Equal(t, "scored", results[0].Chunk.ID)
	assert.Zero(t, results[1].Score)
}
