// Package retriever performs top-k semantic search over a document,
// degrading to lexical-overlap ranking when the embedding model is
// unavailable.
package retriever

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/docbrief/nlp-engine/internal/rag/index"
	"github.com/docbrief/nlp-engine/internal/rag/splitter"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// DefaultTopK matches the original retrieval depth for Q&A context.
const DefaultTopK = 4

// Embedder is the local text-to-vector capability.
type Embedder interface {
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// IndexStore is the durable per-owner index used when a persistent
// corpus is configured.
type IndexStore interface {
	Append(ctx context.Context, ownerID string, chunks []entity.Chunk) error
	Search(ctx context.Context, ownerID string, query []float32, k int) ([]entity.RetrievalResult, error)
}

// Config selects between a durable personal corpus and ephemeral
// per-request indexing (the default, matching the upstream wire
// contract that passes raw text on every call).
type Config struct {
	TopK             int
	PersistentCorpus bool
}

type Retriever struct {
	cfg      Config
	splitter *splitter.Splitter
	embedder Embedder
	store    IndexStore
	tokens   *regexp.Regexp
}

func New(cfg Config, split *splitter.Splitter, embedder Embedder, store IndexStore) *Retriever {
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultTopK
	}
	return &Retriever{
		cfg:      cfg,
		splitter: split,
		embedder: embedder,
		store:    store,
		tokens:   regexp.MustCompile(`\p{L}+|\p{N}+`),
	}
}

// Retrieve ingests the request text for the owner and returns the
// top-k chunks relevant to the query, descending by score. Embedding
// failures degrade to shared-token ranking over the same chunk set;
// index I/O failures degrade to the in-memory chunks of this request.
// Retrieval never fails outright for an ingestible document.
func (r *Retriever) Retrieve(ctx context.Context, ownerID, text, query string) ([]entity.RetrievalResult, error) {
	chunks := r.splitter.Split(ownerID, text)
	if len(chunks) == 0 {
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		ctxzap.Warn(ctx, "embedding unavailable, using lexical ranking",
			zap.Error(&entity.EmbeddingError{Err: err}))
		return r.lexicalTopK(chunks, query), nil
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		ctxzap.Warn(ctx, "query embedding failed, using lexical ranking",
			zap.Error(&entity.EmbeddingError{Err: err}))
		return r.lexicalTopK(chunks, query), nil
	}

	if r.cfg.PersistentCorpus && r.store != nil {
		if err := r.store.Append(ctx, ownerID, chunks); err != nil {
			ctxzap.Warn(ctx, "index append failed, searching request chunks only", zap.Error(err))
			return index.TopK(chunks, queryVec, r.cfg.TopK), nil
		}
		return r.store.Search(ctx, ownerID, queryVec, r.cfg.TopK)
	}
	return index.TopK(chunks, queryVec, r.cfg.TopK), nil
}

// lexicalTopK ranks chunks by the number of distinct query tokens they
// share, ties broken by ascending ordinal.
func (r *Retriever) lexicalTopK(chunks []entity.Chunk, query string) []entity.RetrievalResult {
	queryTokens := r.tokenSet(query)
	results := make([]entity.RetrievalResult, 0, len(chunks))
	for _, c := range chunks {
		shared := 0
		for tok := range r.tokenSet(c.Text) {
			if _, ok := queryTokens[tok]; ok {
				shared++
			}
		}
		results = append(results, entity.RetrievalResult{Chunk: c, Score: float64(shared)})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})
	if len(results) > r.cfg.TopK {
		results = results[:r.cfg.TopK]
	}
	return results
}

func (r *Retriever) tokenSet(text string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, tok := range r.tokens.FindAllString(strings.ToLower(text), -1) {
		set[tok] = struct{}{}
	}
	return set
}
