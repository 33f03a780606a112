package index

import (
	"math"
	"sort"

	"github.com/docbrief/nlp-engine/internal/entity"
)

// TopK ranks chunks by cosine similarity to the query vector and
// returns the best k, ties broken by ascending ordinal so results are
// deterministic. k is clamped to the number of chunks. Chunks without
// an embedding score zero.
func TopK(chunks []entity.Chunk, query []float32, k int) []entity.RetrievalResult {
	if k <= 0 || len(chunks) == 0 {
		return nil
	}
	results := make([]entity.RetrievalResult, 0, len(chunks))
	for _, c := range chunks {
		results = append(results, entity.RetrievalResult{
			Chunk: c,
			Score: cosine(c.Embedding, query),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Chunk.Ordinal < results[j].Chunk.Ordinal
	})
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
