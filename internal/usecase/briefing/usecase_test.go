package briefing

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/docbrief/nlp-engine/internal/config"
	"github.com/docbrief/nlp-engine/internal/entity"
	"github.com/docbrief/nlp-engine/internal/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubGenerator struct {
	mu        sync.Mutex
	responses map[entity.Mode]string
	err       error
	prompts   []string
}

func (g *stubGenerator) Generate(ctx context.Context, req *entity.GenerationRequest) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, req.Prompt)
	g.mu.Unlock()
	if g.err != nil {
		return "", g.err
	}
	return g.responses[req.Mode], nil
}

func (g *stubGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type stubRetriever struct {
	results []entity.RetrievalResult
	err     error
	calls   int
}

func (r *stubRetriever) Retrieve(ctx context.Context, ownerID, text, query string) ([]entity.RetrievalResult, error) {
	r.calls++
	return r.results, r.err
}

type stubStore struct {
	resetOwner string
	resetErr   error
}

func (s *stubStore) Reset(ctx context.Context, ownerID string) error {
	s.resetOwner = ownerID
	return s.resetErr
}

func newTestUsecase(gen GenerationConnector, retr Retriever, store IndexStore) *Usecase {
	if retr == nil {
		retr = &stubRetriever{}
	}
	if store == nil {
		store = &stubStore{}
	}
	return NewUsecase(
		config.PipelineConfig{TopK: 4, MaxPageChars: 3000, PageConcurrency: 2},
		retr,
		store,
		prompt.NewBuilder(),
		gen,
		zap.NewNop(),
	)
}

func TestProcess_RejectsInvalidQueries(t *testing.T) {
	uc := newTestUsecase(&stubGenerator{}, nil, nil)
	ctx := context.Background()

	cases := []struct {
		name string
		q    entity.Query
		want error
	}{
		{"empty text", entity.Query{Mode: entity.ModeSummarize, Text: "   "}, entity.ErrEmptyText},
		{"ask without question", entity.Query{Mode: entity.ModeAsk, Text: "doc"}, entity.ErrMissingQuestion},
		{"unknown mode", entity.Query{Mode: "translate", Text: "doc"}, entity.ErrInvalidMode},
		{"unknown audience", entity.Query{Mode: entity.ModeSimplify, Text: "doc", Audience: "wizard"}, entity.ErrInvalidAudience},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Process(ctx, tc.q)
			require.ErrorIs(t, err, tc.want)
			assert.True(t, entity.IsClientError(err))
		})
	}
}

func TestProcess_Simplify(t *testing.T) {
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeSimplify: `{"page_number": 0, "title": "Update", "simplified_text": "Plain version.", "image_prompt": "a chart"}`,
	}}
	retr := &stubRetriever{}
	uc := newTestUsecase(gen, retr, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeSimplify,
		Text: "Technical page one.\n---\nTechnical page two.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Simplify)

	assert.True(t, resp.Simplify.Success)
	assert.False(t, resp.Degraded)
	require.Len(t, resp.Simplify.Pages, 2)
	assert.Equal(t, 1, resp.Simplify.Pages[0].PageNumber)
	assert.Equal(t, 2, resp.Simplify.Pages[1].PageNumber)
	assert.Equal(t, "Plain version.", resp.Simplify.Pages[0].SimplifiedText)
	assert.Zero(t, retr.calls, "simplify mode does not retrieve")
	assert.Equal(t, 2, gen.callCount(), "one generation call per page")
}

func TestProcess_SimplifyFallsBackPerPage(t *testing.T) {
	gen := &stubGenerator{err: errors.New("upstream 503")}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode:     entity.ModeSimplify,
		Text:     "Kubernetes migration status\nThe control plane upgrade finished without downtime. Worker pools migrate next week.",
		Audience: entity.AudienceIntern,
	})
	require.NoError(t, err, "generation failure must degrade, not fail")
	require.NotNil(t, resp.Simplify)

	assert.True(t, resp.Degraded)
	assert.True(t, resp.Simplify.Success)
	require.Len(t, resp.Simplify.Pages, 1)

	page := resp.Simplify.Pages[0]
	assert.Equal(t, 1, page.PageNumber)
	assert.Equal(t, "Kubernetes migration status", page.Title)
	assert.NotEmpty(t, page.SimplifiedText)
	assert.Contains(t, page.SimplifiedText, "intern audience")
	assert.NotEmpty(t, page.ImagePrompt)
}

func TestProcess_SimplifyUnparseableFallsBack(t *testing.T) {
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeSimplify: "I cannot produce JSON today.",
	}}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeSimplify,
		Text: "A page of content that needs simplification for readers.",
	})
	require.NoError(t, err)

	assert.True(t, resp.Degraded)
	require.Len(t, resp.Simplify.Pages, 1)
	assert.NotEmpty(t, resp.Simplify.Pages[0].SimplifiedText)
}

func TestProcess_AskGroundsPromptOnRetrievedChunks(t *testing.T) {
	retr := &stubRetriever{results: []entity.RetrievalResult{
		{Chunk: entity.Chunk{Text: "The budget grew by ten percent."}, Score: 0.9},
		{Chunk: entity.Chunk{Text: "Contractors start in October."}, Score: 0.7},
	}}
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeAsk: `{"answer": "The budget grew by ten percent.", "confidence": "high", "relevant_excerpt": "budget grew"}`,
	}}
	uc := newTestUsecase(gen, retr, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode:     entity.ModeAsk,
		Text:     "full document text",
		Question: "What happened to the budget?",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Ask)

	assert.True(t, resp.Ask.Success)
	assert.False(t, resp.Degraded)
	assert.Equal(t, "high", resp.Ask.Confidence)
	assert.Equal(t, 1, retr.calls)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "The budget grew by ten percent.")
	assert.Contains(t, gen.prompts[0], "Contractors start in October.")
	assert.Contains(t, gen.prompts[0], "What happened to the budget?")
}

func TestProcess_AskRetrievalFailureUsesRawDocument(t *testing.T) {
	retr := &stubRetriever{err: errors.New("index offline")}
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeAsk: `{"answer": "From the raw text.", "confidence": "medium", "relevant_excerpt": "raw"}`,
	}}
	uc := newTestUsecase(gen, retr, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode:     entity.ModeAsk,
		Text:     "the raw document body",
		Question: "anything?",
	})
	require.NoError(t, err)

	assert.Equal(t, "From the raw text.", resp.Ask.Answer)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "the raw document body")
}

func TestProcess_AskFallsBackOnGenerationFailure(t *testing.T) {
	gen := &stubGenerator{err: errors.New("timeout")}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode:     entity.ModeAsk,
		Text:     "The report shows revenue grew and churn dropped during the quarter.",
		Question: "Did revenue grow?",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Ask)

	assert.True(t, resp.Degraded)
	assert.True(t, resp.Ask.Success)
	assert.Equal(t, "low", resp.Ask.Confidence)
	assert.Contains(t, resp.Ask.Answer, "revenue grew")
	assert.NotEmpty(t, resp.Ask.RelevantExcerpt)
}

func TestProcess_Summarize(t *testing.T) {
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeSummarize: `{"summary": "Revenue grew and churn dropped.", "word_count": 0, "key_topics": ["revenue", "churn"]}`,
	}}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeSummarize,
		Text: "A long report about revenue and churn.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Summarize)

	assert.True(t, resp.Summarize.Success)
	assert.Equal(t, "Revenue grew and churn dropped.", resp.Summarize.Summary)
	assert.Equal(t, 5, resp.Summarize.WordCount, "zero word count is recomputed from the summary")
	assert.Equal(t, []string{"revenue", "churn"}, resp.Summarize.KeyTopics)
}

func TestProcess_SummarizeFallsBack(t *testing.T) {
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeSummarize: "plain prose without any structure",
	}}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeSummarize,
		Text: "The launch slipped by two weeks. The root cause was a vendor dependency. Mitigations are in place now.",
	})
	require.NoError(t, err)

	assert.True(t, resp.Degraded)
	assert.True(t, resp.Summarize.Success)
	assert.NotEmpty(t, resp.Summarize.Summary)
	assert.Greater(t, resp.Summarize.WordCount, 0)
	assert.NotNil(t, resp.Summarize.KeyTopics)
}

func TestProcess_Extract(t *testing.T) {
	gen := &stubGenerator{responses: map[entity.Mode]string{
		entity.ModeExtract: "```json\n" + `{"key_points": [{"point": "Launch slipped", "importance": "high"}], "overall_theme": "Delays", "action_items": ["notify clients"]}` + "\n```",
	}}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeExtract,
		Text: "Launch slipped by two weeks.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp.Extract)

	assert.True(t, resp.Extract.Success)
	assert.False(t, resp.Degraded)
	require.Len(t, resp.Extract.KeyPoints, 1)
	assert.Equal(t, "Launch slipped", resp.Extract.KeyPoints[0].Point)
	assert.Equal(t, "Delays", resp.Extract.OverallTheme)
}

func TestProcess_ExtractFallsBack(t *testing.T) {
	gen := &stubGenerator{err: errors.New("rate limited")}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeExtract,
		Text: "The launch slipped by two weeks. The root cause was a vendor dependency failure in staging.",
	})
	require.NoError(t, err)

	assert.True(t, resp.Degraded)
	assert.True(t, resp.Extract.Success)
	require.NotEmpty(t, resp.Extract.KeyPoints)
	for _, kp := range resp.Extract.KeyPoints {
		assert.Equal(t, "medium", kp.Importance)
		assert.NotEmpty(t, kp.Point)
	}
	assert.Equal(t, "Document analysis", resp.Extract.OverallTheme)
}

func TestProcess_ExtractShortTextStillYieldsOnePoint(t *testing.T) {
	gen := &stubGenerator{err: errors.New("down")}
	uc := newTestUsecase(gen, nil, nil)

	resp, err := uc.Process(context.Background(), entity.Query{
		Mode: entity.ModeExtract,
		Text: "Short note",
	})
	require.NoError(t, err)
	require.Len(t, resp.Extract.KeyPoints, 1)
	assert.Equal(t, "Short note", resp.Extract.KeyPoints[0].Point)
}

func TestResetIndex(t *testing.T) {
	store := &stubStore{}
	uc := newTestUsecase(&stubGenerator{}, nil, store)
	ctx := context.Background()

	require.NoError(t, uc.ResetIndex(ctx, "alice"))
	assert.Equal(t, "alice", store.resetOwner)

	require.NoError(t, uc.ResetIndex(ctx, "  "))
	assert.Equal(t, entity.DefaultOwnerID, store.resetOwner, "blank owner falls back to the default")

	store.resetErr = errors.New("disk error")
	err := uc.ResetIndex(ctx, "bob")
	require.Error(t, err)
	assert.False(t, entity.IsClientError(err))
}

func TestPayload_SelectsModeResult(t *testing.T) {
	ask := &entity.AskResult{Success: true, Answer: "yes"}
	resp := &entity.GenerationResponse{Mode: entity.ModeAsk, Ask: ask}

	assert.Equal(t, ask, resp.Payload())
}

func TestJoinRetrieved(t *testing.T) {
	assert.Empty(t, joinRetrieved(nil))

	out := joinRetrieved([]entity.RetrievalResult{
		{Chunk: entity.Chunk{Text: "one"}},
		{Chunk: entity.Chunk{Text: "two"}},
	})
	assert.Equal(t, strings.Join([]string{"one", "two"}, contextSeparator), out)
}
