package simulator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragchat/internal/corpus"
	"ragchat/internal/domain"
	"ragchat/internal/lexical"
)

func fixed(v float64) RandomFunc { return func() float64 { return v } }

func instantConfig(r RandomSource) Config {
	cfg := DefaultConfig()
	cfg.MinLatency = 0
	cfg.MaxLatency = 0
	cfg.Random = r
	return cfg
}

func retrievalOnly() Config {
	cfg := instantConfig(fixed(0.9))
	cfg.FailureRate = 0
	cfg.NullRate = 0
	cfg.EmptyRate = 0
	cfg.NoResultRate = 0
	return cfg
}

func TestRetrieveReturnsCitationsForMatchingQuery(t *testing.T) {
	sim := New(corpus.Default(), retrievalOnly())

	resp, err := sim.Retrieve(context.Background(), "What are the MFA requirements?")
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.Citations)
	assert.Contains(t, resp.Citations[0].Title, "Security Policy")
}

func TestRetrieveMFAScenario(t *testing.T) {
	sim := New(corpus.Default(), retrievalOnly())

	resp, err := sim.Retrieve(context.Background(), "MFA requirements for privileged accounts")
	require.NoError(t, err)
	require.NotNil(t, resp)
	require.Len(t, resp.Citations, 1)

	c := resp.Citations[0]
	assert.Equal(t, "sec-policy", c.DocumentID)
	assert.Equal(t, domain.PageLabel("2"), c.Page)
	assert.Equal(t, "Access Control: MFA is required for all privileged accounts.", c.Snippet)
	assert.Equal(t, "From Security Policy Handbook, here is what I found: Access Control: MFA is required for all privileged accounts.", resp.Answer)
}

func TestRetrieveNoMatches(t *testing.T) {
	sim := New(corpus.Default(), retrievalOnly())

	resp, err := sim.Retrieve(context.Background(), "quasar flux capacitor")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Empty(t, resp.Citations)
	assert.Equal(t, NoResultsAnswer, resp.Answer)
}

func TestRetrieveCitationsSortedCappedAndUnique(t *testing.T) {
	docs := corpus.Default()
	queries := []string{
		"security training data",
		"manager approval access requests",
		"decision architecture service",
		"pto holidays leave",
	}
	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			sim := New(docs, retrievalOnly())
			resp, err := sim.Retrieve(context.Background(), q)
			require.NoError(t, err)
			require.NotNil(t, resp)
			require.NotEmpty(t, resp.Citations)
			assert.LessOrEqual(t, len(resp.Citations), 3)

			tokens := lexical.Tokenize(q)
			seen := map[string]bool{}
			prev := -1
			for _, c := range resp.Citations {
				assert.False(t, seen[c.ID], "duplicate citation id %s", c.ID)
				seen[c.ID] = true

				doc, ok := docs.Document(c.DocumentID)
				require.True(t, ok)
				content, ok := corpus.PageContent(doc, c.Page)
				require.True(t, ok)
				score := lexical.CountMatches(content, tokens)
				assert.Positive(t, score)
				if prev >= 0 {
					assert.LessOrEqual(t, score, prev)
				}
				prev = score
			}
		})
	}
}

func TestRetrieveTiesKeepCorpusOrder(t *testing.T) {
	c := corpus.New([]domain.Document{
		{ID: "a", Title: "Alpha", Pages: []domain.Page{{Label: "1", Content: "vault one."}, {Label: "2", Content: "vault two."}}},
		{ID: "b", Title: "Beta", Pages: []domain.Page{{Label: "x", Content: "vault three."}}},
	})
	cfg := retrievalOnly()
	cfg.MaxCitations = 2
	sim := New(c, cfg)

	resp, err := sim.Retrieve(context.Background(), "vault")
	require.NoError(t, err)
	require.Len(t, resp.Citations, 2)
	assert.Equal(t, domain.PageLabel("1"), resp.Citations[0].Page)
	assert.Equal(t, domain.PageLabel("2"), resp.Citations[1].Page)
	assert.Equal(t, "From Alpha, here is what I found: vault one. vault two.", resp.Answer)
}

func TestRetrieveConsolidatesMultipleTitles(t *testing.T) {
	c := corpus.New([]domain.Document{
		{ID: "a", Title: "Alpha", Pages: []domain.Page{{Label: "1", Content: "billing vault."}}},
		{ID: "b", Title: "Beta", Pages: []domain.Page{{Label: "1", Content: "vault only."}}},
		{ID: "c", Title: "Alpha", Pages: []domain.Page{{Label: "2", Content: "vault again."}}},
	})
	sim := New(c, retrievalOnly())

	resp, err := sim.Retrieve(context.Background(), "billing vault")
	require.NoError(t, err)
	require.Len(t, resp.Citations, 3)
	assert.Equal(t, "Based on Alpha, Beta, here is a consolidated summary: billing vault. vault only. vault again.", resp.Answer)
}

func TestGenerateAnswerStripsEllipsis(t *testing.T) {
	got := generateAnswer([]domain.Citation{{Title: "Doc", Snippet: "cut short..."}, {Title: "Doc", Snippet: "whole."}})
	assert.Equal(t, "From Doc, here is what I found: cut short whole.", got)
}

func TestRetrieveOutcomeBands(t *testing.T) {
	tests := []struct {
		name      string
		draw      float64
		wantErr   bool
		wantNil   bool
		wantEmpty bool
		answer    string
	}{
		{name: "failure", draw: 0.05, wantErr: true},
		{name: "failure lower edge", draw: 0, wantErr: true},
		{name: "null", draw: 0.14, wantNil: true},
		{name: "empty", draw: 0.19, wantEmpty: true, answer: ""},
		{name: "no result", draw: 0.25, wantEmpty: true, answer: NoResultsAnswer},
		{name: "retrieval", draw: 0.9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim := New(corpus.Default(), instantConfig(fixed(tt.draw)))
			resp, err := sim.Retrieve(context.Background(), "MFA privileged accounts")
			switch {
			case tt.wantErr:
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrBackendFailure))
				assert.Nil(t, resp)
			case tt.wantNil:
				require.NoError(t, err)
				assert.Nil(t, resp)
			case tt.wantEmpty:
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.Empty(t, resp.Citations)
				assert.Equal(t, tt.answer, resp.Answer)
			default:
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.NotEmpty(t, resp.Citations)
			}
		})
	}
}

func TestClassifyZeroWidthBandsAreSkipped(t *testing.T) {
	cfg := instantConfig(nil)
	cfg.FailureRate = 0
	cfg.NullRate = 0.5
	cfg.EmptyRate = 0
	cfg.NoResultRate = 0
	sim := New(corpus.Default(), cfg)

	assert.Equal(t, outcomeNull, sim.classify(0))
	assert.Equal(t, outcomeNull, sim.classify(0.49))
	assert.Equal(t, outcomeRetrieval, sim.classify(0.5))
}

func TestRetrieveSleepsForDrawnLatencyBeforeClassifying(t *testing.T) {
	draws := []float64{0.5, 0.9}
	var calls int
	cfg := retrievalOnly()
	cfg.MinLatency = 1000 * time.Millisecond
	cfg.MaxLatency = 2000 * time.Millisecond
	cfg.Random = RandomFunc(func() float64 {
		v := draws[calls]
		calls++
		return v
	})
	sim := New(corpus.Default(), cfg)

	var slept time.Duration
	sim.sleep = func(_ context.Context, d time.Duration) error {
		slept = d
		assert.Equal(t, 1, calls, "outcome must be drawn after the latency wait")
		return nil
	}

	_, err := sim.Retrieve(context.Background(), "pto")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, slept)
	assert.Equal(t, 2, calls)
}

func TestRetrieveHonorsCancellation(t *testing.T) {
	cfg := retrievalOnly()
	cfg.MinLatency = time.Hour
	cfg.MaxLatency = 2 * time.Hour
	sim := New(corpus.Default(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sim.Retrieve(ctx, "pto")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDefaultsMaxCitations(t *testing.T) {
	cfg := retrievalOnly()
	cfg.MaxCitations = 0
	sim := New(corpus.Default(), cfg)
	assert.Equal(t, 3, sim.cfg.MaxCitations)
}
