package simulator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"ragchat/internal/domain"
	"ragchat/internal/ids"
	"ragchat/internal/lexical"
)

// NoResultsAnswer is returned when nothing in the corpus matches a query.
const NoResultsAnswer = "No relevant documents found for your query."

// ErrBackendFailure is returned for the simulated backend failure outcome.
var ErrBackendFailure = errors.New("mock backend failure")

// RandomSource yields uniform values in [0,1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// RandomFunc adapts a plain function to RandomSource.
type RandomFunc func() float64

func (f RandomFunc) Float64() float64 { return f() }

// Config tunes the latency and outcome mix of the simulator.
type Config struct {
	MinLatency   time.Duration
	MaxLatency   time.Duration
	FailureRate  float64
	NullRate     float64
	EmptyRate    float64
	NoResultRate float64
	MaxCitations int
	// Random defaults to a time-seeded PCG generator when nil.
	Random RandomSource
}

// DefaultConfig returns the stock outcome mix.
func DefaultConfig() Config {
	return Config{
		MinLatency:   1000 * time.Millisecond,
		MaxLatency:   2000 * time.Millisecond,
		FailureRate:  0.12,
		NullRate:     0.05,
		EmptyRate:    0.05,
		NoResultRate: 0.08,
		MaxCitations: 3,
	}
}

type outcome string

const (
	outcomeFailure   outcome = "failure"
	outcomeNull      outcome = "null"
	outcomeEmpty     outcome = "empty"
	outcomeNoResult  outcome = "no_result"
	outcomeRetrieval outcome = "retrieval"
)

// Simulator is an in-process stand-in for a retrieval-augmented backend.
type Simulator struct {
	corpus domain.Corpus
	cfg    Config
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	random RandomSource
}

// Option customizes a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used for outcome tracing.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a simulator over corpus.
func New(corpus domain.Corpus, cfg Config, opts ...Option) *Simulator {
	if cfg.MaxCitations <= 0 {
		cfg.MaxCitations = DefaultConfig().MaxCitations
	}
	random := cfg.Random
	if random == nil {
		random = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), rand.Uint64()))
	}
	s := &Simulator{
		corpus: corpus,
		cfg:    cfg,
		logger: zap.NewNop(),
		sleep:  sleepContext,
		random: random,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Retrieve waits for a simulated latency, then classifies the call into one
// of five outcomes. Failures return ErrBackendFailure; the null outcome
// returns (nil, nil).
func (s *Simulator) Retrieve(ctx context.Context, query string) (*domain.ChatResponse, error) {
	latency := s.pickLatency()
	if err := s.sleep(ctx, latency); err != nil {
		return nil, err
	}

	r := s.draw()
	out := s.classify(r)
	s.logger.Debug("retrieval outcome",
		zap.String("outcome", string(out)),
		zap.Duration("latency", latency),
		zap.Float64("draw", r),
	)

	switch out {
	case outcomeFailure:
		return nil, fmt.Errorf("%w for query %q", ErrBackendFailure, query)
	case outcomeNull:
		return nil, nil
	case outcomeEmpty:
		return &domain.ChatResponse{Answer: "", Citations: []domain.Citation{}}, nil
	case outcomeNoResult:
		return noResults(), nil
	}

	tokens := lexical.Tokenize(query)
	matches := s.buildMatches(tokens)
	if len(matches) == 0 {
		return noResults(), nil
	}
	citations := buildCitations(matches, tokens, s.cfg.MaxCitations)
	return &domain.ChatResponse{Answer: generateAnswer(citations), Citations: citations}, nil
}

func noResults() *domain.ChatResponse {
	return &domain.ChatResponse{Answer: NoResultsAnswer, Citations: []domain.Citation{}}
}

func (s *Simulator) draw() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.random.Float64()
}

func (s *Simulator) pickLatency() time.Duration {
	r := s.draw()
	spanMs := (s.cfg.MaxLatency - s.cfg.MinLatency).Milliseconds()
	if spanMs <= 0 {
		return s.cfg.MinLatency
	}
	return s.cfg.MinLatency + time.Duration(math.Floor(r*float64(spanMs)))*time.Millisecond
}

// classify maps r onto consecutive bands in a fixed order: failure, null,
// empty, no-result, and the retrieval path for the remaining mass.
func (s *Simulator) classify(r float64) outcome {
	edge := s.cfg.FailureRate
	if r < edge {
		return outcomeFailure
	}
	edge += s.cfg.NullRate
	if r < edge {
		return outcomeNull
	}
	edge += s.cfg.EmptyRate
	if r < edge {
		return outcomeEmpty
	}
	edge += s.cfg.NoResultRate
	if r < edge {
		return outcomeNoResult
	}
	return outcomeRetrieval
}

type pageMatch struct {
	documentID string
	title      string
	page       domain.PageLabel
	content    string
	score      int
}

func (s *Simulator) buildMatches(tokens []string) []pageMatch {
	var matches []pageMatch
	for _, doc := range s.corpus.Documents() {
		for _, page := range doc.Pages {
			score := lexical.CountMatches(page.Content, tokens)
			if score <= 0 {
				continue
			}
			matches = append(matches, pageMatch{
				documentID: doc.ID,
				title:      doc.Title,
				page:       page.Label,
				content:    page.Content,
				score:      score,
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].score > matches[j].score })
	return matches
}

func buildCitations(matches []pageMatch, tokens []string, maxCitations int) []domain.Citation {
	n := min(maxCitations, len(matches))
	citations := make([]domain.Citation, 0, n)
	for _, m := range matches[:n] {
		citations = append(citations, domain.Citation{
			ID:         ids.New("cite"),
			DocumentID: m.documentID,
			Title:      m.title,
			Page:       m.page,
			Snippet:    lexical.SelectSnippet(m.content, tokens),
		})
	}
	return citations
}

func generateAnswer(citations []domain.Citation) string {
	var titles []string
	seen := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		if _, ok := seen[c.Title]; ok {
			continue
		}
		seen[c.Title] = struct{}{}
		titles = append(titles, c.Title)
	}

	var intro string
	if len(titles) > 1 {
		intro = fmt.Sprintf("Based on %s, here is a consolidated summary:", strings.Join(titles, ", "))
	} else {
		intro = fmt.Sprintf("From %s, here is what I found:", titles[0])
	}
	snippets := make([]string, len(citations))
	for i, c := range citations {
		snippets[i] = strings.TrimSuffix(c.Snippet, "...")
	}
	return intro + " " + strings.Join(snippets, " ")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
