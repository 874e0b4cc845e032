package app

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"trivia-game-service/internal/domain"
	"trivia-game-service/internal/sources"
	"trivia-game-service/internal/telemetry"
)

// BanStore answers whether a question id is banned for a source.
// Implementations own persistence; the pipeline only consults it.
type BanStore interface {
	IsBanned(ctx context.Context, questionID, source string) (bool, error)
}

// HistoryStore tracks which question ids a channel has seen recently.
type HistoryStore interface {
	HasRecentlyServed(ctx context.Context, channel, questionID string) (bool, error)
	RecordServed(ctx context.Context, channel, questionID string) error
}

// ContentFilter rejects questions whose text or answers contain a
// banned term.
type ContentFilter struct {
	terms []string
}

func NewContentFilter(terms []string) *ContentFilter {
	lowered := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			lowered = append(lowered, t)
		}
	}
	return &ContentFilter{terms: lowered}
}

// Matches reports whether any banned term occurs in the question text
// or any answer or option.
func (f *ContentFilter) Matches(q domain.TriviaQuestion) bool {
	haystacks := make([]string, 0, 1+len(q.CorrectAnswers)+len(q.Options))
	haystacks = append(haystacks, strings.ToLower(q.Text))
	for _, a := range q.CorrectAnswers {
		haystacks = append(haystacks, strings.ToLower(a))
	}
	for _, o := range q.Options {
		haystacks = append(haystacks, strings.ToLower(o))
	}
	for _, term := range f.terms {
		for _, hay := range haystacks {
			if strings.Contains(hay, term) {
				return true
			}
		}
	}
	return false
}

// SourcingPipeline composes the source registry, health tracker, ban
// filter, and history guard into a retrying fetch-and-validate loop
// that produces one validated question or ErrSourcingExhausted.
type SourcingPipeline struct {
	registry    *sources.Registry
	health      *SourceHealthTracker
	bans        BanStore
	history     HistoryStore
	filter      *ContentFilter
	maxAttempts int
	log         *zap.SugaredLogger

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSourcingPipeline(
	registry *sources.Registry,
	health *SourceHealthTracker,
	bans BanStore,
	history HistoryStore,
	filter *ContentFilter,
	maxAttempts int,
	log *zap.SugaredLogger,
) *SourcingPipeline {
	return &SourcingPipeline{
		registry:    registry,
		health:      health,
		bans:        bans,
		history:     history,
		filter:      filter,
		maxAttempts: maxAttempts,
		log:         log,
		rnd:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// FetchValidQuestion draws sources by weight without replacement,
// fetching and validating until one question passes every filter or
// attempts are exhausted.
func (p *SourcingPipeline) FetchValidQuestion(ctx context.Context, channel string, opts sources.FetchOptions) (domain.TriviaQuestion, error) {
	candidates := p.eligibleCandidates()
	if len(candidates) == 0 {
		return domain.TriviaQuestion{}, domain.ErrSourcingExhausted
	}

	for attempt := 0; attempt < p.maxAttempts && len(candidates) > 0; attempt++ {
		idx := p.drawWeighted(candidates)
		src := candidates[idx].Source
		candidates = append(candidates[:idx], candidates[idx+1:]...)

		q, ok := p.trySource(ctx, src, channel, opts)
		if !ok {
			continue
		}
		if err := p.history.RecordServed(ctx, channel, q.ID); err != nil {
			p.log.Warnw("failed to record question history", "channel", channel, "questionId", q.ID, "err", err)
		}
		p.health.RecordSuccess(src.Name())
		return q, nil
	}

	telemetry.RecordSourcingExhausted()
	return domain.TriviaQuestion{}, domain.ErrSourcingExhausted
}

// trySource fetches and validates one question from one source. Any
// failure counts against the source's health.
func (p *SourcingPipeline) trySource(ctx context.Context, src sources.QuestionSource, channel string, opts sources.FetchOptions) (domain.TriviaQuestion, bool) {
	name := src.Name()

	raw, err := src.FetchOne(ctx, opts)
	if err != nil {
		p.recordFailure(name, "fetch", err)
		return domain.TriviaQuestion{}, false
	}

	q, err := NormalizeQuestion(raw, name)
	if err != nil {
		p.recordFailure(name, "normalize", err)
		return domain.TriviaQuestion{}, false
	}

	banned, err := p.bans.IsBanned(ctx, q.ID, name)
	if err != nil {
		p.recordFailure(name, "ban check", err)
		return domain.TriviaQuestion{}, false
	}
	if banned || p.filter.Matches(q) {
		p.recordFailure(name, "banned content", nil)
		return domain.TriviaQuestion{}, false
	}

	served, err := p.history.HasRecentlyServed(ctx, channel, q.ID)
	if err != nil {
		p.recordFailure(name, "history check", err)
		return domain.TriviaQuestion{}, false
	}
	if served {
		p.recordFailure(name, "recently served", nil)
		return domain.TriviaQuestion{}, false
	}

	return q, true
}

func (p *SourcingPipeline) recordFailure(source, stage string, err error) {
	p.health.RecordFailure(source)
	telemetry.RecordSourcingFailure(source)
	if err != nil {
		p.log.Debugw("question rejected", "source", source, "stage", stage, "err", err)
	} else {
		p.log.Debugw("question rejected", "source", source, "stage", stage)
	}
}

// eligibleCandidates drops degraded and zero-weight sources.
func (p *SourcingPipeline) eligibleCandidates() []sources.Weighted {
	all := p.registry.Candidates()
	out := all[:0]
	for _, c := range all {
		if c.Weight <= 0 || p.health.IsDegraded(c.Source.Name()) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// drawWeighted picks an index proportionally to weight.
func (p *SourcingPipeline) drawWeighted(candidates []sources.Weighted) int {
	total := 0.0
	for _, c := range candidates {
		total += c.Weight
	}
	p.mu.Lock()
	r := p.rnd.Float64() * total
	p.mu.Unlock()
	for i, c := range candidates {
		r -= c.Weight
		if r < 0 {
			return i
		}
	}
	return len(candidates) - 1
}
