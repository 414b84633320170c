package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
	"LookupBot/internal/textnorm"
)

const (
	comparisonSentences = 3
	historySentences    = 5

	outcomeHit   = "hit"
	outcomeMiss  = "miss"
	outcomeError = "error"
)

// Stems that mark a sentence as historical, in both encyclopedia languages.
var historyKeywords = []string{
	"основан", "создан", "появил", "истори", "год", "век",
	"founded", "created", "appeared", "history", "year", "century",
}

// Recorder receives every successful fetch made while answering a query.
type Recorder func(domain.SourceResult)

// ProgressStep is one frame of the waiting animation shown after the fast path times out.
type ProgressStep struct {
	Text  string
	Delay time.Duration
}

// RetrieverDeps wires the knowledge sources into the retrieval strategies.
type RetrieverDeps struct {
	// Sources are tried in order on the general path.
	Sources []ports.Source
	// Primary serves comparisons and history lookups.
	Primary         ports.Encyclopedia
	Metrics         ports.Metrics
	Logger          *slog.Logger
	FastPathTimeout time.Duration
	Progress        []ProgressStep
	HistoryPrefix   string
}

// Retriever implements the general, comparison and history lookup strategies.
type Retriever struct {
	sources       []ports.Source
	primary       ports.Encyclopedia
	metrics       ports.Metrics
	logger        *slog.Logger
	fastPath      time.Duration
	progress      []ProgressStep
	historyPrefix string
	sleep         func(ctx context.Context, d time.Duration) error
}

// NewRetriever constructs the orchestration component.
func NewRetriever(deps RetrieverDeps) *Retriever {
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}
	prefix := deps.HistoryPrefix
	if prefix == "" {
		prefix = "история"
	}
	return &Retriever{
		sources:       deps.Sources,
		primary:       deps.Primary,
		metrics:       metrics,
		logger:        deps.Logger,
		fastPath:      deps.FastPathTimeout,
		progress:      deps.Progress,
		historyPrefix: prefix,
		sleep:         sleepContext,
	}
}

// General tries every source in order and returns the first result, or nil when all are exhausted.
func (r *Retriever) General(ctx context.Context, term string, record Recorder) *domain.SourceResult {
	for _, src := range r.sources {
		if ctx.Err() != nil {
			return nil
		}

		res, err := src.Fetch(ctx, term)
		switch {
		case err == nil && res != nil:
			r.metrics.SourceLookup(src.Name(), outcomeHit)
			r.debug("source hit", "source", src.Name(), "term", term)
			if record != nil {
				record(*res)
			}
			return res
		case err == nil || errors.Is(err, domain.ErrNoResult):
			r.metrics.SourceLookup(src.Name(), outcomeMiss)
			r.debug("source miss", "source", src.Name(), "term", term)
		case ctx.Err() != nil:
			return nil
		default:
			r.metrics.SourceLookup(src.Name(), outcomeError)
			r.warn("source failed", "source", src.Name(), "term", term, "error", err)
		}
	}
	return nil
}

// GeneralWithDeadline runs General under the fast-path deadline. Only when the deadline
// passes does it play the progress steps through notify and retry once without a deadline.
func (r *Retriever) GeneralWithDeadline(ctx context.Context, term string, record Recorder, notify func(string)) *domain.SourceResult {
	if r.fastPath <= 0 {
		return r.General(ctx, term, record)
	}

	fastCtx, cancel := context.WithTimeout(ctx, r.fastPath)
	res := r.General(fastCtx, term, record)
	timedOut := errors.Is(fastCtx.Err(), context.DeadlineExceeded)
	cancel()

	if res != nil || !timedOut || ctx.Err() != nil {
		return res
	}

	r.metrics.FastPathTimeout()
	r.warn("fast path timed out", "term", term, "timeout", r.fastPath)

	for _, step := range r.progress {
		if err := r.sleep(ctx, step.Delay); err != nil {
			return nil
		}
		if notify != nil {
			notify(step.Text)
		}
	}

	return r.General(ctx, term, record)
}

// Difference looks both terms up concurrently in the primary encyclopedia.
// A side that is not found stays nil; the other side is unaffected.
func (r *Retriever) Difference(ctx context.Context, a, b string, record Recorder) domain.Comparison {
	cmp := domain.Comparison{
		Left:  domain.ComparisonSide{Term: a},
		Right: domain.ComparisonSide{Term: b},
	}

	var g errgroup.Group
	g.Go(func() error {
		cmp.Left.Result = r.condensed(ctx, a)
		return nil
	})
	g.Go(func() error {
		cmp.Right.Result = r.condensed(ctx, b)
		return nil
	})
	_ = g.Wait()

	if record != nil {
		for _, side := range []domain.ComparisonSide{cmp.Left, cmp.Right} {
			if side.Result != nil {
				record(*side.Result)
			}
		}
	}
	return cmp
}

// History returns the historical sentences of the primary encyclopedia's page about term,
// or nil when no sentence looks historical.
func (r *Retriever) History(ctx context.Context, term string, record Recorder) *domain.SourceResult {
	page := r.page(ctx, r.historyPrefix+" "+term)
	if page == nil {
		return nil
	}

	kept := textnorm.KeepMatching(page.Extract, historyKeywords, historySentences)
	if len(kept) == 0 {
		r.debug("no historical sentences", "term", term, "page", page.Title)
		return nil
	}

	res := &domain.SourceResult{
		Title:  term,
		Body:   textnorm.Truncate(strings.TrimSpace(textnorm.Clean(textnorm.Join(kept))), textnorm.MaxLength),
		URL:    page.URL,
		Source: page.Source,
		Label:  "Подробнее",
	}
	if record != nil {
		record(*res)
	}
	return res
}

func (r *Retriever) condensed(ctx context.Context, term string) *domain.SourceResult {
	page := r.page(ctx, term)
	if page == nil {
		return nil
	}
	return &domain.SourceResult{
		Title:  page.Title,
		Body:   textnorm.Condense(page.Extract, comparisonSentences, textnorm.MaxLength),
		URL:    page.URL,
		Source: page.Source,
		Label:  "Подробнее",
	}
}

func (r *Retriever) page(ctx context.Context, query string) *domain.Page {
	if r.primary == nil {
		return nil
	}
	name := r.primary.Name()

	page, err := r.primary.Page(ctx, query)
	switch {
	case err == nil && page != nil && strings.TrimSpace(page.Extract) != "":
		r.metrics.SourceLookup(name, outcomeHit)
		return page
	case err == nil || errors.Is(err, domain.ErrNoResult):
		r.metrics.SourceLookup(name, outcomeMiss)
	case ctx.Err() == nil:
		r.metrics.SourceLookup(name, outcomeError)
		r.warn("page lookup failed", "source", name, "query", query, "error", err)
	}
	return nil
}

func (r *Retriever) debug(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Debug(msg, args...)
	}
}

func (r *Retriever) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type nopMetrics struct{}

func (nopMetrics) SourceLookup(string, string) {}
func (nopMetrics) Query(domain.IntentKind) {}
func (nopMetrics) FastPathTimeout() {}
func (nopMetrics) AnswerDuration(domain.IntentKind, time.Duration) {}
