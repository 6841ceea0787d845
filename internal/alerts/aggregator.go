package alerts

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/tradequest/newsintel/internal/models"
)

// newsCategory is the only category the pipeline consumes.
const newsCategory = "general"

// Provenance values for the REST payload.
const (
	SourceLive     = "live"
	SourceScenario = "scenario"
)

// Source yields a bounded batch of raw articles. Implementations absorb
// their own failures and return an empty batch instead of an error.
type Source interface {
	Fetch(ctx context.Context, category string, limit int) []models.RawArticle
}

// Analyzer classifies one article and always produces a verdict.
type Analyzer interface {
	Analyze(ctx context.Context, article models.RawArticle) models.AnalysisVerdict
}

// Sink receives each assembled alert for side delivery (archive, feed).
// Delivery failures are logged and never affect the serving path.
type Sink interface {
	Deliver(ctx context.Context, alert models.Alert) error
}

// ListResult is the REST payload. Source reports whether the batch came
// from live news or the scenario fallback.
type ListResult struct {
	Alerts []models.Alert `json:"alerts"`
	Total  int            `json:"total"`
	Source string         `json:"source"`
}

// Aggregator materializes the ranked alert list for the REST endpoint.
type Aggregator struct {
	Source      Source
	Fallback    func() []models.RawArticle
	Analyzer    Analyzer
	FetchLimit  int
	Concurrency int
	Sinks       []Sink
	Log         *slog.Logger
}

// List fetches a batch of articles, substitutes the fallback set when the
// live source is empty, analyzes each article with bounded fan-out, and
// returns the assembled alerts in severity order (critical, high, medium;
// ties keep input order). It never fails: worst case is a fully canned
// result.
func (a *Aggregator) List(ctx context.Context) ListResult {
	limit := a.FetchLimit
	if limit <= 0 {
		limit = 12
	}

	articles := a.Source.Fetch(ctx, newsCategory, limit)
	provenance := SourceLive
	if len(articles) == 0 && a.Fallback != nil {
		articles = a.Fallback()
		provenance = SourceScenario
	}

	verdicts := make([]models.AnalysisVerdict, len(articles))
	var g errgroup.Group
	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	g.SetLimit(concurrency)
	for i, article := range articles {
		g.Go(func() error {
			verdicts[i] = a.Analyzer.Analyze(ctx, article)
			return nil
		})
	}
	_ = g.Wait() // analysis never errors

	out := make([]models.Alert, 0, len(articles))
	for i, article := range articles {
		alert := Build(article, verdicts[i])
		out = append(out, alert)
		a.deliver(ctx, alert)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return models.SeverityRank(out[i].Severity) < models.SeverityRank(out[j].Severity)
	})

	return ListResult{Alerts: out, Total: len(out), Source: provenance}
}

func (a *Aggregator) deliver(ctx context.Context, alert models.Alert) {
	for _, sink := range a.Sinks {
		if err := sink.Deliver(ctx, alert); err != nil {
			a.logger().Warn("alert delivery failed", slog.Any("err", err), slog.String("alert_id", alert.ID))
		}
	}
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Log != nil {
		return a.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
