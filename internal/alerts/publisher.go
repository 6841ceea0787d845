package alerts

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/tradequest/newsintel/internal/cache"
	"github.com/tradequest/newsintel/internal/models"
)

// Publisher drives one stream connection: it polls the news source on an
// interval, suppresses articles already emitted on the process-wide ledger,
// and pushes freshly assembled alerts in upstream fetch order. Ranking is
// deliberately not applied on the stream; freshness wins over priority.
type Publisher struct {
	Source     Source
	Analyzer   Analyzer
	Ledger     *cache.Store[struct{}]
	Interval   time.Duration
	MaxBackoff time.Duration
	FetchLimit int
	Sinks      []Sink
	Log        *slog.Logger
}

// Run polls until ctx is canceled or push reports the client gone.
// Consecutive empty fetches double the wait up to MaxBackoff; the first
// nonempty fetch snaps it back to the base interval.
func (p *Publisher) Run(ctx context.Context, push func(models.Alert) error) error {
	interval := p.Interval
	if interval <= 0 {
		interval = 45 * time.Second
	}
	maxBackoff := p.MaxBackoff
	if maxBackoff < interval {
		maxBackoff = 8 * interval
	}
	limit := p.FetchLimit
	if limit <= 0 {
		limit = 5
	}

	wait := interval
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		articles := p.Source.Fetch(ctx, newsCategory, limit)
		if len(articles) == 0 {
			wait = min(wait*2, maxBackoff)
			continue
		}
		wait = interval

		for _, article := range articles {
			// Identity-less articles cannot be tracked and always count
			// as new.
			if article.ExternalID != "" && !p.Ledger.PutIfAbsent(article.ExternalID, struct{}{}) {
				continue
			}

			alert := Build(article, p.Analyzer.Analyze(ctx, article))
			p.deliver(ctx, alert)

			if err := push(alert); err != nil {
				return err
			}
		}
	}
}

func (p *Publisher) deliver(ctx context.Context, alert models.Alert) {
	for _, sink := range p.Sinks {
		if err := sink.Deliver(ctx, alert); err != nil {
			p.logger().Warn("alert delivery failed", slog.Any("err", err), slog.String("alert_id", alert.ID))
		}
	}
}

func (p *Publisher) logger() *slog.Logger {
	if p.Log != nil {
		return p.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
