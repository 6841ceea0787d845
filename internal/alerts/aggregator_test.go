package alerts

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradequest/newsintel/internal/analyzer"
	"github.com/tradequest/newsintel/internal/cache"
	"github.com/tradequest/newsintel/internal/models"
	"github.com/tradequest/newsintel/internal/scenarios"
)

type stubSource struct {
	mu       sync.Mutex
	articles []models.RawArticle
	calls    int
	gotLimit int
}

func (s *stubSource) Fetch(_ context.Context, _ string, limit int) []models.RawArticle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.gotLimit = limit
	if limit > 0 && len(s.articles) > limit {
		return s.articles[:limit]
	}
	return s.articles
}

// severityByID assigns each article a fixed severity keyed by external id.
type severityByID map[string]string

func (m severityByID) Analyze(_ context.Context, article models.RawArticle) models.AnalysisVerdict {
	severity, ok := m[article.ExternalID]
	if !ok {
		severity = models.SeverityMedium
	}
	return models.AnalysisVerdict{Severity: severity, AssetName: article.ExternalID}
}

type recordingSink struct {
	mu        sync.Mutex
	delivered []models.Alert
	err       error
}

func (r *recordingSink) Deliver(_ context.Context, alert models.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.delivered = append(r.delivered, alert)
	return r.err
}

func TestListRanksBySeverity(t *testing.T) {
	source := &stubSource{articles: []models.RawArticle{
		{ExternalID: "m1", Headline: "medium one"},
		{ExternalID: "c1", Headline: "critical one"},
		{ExternalID: "h1", Headline: "high one"},
		{ExternalID: "m2", Headline: "medium two"},
		{ExternalID: "c2", Headline: "critical two"},
	}}
	agg := &Aggregator{
		Source: source,
		Analyzer: severityByID{
			"c1": models.SeverityCritical, "c2": models.SeverityCritical,
			"h1": models.SeverityHigh,
			"m1": models.SeverityMedium, "m2": models.SeverityMedium,
		},
		FetchLimit:  12,
		Concurrency: 4,
	}

	result := agg.List(context.Background())

	require.Equal(t, 5, result.Total)
	require.Equal(t, SourceLive, result.Source)
	require.Equal(t, 12, source.gotLimit)

	for i := 1; i < len(result.Alerts); i++ {
		require.LessOrEqual(t,
			models.SeverityRank(result.Alerts[i-1].Severity),
			models.SeverityRank(result.Alerts[i].Severity))
	}

	// The sort is stable: ties keep input order.
	require.Equal(t, "c1", result.Alerts[0].AssetName)
	require.Equal(t, "c2", result.Alerts[1].AssetName)
	require.Equal(t, "m1", result.Alerts[3].AssetName)
	require.Equal(t, "m2", result.Alerts[4].AssetName)
}

func TestListSubstitutesScenarioFallback(t *testing.T) {
	agg := &Aggregator{
		Source:   &stubSource{},
		Fallback: scenarios.Articles,
		Analyzer: severityByID{},
	}

	result := agg.List(context.Background())

	require.Equal(t, len(scenarios.All()), result.Total)
	require.Equal(t, SourceScenario, result.Source)
	for _, alert := range result.Alerts {
		require.Equal(t, scenarios.SourceLabel, alert.Source)
	}
}

func TestListDeliversToSinks(t *testing.T) {
	sink := &recordingSink{}
	failing := &recordingSink{err: errors.New("sink down")}
	agg := &Aggregator{
		Source:   &stubSource{articles: []models.RawArticle{{ExternalID: "a", Headline: "one"}}},
		Analyzer: severityByID{},
		Sinks:    []Sink{sink, failing},
	}

	result := agg.List(context.Background())

	// A failing sink never affects the serving path.
	require.Equal(t, 1, result.Total)
	require.Len(t, sink.delivered, 1)
	require.Len(t, failing.delivered, 1)
}

type failingGenerator struct {
	mu    sync.Mutex
	calls int
	err   error
	resp  string
}

func (f *failingGenerator) Generate(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.resp, f.err
}

func TestListEndToEndAnalyzerFailure(t *testing.T) {
	source := &stubSource{articles: []models.RawArticle{
		{ExternalID: "a1", Headline: "Fed hikes rates"},
	}}
	memo := cache.New[models.AnalysisVerdict](10, time.Hour)
	agg := &Aggregator{
		Source:   source,
		Analyzer: analyzer.New(&failingGenerator{err: errors.New("model down")}, memo, nil),
	}

	before := time.Now().UTC().Add(-2 * time.Second)
	result := agg.List(context.Background())
	after := time.Now().UTC().Add(2 * time.Second)

	require.Equal(t, 1, result.Total)
	alert := result.Alerts[0]
	require.Equal(t, models.SeverityMedium, alert.Severity)
	require.Equal(t, []string{"Financials"}, alert.AffectedSectors)

	ts, err := time.Parse(time.RFC3339, alert.Timestamp)
	require.NoError(t, err)
	require.True(t, ts.After(before) && ts.Before(after))
}

func TestListReusesVerdictWithFreshID(t *testing.T) {
	source := &stubSource{articles: []models.RawArticle{
		{ExternalID: "a1", Headline: "Chipmaker beats"},
	}}
	gen := &failingGenerator{resp: `{
		"severity": "high",
		"impact_summary": "Strong quarter.",
		"affected_sectors": ["Technology"],
		"recommended_action": "Watch the sector.",
		"asset_name": "NVDA"
	}`}
	memo := cache.New[models.AnalysisVerdict](10, time.Hour)
	agg := &Aggregator{
		Source:   source,
		Analyzer: analyzer.New(gen, memo, nil),
	}

	first := agg.List(context.Background())
	second := agg.List(context.Background())

	require.Equal(t, 1, gen.calls)

	a, b := first.Alerts[0], second.Alerts[0]
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t, a.Severity, b.Severity)
	require.Equal(t, a.ImpactSummary, b.ImpactSummary)
	require.Equal(t, a.AffectedSectors, b.AffectedSectors)
	require.Equal(t, a.RecommendedAction, b.RecommendedAction)
	require.Equal(t, a.AssetName, b.AssetName)
}
