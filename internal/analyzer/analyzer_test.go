package analyzer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradequest/newsintel/internal/analyzer"
	"github.com/tradequest/newsintel/internal/cache"
	"github.com/tradequest/newsintel/internal/models"
)

type stubGenerator struct {
	calls    int
	response string
	err      error
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

const validResponse = `{
	"severity": "high",
	"impact_summary": "Chip demand is accelerating.",
	"affected_sectors": ["Technology", "Semiconductors"],
	"recommended_action": "Watch semiconductor names for follow-through.",
	"asset_name": "NVDA"
}`

func newMemo() *cache.Store[models.AnalysisVerdict] {
	return cache.New[models.AnalysisVerdict](100, time.Hour)
}

func TestAnalyzeParsesVerdict(t *testing.T) {
	gen := &stubGenerator{response: validResponse}
	a := analyzer.New(gen, newMemo(), nil)

	verdict := a.Analyze(context.Background(), models.RawArticle{ExternalID: "1", Headline: "Chipmaker beats"})

	require.Equal(t, models.SeverityHigh, verdict.Severity)
	require.Equal(t, "Chip demand is accelerating.", verdict.ImpactSummary)
	require.Equal(t, []string{"Technology", "Semiconductors"}, verdict.AffectedSectors)
	require.Equal(t, "NVDA", verdict.AssetName)
}

func TestAnalyzeCachesByFingerprint(t *testing.T) {
	gen := &stubGenerator{response: validResponse}
	a := analyzer.New(gen, newMemo(), nil)

	article := models.RawArticle{ExternalID: "1", Headline: "Chipmaker beats"}
	first := a.Analyze(context.Background(), article)
	second := a.Analyze(context.Background(), article)

	require.Equal(t, first, second)
	require.Equal(t, 1, gen.calls)

	// A different headline is a different fingerprint.
	a.Analyze(context.Background(), models.RawArticle{ExternalID: "1", Headline: "Chipmaker misses"})
	require.Equal(t, 2, gen.calls)
}

func TestAnalyzeMissingKeyFallsBack(t *testing.T) {
	gen := &stubGenerator{response: `{"impact_summary": "x", "affected_sectors": [], "recommended_action": "y", "asset_name": "z"}`}
	a := analyzer.New(gen, newMemo(), nil)

	verdict := a.Analyze(context.Background(), models.RawArticle{ExternalID: "2", Headline: "No severity"})

	require.Equal(t, models.SeverityMedium, verdict.Severity)
	require.Equal(t, []string{"Financials"}, verdict.AffectedSectors)
	require.Equal(t, "Market", verdict.AssetName)
}

func TestAnalyzeMalformedJSONFallsBack(t *testing.T) {
	gen := &stubGenerator{response: `not json at all`}
	a := analyzer.New(gen, newMemo(), nil)

	verdict := a.Analyze(context.Background(), models.RawArticle{ExternalID: "3", Headline: "Broken", Related: "AAPL,MSFT"})

	require.Equal(t, models.SeverityMedium, verdict.Severity)
	require.Equal(t, "AAPL, MSFT", verdict.AssetName)
}

func TestAnalyzeGeneratorErrorCachesFallback(t *testing.T) {
	gen := &stubGenerator{err: errors.New("model unavailable")}
	a := analyzer.New(gen, newMemo(), nil)

	article := models.RawArticle{ExternalID: "4", Headline: "Fed hikes rates"}
	verdict := a.Analyze(context.Background(), article)
	require.Equal(t, models.SeverityMedium, verdict.Severity)

	// The fallback is cached; the failing article is not retried.
	a.Analyze(context.Background(), article)
	require.Equal(t, 1, gen.calls)
}

func TestAnalyzeCoercesUnknownSeverity(t *testing.T) {
	gen := &stubGenerator{response: `{
		"severity": "catastrophic",
		"impact_summary": "x",
		"affected_sectors": ["Energy", "Utilities", "Industrials"],
		"recommended_action": "y",
		"asset_name": "OIL"
	}`}
	a := analyzer.New(gen, newMemo(), nil)

	verdict := a.Analyze(context.Background(), models.RawArticle{ExternalID: "5", Headline: "Oil shock"})

	require.Equal(t, models.SeverityMedium, verdict.Severity)
	require.Len(t, verdict.AffectedSectors, 2)
}

func TestAnalyzeNilGeneratorFallsBack(t *testing.T) {
	a := analyzer.New(nil, newMemo(), nil)

	verdict := a.Analyze(context.Background(), models.RawArticle{ExternalID: "6", Headline: "Quiet day"})

	require.Equal(t, models.SeverityMedium, verdict.Severity)
	require.Equal(t, "Market", verdict.AssetName)
}

func TestFingerprintStability(t *testing.T) {
	a := models.RawArticle{ExternalID: "7", Headline: "Same"}
	b := models.RawArticle{ExternalID: "7", Headline: "Same", Summary: "different body"}
	c := models.RawArticle{ExternalID: "8", Headline: "Same"}

	require.Equal(t, analyzer.Fingerprint(a), analyzer.Fingerprint(b))
	require.NotEqual(t, analyzer.Fingerprint(a), analyzer.Fingerprint(c))
}
