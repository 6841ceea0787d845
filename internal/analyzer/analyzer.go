// Package analyzer classifies news articles into market-impact verdicts
// using Gemini, with a bounded memo keyed by article fingerprint and a
// deterministic fallback so callers always get a verdict.
package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/tradequest/newsintel/internal/cache"
	"github.com/tradequest/newsintel/internal/models"
)

const generalMarket = "General Market"

// Generator produces one model completion for the analysis conversation.
type Generator interface {
	Generate(ctx context.Context, userPrompt string) (string, error)
}

// Analyzer memoizes verdicts per article fingerprint. A nil generator is
// allowed and yields the fallback verdict for every uncached article.
type Analyzer struct {
	gen    Generator
	memo   *cache.Store[models.AnalysisVerdict]
	flight singleflight.Group
	log    *slog.Logger
}

// New builds an analyzer over the given generator and memo store.
func New(gen Generator, memo *cache.Store[models.AnalysisVerdict], logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Analyzer{gen: gen, memo: memo, log: logger}
}

// Fingerprint derives the memo key from the article's external id and
// headline. This is content identity, not cryptographic identity: two
// articles sharing id and headline intentionally collide.
func Fingerprint(a models.RawArticle) string {
	sum := md5.Sum([]byte(a.ExternalID + "-" + a.Headline))
	return hex.EncodeToString(sum[:])
}

// Analyze classifies one article. Repeat calls for the same fingerprint
// within the memo window return the cached verdict without touching the
// model; concurrent first calls collapse into a single upstream request.
// Analyze never fails: any upstream problem degrades to the fallback
// verdict, which is cached too so a failing article is not retried on
// every recurrence.
func (a *Analyzer) Analyze(ctx context.Context, article models.RawArticle) models.AnalysisVerdict {
	key := Fingerprint(article)
	if v, ok := a.memo.Get(key); ok {
		return v
	}

	v, _, _ := a.flight.Do(key, func() (any, error) {
		if cached, ok := a.memo.Get(key); ok {
			return cached, nil
		}
		verdict := a.analyzeRemote(ctx, article)
		a.memo.Put(key, verdict)
		return verdict, nil
	})
	return v.(models.AnalysisVerdict)
}

func (a *Analyzer) analyzeRemote(ctx context.Context, article models.RawArticle) models.AnalysisVerdict {
	related := relatedSymbols(article.Related)

	if a.gen == nil {
		a.log.Debug("no analysis model configured, using fallback verdict")
		return fallbackVerdict(related)
	}

	raw, err := a.gen.Generate(ctx, buildPrompt(article, related))
	if err != nil {
		a.log.Warn("article analysis failed", slog.Any("err", err), slog.String("headline", article.Headline))
		return fallbackVerdict(related)
	}

	verdict, err := parseVerdict(raw)
	if err != nil {
		a.log.Warn("article analysis unparseable", slog.Any("err", err), slog.String("headline", article.Headline))
		return fallbackVerdict(related)
	}
	return verdict
}

// relatedSymbols keeps at most the first three related-symbol tokens.
func relatedSymbols(related string) string {
	if strings.TrimSpace(related) == "" {
		return generalMarket
	}
	parts := strings.Split(related, ",")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return generalMarket
	}
	return strings.Join(out, ", ")
}

func buildPrompt(article models.RawArticle, related string) string {
	headline := article.Headline
	if headline == "" {
		headline = "Financial News Update"
	}
	source := article.Source
	if source == "" {
		source = "Unknown"
	}

	return fmt.Sprintf(`## Live Financial News

**Source:** %s
**Headline:** %s
**Summary:** %s
**Related Symbols:** %s

Analyze this news and produce your market-impact alert.`, source, headline, article.Summary, related)
}

// verdictWire detects missing keys via pointer fields; the required key set
// must be a subset of the response object's keys or the whole response is
// rejected.
type verdictWire struct {
	Severity          *string   `json:"severity"`
	ImpactSummary     *string   `json:"impact_summary"`
	AffectedSectors   *[]string `json:"affected_sectors"`
	RecommendedAction *string   `json:"recommended_action"`
	AssetName         *string   `json:"asset_name"`
}

func parseVerdict(raw string) (models.AnalysisVerdict, error) {
	var wire verdictWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return models.AnalysisVerdict{}, fmt.Errorf("decode verdict: %w", err)
	}
	if wire.Severity == nil || wire.ImpactSummary == nil || wire.AffectedSectors == nil ||
		wire.RecommendedAction == nil || wire.AssetName == nil {
		return models.AnalysisVerdict{}, errors.New("verdict missing required keys")
	}

	v := models.AnalysisVerdict{
		Severity:          *wire.Severity,
		ImpactSummary:     *wire.ImpactSummary,
		AffectedSectors:   *wire.AffectedSectors,
		RecommendedAction: *wire.RecommendedAction,
		AssetName:         *wire.AssetName,
	}

	switch v.Severity {
	case models.SeverityCritical, models.SeverityHigh, models.SeverityMedium:
	default:
		v.Severity = models.SeverityMedium
	}

	if len(v.AffectedSectors) > 2 {
		v.AffectedSectors = v.AffectedSectors[:2]
	}

	return v, nil
}

func fallbackVerdict(related string) models.AnalysisVerdict {
	asset := related
	if asset == generalMarket {
		asset = "Market"
	}
	return models.AnalysisVerdict{
		Severity:          models.SeverityMedium,
		ImpactSummary:     "Market-moving news detected. Monitor related assets for potential volatility.",
		AffectedSectors:   []string{"Financials"},
		RecommendedAction: "Review your portfolio and watch for further developments.",
		AssetName:         asset,
	}
}
