// Package alerts turns analyzed articles into served alerts: the assembler
// normalizes one article+verdict pair, the aggregator materializes the
// ranked REST list, and the publisher drives the live event stream.
package alerts

import (
	"time"

	"github.com/google/uuid"

	"github.com/tradequest/newsintel/internal/models"
)

// Build merges an article with its verdict into an Alert. Every call mints
// a fresh id, even for a cache-hit verdict. The timestamp comes from the
// article's publish time when present, otherwise the wall clock.
func Build(article models.RawArticle, verdict models.AnalysisVerdict) models.Alert {
	headline := article.Headline
	if headline == "" {
		headline = "Financial Update"
	}
	source := article.Source
	if source == "" {
		source = "Unknown"
	}

	ts := time.Now().UTC()
	if article.PublishedAt > 0 {
		ts = time.Unix(article.PublishedAt, 0).UTC()
	}

	return models.Alert{
		ID:                uuid.NewString(),
		Severity:          verdict.Severity,
		Headline:          headline,
		ImpactSummary:     verdict.ImpactSummary,
		AffectedSectors:   verdict.AffectedSectors,
		RecommendedAction: verdict.RecommendedAction,
		AssetName:         verdict.AssetName,
		Source:            source,
		URL:               article.URL,
		ImageURL:          article.ImageURL,
		Timestamp:         ts.Format(time.RFC3339),
	}
}
