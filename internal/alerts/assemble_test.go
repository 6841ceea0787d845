package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tradequest/newsintel/internal/models"
)

func TestBuildFillsDefaults(t *testing.T) {
	alert := Build(models.RawArticle{}, models.AnalysisVerdict{Severity: models.SeverityMedium})

	require.Equal(t, "Financial Update", alert.Headline)
	require.Equal(t, "Unknown", alert.Source)
	require.Empty(t, alert.URL)
	require.Empty(t, alert.ImageURL)
	require.NotEmpty(t, alert.ID)
}

func TestBuildDerivesTimestampFromPublishTime(t *testing.T) {
	article := models.RawArticle{Headline: "Dated news", PublishedAt: 1700000000}
	alert := Build(article, models.AnalysisVerdict{Severity: models.SeverityHigh})

	require.Equal(t, time.Unix(1700000000, 0).UTC().Format(time.RFC3339), alert.Timestamp)
}

func TestBuildFallsBackToWallClock(t *testing.T) {
	before := time.Now().UTC().Add(-2 * time.Second)
	alert := Build(models.RawArticle{Headline: "Undated news"}, models.AnalysisVerdict{})
	after := time.Now().UTC().Add(2 * time.Second)

	ts, err := time.Parse(time.RFC3339, alert.Timestamp)
	require.NoError(t, err)
	require.True(t, ts.After(before) && ts.Before(after))
}

func TestBuildMintsFreshIDs(t *testing.T) {
	article := models.RawArticle{Headline: "Same article"}
	verdict := models.AnalysisVerdict{Severity: models.SeverityMedium}

	first := Build(article, verdict)
	second := Build(article, verdict)

	require.NotEqual(t, first.ID, second.ID)
}
