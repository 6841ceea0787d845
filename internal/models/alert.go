package models

// Severity levels form a closed set; anything else coming back from the
// analyzer is coerced to medium before it leaves the analysis layer.
const (
	SeverityCritical = "critical"
	SeverityHigh     = "high"
	SeverityMedium   = "medium"
)

// SeverityRank maps a severity to its sort position for the REST feed.
// Unknown values sort after the known set.
func SeverityRank(severity string) int {
	switch severity {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

// RawArticle is one article as delivered by the news provider. It lives only
// for the duration of a single fetch/analyze/assemble cycle.
type RawArticle struct {
	ExternalID  string // provider-assigned id, empty when absent
	Headline    string
	Summary     string
	Source      string
	PublishedAt int64 // epoch seconds, zero when the provider omits it
	URL         string
	ImageURL    string
	Related     string // comma-joined related symbols
}

// AnalysisVerdict is the structured classification of one article.
type AnalysisVerdict struct {
	Severity          string   `json:"severity"`
	ImpactSummary     string   `json:"impact_summary"`
	AffectedSectors   []string `json:"affected_sectors"`
	RecommendedAction string   `json:"recommended_action"`
	AssetName         string   `json:"asset_name"`
}

// Alert is the externally visible unit served over REST and the event stream.
// Every assembly produces a fresh ID, even when the verdict came from cache.
type Alert struct {
	ID                string   `json:"id"`
	Severity          string   `json:"severity"`
	Headline          string   `json:"headline"`
	ImpactSummary     string   `json:"impact_summary"`
	AffectedSectors   []string `json:"affected_sectors"`
	RecommendedAction string   `json:"recommended_action"`
	AssetName         string   `json:"asset_name"`
	Source            string   `json:"source"`
	URL               string   `json:"url"`
	ImageURL          string   `json:"image_url,omitempty"`
	Timestamp         string   `json:"timestamp"`
}
