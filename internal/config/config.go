package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Archive holds the optional Elasticsearch alert-archive parameters shared
// by the api and retention services. An empty address disables the archive.
type Archive struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Enabled reports whether the alert archive is configured.
func (a Archive) Enabled() bool {
	return a.ElasticsearchAddr != ""
}

// API describes the alert service: upstream credentials, pipeline bounds,
// and the optional side sinks.
type API struct {
	Archive
	BindAddr string

	FinnhubAPIKey  string
	FinnhubBaseURL string
	GeminiAPIKey   string
	GeminiModel    string

	FetchLimit          int
	StreamFetchLimit    int
	PollInterval        time.Duration
	MaxBackoff          time.Duration
	AnalysisConcurrency int

	CacheCapacity  int
	CacheTTL       time.Duration
	LedgerCapacity int
	LedgerTTL      time.Duration

	KafkaBrokers []string
	KafkaTopic   string
}

// FeedEnabled reports whether the Kafka alert feed is configured.
func (c *API) FeedEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Retention configures the archive cleanup loop.
type Retention struct {
	Archive
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Archive: Archive{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", ""),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "alerts"),
		},
		BindAddr:            getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		FinnhubAPIKey:       getEnv("FINNHUB_API_KEY", ""),
		FinnhubBaseURL:      getEnv("FINNHUB_BASE_URL", "https://finnhub.io/api/v1"),
		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		FetchLimit:          getInt("NEWS_FETCH_LIMIT", 12),
		StreamFetchLimit:    getInt("STREAM_FETCH_LIMIT", 5),
		PollInterval:        getDuration("STREAM_POLL_INTERVAL", "45s"),
		MaxBackoff:          getDuration("STREAM_MAX_BACKOFF", "6m"),
		AnalysisConcurrency: getInt("ANALYSIS_CONCURRENCY", 4),
		CacheCapacity:       getInt("ANALYSIS_CACHE_CAPACITY", 10000),
		CacheTTL:            getDuration("ANALYSIS_CACHE_TTL", "24h"),
		LedgerCapacity:      getInt("LEDGER_CAPACITY", 20000),
		LedgerTTL:           getDuration("LEDGER_TTL", "24h"),
		KafkaBrokers:        splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:          getEnv("KAFKA_TOPIC", "news_alerts"),
	}

	if c.FetchLimit <= 0 {
		return nil, fmt.Errorf("NEWS_FETCH_LIMIT must be positive")
	}
	if c.StreamFetchLimit <= 0 {
		return nil, fmt.Errorf("STREAM_FETCH_LIMIT must be positive")
	}
	if c.PollInterval <= 0 {
		return nil, fmt.Errorf("STREAM_POLL_INTERVAL must be positive")
	}
	if c.MaxBackoff < c.PollInterval {
		return nil, fmt.Errorf("STREAM_MAX_BACKOFF cannot be below STREAM_POLL_INTERVAL")
	}
	if c.AnalysisConcurrency <= 0 {
		return nil, fmt.Errorf("ANALYSIS_CONCURRENCY must be positive")
	}
	if c.CacheCapacity <= 0 {
		return nil, fmt.Errorf("ANALYSIS_CACHE_CAPACITY must be positive")
	}
	if c.LedgerCapacity <= 0 {
		return nil, fmt.Errorf("LEDGER_CAPACITY must be positive")
	}
	if c.FeedEnabled() && c.KafkaTopic == "" {
		return nil, fmt.Errorf("KAFKA_TOPIC must be set when KAFKA_BROKERS is configured")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Archive: Archive{
			ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", ""),
			ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "alerts"),
		},
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "168h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
