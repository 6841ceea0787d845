// Package finnhub adapts the Finnhub market-news API into the pipeline's
// article shape. Every failure mode degrades to an empty batch: a missing
// API key short-circuits without a network call, and network or decode
// errors are logged and absorbed.
package finnhub

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tradequest/newsintel/internal/models"
)

const defaultBaseURL = "https://finnhub.io/api/v1"

// Client fetches market news from the Finnhub REST API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

// New instantiates the client. An empty baseURL selects the public API.
func New(baseURL, token string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logger,
	}
}

// article mirrors one element of the Finnhub /news payload.
type article struct {
	ID       int64  `json:"id"`
	Headline string `json:"headline"`
	Summary  string `json:"summary"`
	Source   string `json:"source"`
	Datetime int64  `json:"datetime"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	Related  string `json:"related"`
}

// Fetch returns at most limit articles for the category, newest first as
// delivered by the provider. Ordering is preserved; no re-sorting happens
// at this layer.
func (c *Client) Fetch(ctx context.Context, category string, limit int) []models.RawArticle {
	if c.token == "" {
		c.log.Debug("no finnhub api key configured, skipping live news")
		return nil
	}

	params := url.Values{
		"category": {category},
		"token":    {c.token},
	}
	endpoint := c.baseURL + "/news?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.log.Warn("build news request", slog.Any("err", err))
		return nil
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("fetch news", slog.Any("err", err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("news fetch returned non-200", slog.Int("status", resp.StatusCode))
		return nil
	}

	var raw []article
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		c.log.Warn("decode news payload", slog.Any("err", err))
		return nil
	}

	if limit > 0 && len(raw) > limit {
		raw = raw[:limit]
	}

	out := make([]models.RawArticle, 0, len(raw))
	for _, a := range raw {
		id := ""
		if a.ID != 0 {
			id = strconv.FormatInt(a.ID, 10)
		}
		out = append(out, models.RawArticle{
			ExternalID:  id,
			Headline:    a.Headline,
			Summary:     a.Summary,
			Source:      a.Source,
			PublishedAt: a.Datetime,
			URL:         a.URL,
			ImageURL:    a.Image,
			Related:     a.Related,
		})
	}
	return out
}
