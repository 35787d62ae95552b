package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wikigraph-backend/application/ports"
	"wikigraph-backend/domain/core/valueobjects"
	"wikigraph-backend/infrastructure/config"
	pkgerrors "wikigraph-backend/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// linkPageLimit matches the data source's page size for link queries; the
// link list an article carries is best-effort and may be truncated here.
const linkPageLimit = 50

// Client resolves articles against the Wikipedia REST and Action APIs.
// Calls are rate limited and run behind a circuit breaker; a missing page is
// a NotFoundError and every transport-level failure surfaces as
// SourceUnavailableError. The client never retries.
type Client struct {
	httpClient *http.Client
	restBase   string
	actionBase string
	userAgent  string
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates a new Wikipedia client
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "wikipedia",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.Requests >= 5 && counts.TotalFailures*2 > counts.Requests
		},
		// A missing article is an answer, not a source failure.
		IsSuccessful: func(err error) bool {
			return err == nil || pkgerrors.IsNotFound(err)
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.ResolveTimeout},
		restBase:   strings.TrimRight(cfg.WikipediaRESTBaseURL, "/"),
		actionBase: cfg.WikipediaActionBaseURL,
		userAgent:  cfg.UserAgent,
		limiter:    rate.NewLimiter(rate.Limit(cfg.ResolveRatePerSecond), cfg.ResolveBurst),
		breaker:    breaker,
		logger:     logger,
	}
}

// summaryResponse mirrors the REST summary payload fields we consume
type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// linksResponse mirrors the Action API link query payload
type linksResponse struct {
	Query struct {
		Pages map[string]struct {
			Links []struct {
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
	} `json:"query"`
}

// Resolve fetches the article behind a query, title, or URL
func (c *Client) Resolve(ctx context.Context, query string) (*ports.ResolvedArticle, error) {
	title := valueobjects.ParseQuery(query)
	if title == "" {
		return nil, pkgerrors.NewValidationError("query cannot be empty")
	}

	value, err := c.breaker.Execute(func() (interface{}, error) {
		return c.resolve(ctx, title)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, pkgerrors.NewSourceUnavailableError("wikipedia circuit open").WithCause(err)
		}
		return nil, err
	}

	return value.(*ports.ResolvedArticle), nil
}

func (c *Client) resolve(ctx context.Context, title string) (*ports.ResolvedArticle, error) {
	summary, err := c.fetchSummary(ctx, title)
	if err != nil {
		return nil, err
	}

	canonical := valueobjects.NormalizeTitle(summary.Title)

	document, err := c.fetchHTML(ctx, canonical)
	if err != nil {
		return nil, err
	}

	links, err := c.fetchLinks(ctx, canonical)
	if err != nil {
		return nil, err
	}

	sourceURL := summary.ContentURLs.Desktop.Page
	if sourceURL == "" {
		sourceURL = c.articleURL(canonical)
	}

	c.logger.Debug("resolved article",
		zap.String("query", title),
		zap.String("canonicalTitle", canonical),
		zap.Int("links", len(links)),
	)

	return &ports.ResolvedArticle{
		CanonicalTitle: canonical,
		Content:        summary.Extract,
		FullDocument:   document,
		SourceURL:      sourceURL,
		OutgoingLinks:  links,
	}, nil
}

func (c *Client) fetchSummary(ctx context.Context, title string) (*summaryResponse, error) {
	endpoint := c.restBase + "/page/summary/" + titlePath(title)

	body, err := c.get(ctx, endpoint, "article")
	if err != nil {
		return nil, err
	}

	var summary summaryResponse
	if err := json.Unmarshal(body, &summary); err != nil {
		return nil, pkgerrors.NewSourceUnavailableError("malformed summary response").WithCause(err)
	}
	if summary.Title == "" {
		return nil, pkgerrors.NewSourceUnavailableError("summary response missing title")
	}

	return &summary, nil
}

func (c *Client) fetchHTML(ctx context.Context, title string) (string, error) {
	endpoint := c.restBase + "/page/html/" + titlePath(title)

	body, err := c.get(ctx, endpoint, "article")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) fetchLinks(ctx context.Context, title string) ([]ports.ResolvedLink, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "links")
	params.Set("plnamespace", "0")
	params.Set("pllimit", fmt.Sprintf("%d", linkPageLimit))
	params.Set("titles", title)

	body, err := c.get(ctx, c.actionBase+"?"+params.Encode(), "article links")
	if err != nil {
		return nil, err
	}

	var response linksResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, pkgerrors.NewSourceUnavailableError("malformed links response").WithCause(err)
	}

	var links []ports.ResolvedLink
	for _, page := range response.Query.Pages {
		for _, link := range page.Links {
			links = append(links, ports.ResolvedLink{
				Title: link.Title,
				URL:   c.articleURL(link.Title),
			})
		}
	}

	return links, nil
}

// get performs one rate-limited request, mapping status codes onto the
// resolver's error contract.
func (c *Client) get(ctx context.Context, endpoint, resource string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, pkgerrors.NewSourceUnavailableError("rate limiter interrupted").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, pkgerrors.NewInternalError("building request", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewSourceUnavailableError("wikipedia request failed").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, pkgerrors.NewNotFoundError(resource)
	case resp.StatusCode != http.StatusOK:
		return nil, pkgerrors.NewSourceUnavailableError(
			fmt.Sprintf("wikipedia returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, pkgerrors.NewSourceUnavailableError("reading response body").WithCause(err)
	}

	return body, nil
}

// articleURL builds the canonical external URL for a title, using the REST
// base's host.
func (c *Client) articleURL(title string) string {
	parsed, err := url.Parse(c.restBase)
	if err != nil {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host + "/wiki/" + titlePath(title)
}

// titlePath converts a display title into its URL path segment
func titlePath(title string) string {
	return url.PathEscape(strings.ReplaceAll(title, " ", "_"))
}
