package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"vacancyhub/common/cache"
	"vacancyhub/common/cache/redis"
	"vacancyhub/common/telemetry"
	"vacancyhub/services/vacancies/internal/config"
	"vacancyhub/services/vacancies/internal/errors"
	"vacancyhub/services/vacancies/internal/models"

	"go.uber.org/zap"
)

var tracer = telemetry.GetTracer("vacancyhub/vacancies/api")

const maxPerPage = 100

type VacancySourceClient interface {
	SearchPage(ctx context.Context, keyword string, page int) (*models.SearchPage, error)
	FetchVacancies(ctx context.Context, keyword string) ([]models.RawVacancy, error)
}

type hhClient struct {
	client  *http.Client
	logger  *zap.Logger
	config  *config.Config
	cache   cache.Cache
	perPage int
}

func NewVacancySourceClient(logger *zap.Logger, config *config.Config) VacancySourceClient {
	var c cache.Cache = cache.NewNoop()
	if config.CacheEnabled() {
		c = redis.New(cache.Options{
			RedisURL:      config.RedisAddr,
			RedisPassword: config.RedisPassword,
			RedisDB:       config.RedisDB,
			DefaultTTL:    config.CacheTTL,
		})
	}

	return NewVacancySourceClientWithCache(logger, config, &http.Client{Timeout: config.HHAPITimeout}, c)
}

func NewVacancySourceClientWithCache(logger *zap.Logger, config *config.Config, httpClient *http.Client, c cache.Cache) VacancySourceClient {
	perPage := config.HHPerPage
	if perPage <= 0 || perPage > maxPerPage {
		perPage = maxPerPage
	}

	return &hhClient{
		client:  httpClient,
		logger:  logger,
		config:  config,
		cache:   c,
		perPage: perPage,
	}
}

func (c *hhClient) SearchPage(ctx context.Context, keyword string, page int) (*models.SearchPage, error) {
	ctx, span := tracer.Start(ctx, "SearchPage")
	defer span.End()
	span.SetAttributes(
		telemetry.String("hh.keyword", keyword),
		telemetry.Int("hh.page", page),
		telemetry.Int("hh.per_page", c.perPage),
	)

	cacheKey := fmt.Sprintf("hh:search:%s:%d:%d", keyword, page, c.perPage)

	var cached string
	err := c.cache.Get(ctx, cacheKey, &cached)
	if err == nil {
		var result models.SearchPage
		if jerr := json.Unmarshal([]byte(cached), &result); jerr == nil {
			span.SetAttributes(telemetry.String("cache.result", "hit"))
			c.logger.Debug("cache hit for search page",
				zap.String("keyword", keyword),
				zap.Int("page", page))
			return &result, nil
		}
		span.SetAttributes(telemetry.String("cache.result", "corrupt"))
		c.logger.Warn("discarding undecodable cached search page", zap.String("key", cacheKey))
	} else if err != cache.ErrNotFound {
		span.SetAttributes(telemetry.String("cache.result", "error"))
		span.RecordError(err)
		c.logger.Warn("cache error for search page", zap.Error(err))
	} else {
		span.SetAttributes(telemetry.String("cache.result", "miss"))
	}

	apiURL, err := c.buildURL(keyword, page)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("building request URL", err)
	}
	span.SetAttributes(telemetry.String("http.url", apiURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Internal("creating request", err)
	}
	req.Header.Set("User-Agent", c.config.HHUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		c.logger.Error("failed to execute request", zap.Int("page", page), zap.Error(err))
		return nil, errors.Network(fmt.Sprintf("fetching page %d", page), err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	span.SetAttributes(
		telemetry.Int("http.status_code", resp.StatusCode),
		telemetry.String("http.method", http.MethodGet),
	)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, errors.Network(fmt.Sprintf("reading page %d", page), err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status code",
			zap.Int("page", page),
			zap.Int("status_code", resp.StatusCode))
		return nil, errors.Network(fmt.Sprintf("unexpected status code %d for page %d: %s", resp.StatusCode, page, truncate(body, 200)), nil)
	}

	var result models.SearchPage
	if err := json.Unmarshal(body, &result); err != nil {
		span.RecordError(err)
		c.logger.Error("failed to decode response", zap.Int("page", page), zap.Error(err))
		return nil, errors.Parse(fmt.Sprintf("decoding page %d", page), err)
	}

	c.logger.Debug("fetched search page",
		zap.String("keyword", keyword),
		zap.Int("page", page),
		zap.Int("items", len(result.Items)),
		zap.Int("pages", result.Pages))

	if err := c.cache.Set(ctx, cacheKey, string(body), c.config.CacheTTL); err != nil {
		c.logger.Warn("failed to cache search page", zap.String("key", cacheKey), zap.Error(err))
	}

	return &result, nil
}

// FetchVacancies collects the items of every result page for keyword, in page
// order. Page 0 tells how many pages exist; at most config.HHPages are read.
// Any failed page fails the whole fetch; nothing is retried.
func (c *hhClient) FetchVacancies(ctx context.Context, keyword string) ([]models.RawVacancy, error) {
	ctx, span := tracer.Start(ctx, "FetchVacancies")
	defer span.End()
	span.SetAttributes(telemetry.String("hh.keyword", keyword))

	first, err := c.SearchPage(ctx, keyword, 0)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	pages := c.config.HHPages
	if first.Pages < pages {
		pages = first.Pages
	}
	span.SetAttributes(telemetry.Int("hh.pages", pages))

	results := make([][]models.RawVacancy, max(pages, 1))
	results[0] = first.Items

	if pages > 1 {
		if err := c.fetchRemaining(ctx, keyword, pages, results); err != nil {
			span.RecordError(err)
			return nil, err
		}
	}

	var records []models.RawVacancy
	for _, items := range results {
		records = append(records, items...)
	}

	c.logger.Info("fetched vacancies",
		zap.String("keyword", keyword),
		zap.Int("pages", pages),
		zap.Int("found", first.Found),
		zap.Int("records", len(records)))

	return records, nil
}

func (c *hhClient) buildURL(keyword string, page int) (string, error) {
	u, err := url.Parse(c.config.HHAPIBaseURL)
	if err != nil {
		return "", err
	}

	query := u.Query()
	query.Set("text", keyword)
	query.Set("page", strconv.Itoa(page))
	query.Set("per_page", strconv.Itoa(c.perPage))

	u.RawQuery = query.Encode()
	return u.String(), nil
}

func truncate(body []byte, n int) string {
	if len(body) <= n {
		return string(body)
	}
	return string(body[:n]) + "..."
}
