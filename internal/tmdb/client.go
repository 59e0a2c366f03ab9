package tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"watch-list/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNotFound is returned when TMDb answers 404.
var ErrNotFound = errors.New("tmdb: resource not found")

// StatusError carries any other non-200 answer from TMDb.
type StatusError struct {
	Code int
	Path string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb: %s returned status %d", e.Path, e.Code)
}

const maxImageBytes = 20 << 20

type Client struct {
	httpClient   *http.Client
	baseURL      string
	imageBaseURL string
	apiKey       string
	language     string
	limiter      *rate.Limiter
	log          *zap.Logger
}

func NewClient(cfg utils.TMDbConfig, log *zap.Logger) *Client {
	limit := rate.Inf
	burst := 1
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
		burst = max(1, int(cfg.RequestsPerSecond))
	}

	return &Client{
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		imageBaseURL: strings.TrimRight(cfg.ImageBaseURL, "/"),
		apiKey:       cfg.APIKey,
		language:     cfg.Language,
		limiter:      rate.NewLimiter(limit, burst),
		log:          log.With(zap.String("client", "tmdb")),
	}
}

// Configured reports whether an API key or bearer token is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// isBearerToken recognises v4 read access tokens, which are JWTs.
func isBearerToken(key string) bool {
	return strings.HasPrefix(key, "eyJ") && strings.Count(key, ".") == 2
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	if !isBearerToken(c.apiKey) {
		params.Set("api_key", c.apiKey)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build tmdb request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if isBearerToken(c.apiKey) {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("TMDb request failed", zap.Error(err), zap.String("path", path))
		return fmt.Errorf("tmdb request %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		c.log.Warn("TMDb returned non-200 status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return &StatusError{Code: resp.StatusCode, Path: path}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tmdb response %s: %w", path, err)
	}

	return nil
}

func (c *Client) search(ctx context.Context, kind, query string, page int) (*SearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(max(page, 1)))
	params.Set("include_adult", "false")

	var result SearchPage
	if err := c.get(ctx, "/search/"+kind, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (*SearchPage, error) {
	return c.search(ctx, "movie", query, page)
}

func (c *Client) SearchTV(ctx context.Context, query string, page int) (*SearchPage, error) {
	return c.search(ctx, "tv", query, page)
}

// GetMovie fetches movie details with credits appended.
func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var movie Movie
	if err := c.get(ctx, fmt.Sprintf("/movie/%d", id), params, &movie); err != nil {
		return nil, err
	}
	return &movie, nil
}

// GetTV fetches tv show details with credits appended.
func (c *Client) GetTV(ctx context.Context, id int64) (*TVShow, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var show TVShow
	if err := c.get(ctx, fmt.Sprintf("/tv/%d", id), params, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

func (c *Client) GetPerson(ctx context.Context, id int64) (*Person, error) {
	var person Person
	if err := c.get(ctx, fmt.Sprintf("/person/%d", id), nil, &person); err != nil {
		return nil, err
	}
	return &person, nil
}

// ImageURL turns a TMDb file path into an absolute URL, nil when empty.
func (c *Client) ImageURL(path string) *string {
	if path == "" {
		return nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return &path
	}
	full := c.imageBaseURL + "/" + strings.TrimLeft(path, "/")
	return &full
}

// DownloadImage fetches an image by TMDb file path or absolute URL.
func (c *Client) DownloadImage(ctx context.Context, path string) ([]byte, error) {
	target := c.ImageURL(path)
	if target == nil {
		return nil, errors.New("tmdb: empty image path")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *target, nil)
	if err != nil {
		return nil, fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download image %s: %w", *target, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("image %s: %w", *target, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, &StatusError{Code: resp.StatusCode, Path: *target}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", *target, err)
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image %s exceeds %d bytes", *target, maxImageBytes)
	}

	return data, nil
}
