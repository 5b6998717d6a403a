package shopify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/officercg/rockcrest-inventory-api/internal/config"
	apperrors "github.com/officercg/rockcrest-inventory-api/pkg/errors"
)

const (
	defaultRetryAfter = 2 * time.Second
	maxRetryAfter     = 5 * time.Second
)

type Client struct {
	baseURL     string
	accessToken string
	apiVersion  string
	httpClient  *http.Client
	logger      *zap.Logger

	pageSize             int
	maxRetries           int
	metafieldConcurrency int
	batchDelay           time.Duration
}

// NewClient creates a new Shopify admin REST client
func NewClient(cfg config.ShopifyConfig, fetch config.FetchConfig, logger *zap.Logger) *Client {
	// Normalize shop domain - remove trailing slashes, default to https
	base := strings.TrimSuffix(strings.TrimSpace(cfg.ShopDomain), "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}

	return &Client{
		baseURL:     base,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:               logger,
		pageSize:             fetch.PageSize,
		maxRetries:           fetch.MaxRetries,
		metafieldConcurrency: fetch.MetafieldConcurrency,
		batchDelay:           fetch.BatchDelay,
	}
}

func (c *Client) apiURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.apiVersion, path)
}

// ListProducts fetches every product page, following the Link rel="next"
// cursor until exhausted. Pages arrive and are returned in upstream order.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	url := c.apiURL(fmt.Sprintf("products.json?limit=%d", c.pageSize))

	var all []Product
	page := 0
	for url != "" {
		page++
		var body struct {
			Products []Product `json:"products"`
		}
		next, err := c.getJSON(ctx, url, &body)
		if err != nil {
			return nil, fmt.Errorf("products page %d: %w", page, err)
		}
		all = append(all, body.Products...)
		c.logger.Debug("Fetched product page",
			zap.Int("page", page),
			zap.Int("items", len(body.Products)),
			zap.Bool("has_next", next != ""),
		)
		url = next
	}
	return all, nil
}

// getJSON issues an authenticated GET and decodes the JSON body into out.
// It retries the same URL on 429 honoring Retry-After, up to maxRetries
// attempts, and returns the rel="next" URL from the Link header if present.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) (string, error) {
	attempts := 0
	for {
		attempts++

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return "", fmt.Errorf("failed to execute request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempts >= c.maxRetries {
				return "", &apperrors.RateLimitError{Attempts: attempts}
			}
			delay := retryAfterDelay(resp.Header.Get("Retry-After"))
			c.logger.Warn("Upstream throttled request, backing off",
				zap.Duration("delay", delay),
				zap.Int("attempt", attempts),
			)
			if err := sleepCtx(ctx, delay); err != nil {
				return "", err
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return "", &apperrors.UpstreamError{Status: resp.StatusCode, Body: string(body)}
		}

		if err := json.Unmarshal(body, out); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w, body: %s", err, string(body))
		}
		return parseLinkNext(resp.Header.Get("Link")), nil
	}
}

// parseLinkNext extracts the rel="next" URL from a Link response header.
// Header form: <https://...page_info=abc>; rel="previous", <https://...>; rel="next"
func parseLinkNext(header string) string {
	if header == "" {
		return ""
	}
	for _, part := range strings.Split(header, ",") {
		sections := strings.Split(part, ";")
		if len(sections) < 2 {
			continue
		}
		urlPart := strings.TrimSpace(sections[0])
		if !strings.HasPrefix(urlPart, "<") || !strings.HasSuffix(urlPart, ">") {
			continue
		}
		for _, attr := range sections[1:] {
			if strings.EqualFold(strings.TrimSpace(attr), `rel="next"`) {
				return strings.Trim(urlPart, "<>")
			}
		}
	}
	return ""
}

// retryAfterDelay reads the Retry-After hint in seconds; default 2, cap 5.
func retryAfterDelay(header string) time.Duration {
	secs := defaultRetryAfter.Seconds()
	if header != "" {
		if v, err := strconv.ParseFloat(strings.TrimSpace(header), 64); err == nil && v > 0 {
			secs = v
		}
	}
	d := time.Duration(secs * float64(time.Second))
	if d > maxRetryAfter {
		d = maxRetryAfter
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
