package synthetic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/okian/profilemeta/internal/domain/evaluation"
	"github.com/okian/profilemeta/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request bound to ctx.
func (c *HTTPClient) Get(ctx context.Context, u string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// fetchRemoteReport asks a running service to evaluate [t0, t1].
func fetchRemoteReport(ctx context.Context, cfg Config, t0, t1 time.Time) (evaluation.Report, error) {
	client := newHTTPClient(cfg.Timeout)
	if err := checkServiceHealth(ctx, client, cfg.BaseURL); err != nil {
		return evaluation.Report{}, err
	}

	q := url.Values{}
	q.Set("site", cfg.Site)
	q.Set("year", strconv.Itoa(cfg.Year))
	q.Set("t0", t0.UTC().Format(time.RFC3339))
	q.Set("t1", t1.UTC().Format(time.RFC3339))

	resp, err := client.Get(ctx, cfg.BaseURL+"/evaluate?"+q.Encode())
	if err != nil {
		return evaluation.Report{}, fmt.Errorf("evaluate request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return evaluation.Report{}, fmt.Errorf("read evaluate response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return evaluation.Report{}, fmt.Errorf("evaluate returned %d: %s", resp.StatusCode, body)
	}
	var r evaluation.Report
	if err := json.Unmarshal(body, &r); err != nil {
		return evaluation.Report{}, fmt.Errorf("decode evaluate response: %w", err)
	}
	logger.Get().Info(ctx, "remote evaluation received",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("total", r.Total),
	)
	return r, nil
}
