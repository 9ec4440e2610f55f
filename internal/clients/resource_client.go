package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bpc-market/storefront-service/internal/logging"
)

// maxResourceSize caps a fetched resource at 16 MiB.
const maxResourceSize = 16 << 20

// ResourceClient reads the static catalog and rate resources. A source is
// either an http(s) URL or a local file path.
type ResourceClient struct {
	httpClient *http.Client
	logger     *logging.Logger
}

// NewResourceClient creates a resource client with the given request timeout.
func NewResourceClient(timeout time.Duration, logger *logging.Logger) *ResourceClient {
	return &ResourceClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("resource-client"),
	}
}

// Fetch returns the resource body.
func (c *ResourceClient) Fetch(ctx context.Context, source string) ([]byte, error) {
	if source == "" {
		return nil, fmt.Errorf("resource source is empty")
	}
	if isURL(source) {
		return c.fetchHTTP(ctx, source)
	}
	return c.fetchFile(ctx, source)
}

func (c *ResourceClient) fetchHTTP(ctx context.Context, url string) ([]byte, error) {
	c.logger.Debug("Fetching resource", logging.Fields{"url": url})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to fetch resource", logging.Fields{
			"url":   url,
			"error": err.Error(),
		})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("resource %s returned status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResourceSize))
	if err != nil {
		return nil, fmt.Errorf("read resource %s: %w", url, err)
	}

	c.logger.Info("Resource fetched", logging.Fields{
		"url":   url,
		"bytes": len(body),
	})
	return body, nil
}

func (c *ResourceClient) fetchFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxResourceSize))
	if err != nil {
		return nil, fmt.Errorf("read resource %s: %w", path, err)
	}

	c.logger.Info("Resource read", logging.Fields{
		"path":  path,
		"bytes": len(body),
	})
	return body, nil
}

func isURL(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
