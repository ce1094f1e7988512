package vizier

import (
	"context"

	errs "skycache/pkg/errors"
	"skycache/pkg/httpclient"
	"skycache/pkg/logger"
	"skycache/pkg/table"
)

// Client queries the VizieR catalog service
type Client struct {
	http    *httpclient.Client
	baseURL string
	logger  logger.Logger
}

// NewClient creates a VizieR client. An empty baseURL uses DefaultBaseURL.
func NewClient(hc *httpclient.Client, baseURL string, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Client{http: hc, baseURL: baseURL, logger: log}
}

// Query fetches every column and every row of source. The result holds one
// table per resource in the response, possibly none.
func (c *Client) Query(ctx context.Context, source string) ([]*table.Table, error) {
	url := QueryURL(c.baseURL, source, Unlimited)

	body, err := c.http.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}

	tables, err := ParseTSV(body)
	if err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse VizieR response", map[string]interface{}{
			"source":       source,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, &errs.Error{Type: errs.ErrorTypeParsing, URL: url, Message: "invalid ASU-TSV response", Err: err}
	}

	c.logger.DebugWithFields("VizieR query completed", map[string]interface{}{
		"source": source,
		"tables": len(tables),
		"bytes":  len(body),
	})
	return tables, nil
}
