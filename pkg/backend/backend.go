// Package backend talks to the HTTP services behind the calculator,
// product search and outlet lookup tools.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/tanpawarit/Chative-Dialogue-Orchestrator/agent/contract"
)

type Config struct {
	URL     string        `split_words:"true"`
	Token   string        `split_words:"true"`
	Timeout time.Duration `split_words:"true" default:"10s"`
}

// Enabled reports whether a backend URL is configured.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.URL) != ""
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var (
	_ contractx.Calculator      = (*Client)(nil)
	_ contractx.ProductSearcher = (*Client)(nil)
	_ contractx.OutletFinder    = (*Client)(nil)
)

// StatusError is returned for any non-2xx reply.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend responded %d: %s", e.Code, e.Body)
}

func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("backend url is required")
	}

	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   strings.TrimSpace(cfg.Token),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}

	return client, nil
}

func MustNew(cfg Config) *Client {
	client, err := NewClient(cfg)
	if err != nil {
		panic(err)
	}
	return client
}

// Calculate posts the expression. A rejected expression comes back in
// CalculatorResponse.Error with a 200 status.
func (c *Client) Calculate(ctx context.Context, req contractx.CalculatorRequest) (contractx.CalculatorResponse, error) {
	var out contractx.CalculatorResponse
	err := c.do(ctx, http.MethodPost, "/calculate", nil, req, &out)
	return out, err
}

func (c *Client) SearchProducts(ctx context.Context, req contractx.ProductSearchRequest) (contractx.ProductSearchResponse, error) {
	q := url.Values{"query": {req.Query}}
	if req.TopK > 0 {
		q.Set("top_k", fmt.Sprint(req.TopK))
	}

	var out contractx.ProductSearchResponse
	err := c.do(ctx, http.MethodGet, "/products", q, nil, &out)
	return out, err
}

func (c *Client) FindOutlets(ctx context.Context, req contractx.OutletQueryRequest) (contractx.OutletQueryResponse, error) {
	var out contractx.OutletQueryResponse
	err := c.do(ctx, http.MethodGet, "/outlets", url.Values{"query": {req.NaturalLanguageQuery}}, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
