/*
Copyright 2025 The Antfly Contributors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package layout is a client for document layout-analysis services that
// follow the Document Intelligence REST shape. A submitted document is
// answered with 202 and an Operation-Location header; the client then
// polls that location until the analysis succeeds or fails.
package layout

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic/decoder"
)

const (
	defaultAPIVersion   = "2024-02-29-preview"
	defaultPollInterval = 2 * time.Second

	userAgent = "figaf/0.1.0"
	modelID   = "prebuilt-layout"
)

// Client submits documents to a layout-analysis service and blocks until
// the asynchronous analysis completes.
type Client struct {
	endpoint     string
	key          string
	apiVersion   string
	pollInterval time.Duration
	httpClient   *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithAPIVersion overrides the service api-version query parameter.
func WithAPIVersion(version string) Option {
	return func(c *Client) { c.apiVersion = version }
}

// WithPollInterval overrides the delay between operation polls. The
// service's Retry-After header still takes precedence when present.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// New creates a layout Client for the given service endpoint and key.
func New(endpoint, key string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("empty layout endpoint")
	}
	if key == "" {
		return nil, errors.New("empty layout key")
	}
	c := &Client{
		endpoint:     endpoint,
		key:          key,
		apiVersion:   defaultAPIVersion,
		pollInterval: defaultPollInterval,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AnalyzeDocument runs prebuilt-layout analysis over the document bytes,
// requesting markdown-formatted content, and returns the completed result.
// It blocks while polling; any submission, transport, or operation failure
// is returned on first occurrence.
func (c *Client) AnalyzeDocument(ctx context.Context, document []byte) (*AnalyzeResult, error) {
	operationURL, err := c.submit(ctx, document)
	if err != nil {
		return nil, fmt.Errorf("submitting document: %w", err)
	}
	return c.poll(ctx, operationURL)
}

// submit posts the document and returns the Operation-Location to poll.
func (c *Client) submit(ctx context.Context, document []byte) (string, error) {
	analyzeURL, err := url.JoinPath(c.endpoint, "documentintelligence", "documentModels", modelID+":analyze")
	if err != nil {
		return "", fmt.Errorf("building analyze URL: %w", err)
	}
	query := url.Values{}
	query.Set("api-version", c.apiVersion)
	query.Set("outputContentFormat", "markdown")
	analyzeURL += "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, analyzeURL, bytes.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("x-ms-useragent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		return "", readErrorResponse(resp)
	}

	operationURL := resp.Header.Get("Operation-Location")
	if operationURL == "" {
		return "", errors.New("analyze accepted without Operation-Location header")
	}
	return operationURL, nil
}

// poll queries the operation until it reaches a terminal status.
func (c *Client) poll(ctx context.Context, operationURL string) (*AnalyzeResult, error) {
	for {
		op, retryAfter, err := c.operationStatus(ctx, operationURL)
		if err != nil {
			return nil, fmt.Errorf("polling operation: %w", err)
		}

		switch op.Status {
		case statusSucceeded:
			if op.AnalyzeResult == nil {
				return nil, errors.New("operation succeeded without analyzeResult")
			}
			return op.AnalyzeResult, nil
		case statusFailed:
			if op.Error != nil {
				return nil, fmt.Errorf("analyze operation failed: %s: %s", op.Error.Code, op.Error.Message)
			}
			return nil, errors.New("analyze operation failed")
		case statusNotStarted, statusRunning:
		default:
			return nil, fmt.Errorf("unexpected operation status %q", op.Status)
		}

		wait := c.pollInterval
		if retryAfter > 0 {
			wait = retryAfter
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
}

// operationStatus fetches the current operation state and the service's
// suggested Retry-After delay (0 when absent).
func (c *Client) operationStatus(ctx context.Context, operationURL string) (*analyzeOperation, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, operationURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Ocp-Apim-Subscription-Key", c.key)
	req.Header.Set("x-ms-useragent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, readErrorResponse(resp)
	}

	var op analyzeOperation
	if err := decoder.NewStreamDecoder(resp.Body).Decode(&op); err != nil {
		return nil, 0, fmt.Errorf("parsing operation response: %w", err)
	}

	var retryAfter time.Duration
	if v := resp.Header.Get("Retry-After"); v != "" {
		if seconds, err := strconv.Atoi(v); err == nil && seconds > 0 {
			retryAfter = time.Duration(seconds) * time.Second
		}
	}
	return &op, retryAfter, nil
}

func readErrorResponse(resp *http.Response) error {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading http response: %w", err)
	}
	return fmt.Errorf("received status %d: %s", resp.StatusCode, string(respBody))
}
