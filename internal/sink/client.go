// Package sink pushes parsed records to an optional downstream HTTP
// consumer. The parser itself never does I/O; the pipeline calls the sink
// after a document's records are final.
package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/bmcnabb/qcodex/internal/qcode"
)

// Client communicates with a downstream records API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// RetryableError marks a sink failure worth retrying (throttling, transient
// upstream trouble).
type RetryableError struct {
	Status int
	Msg    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("sink: status %d: %s", e.Status, e.Msg)
}

// RecordsRequest is the body for PUT /documents/{docID}/records.
type RecordsRequest struct {
	Records []qcode.Record `json:"records"`
}

// DiagnosticsRequest is the body for PUT /documents/{docID}/diagnostics.
type DiagnosticsRequest struct {
	Diagnostics []qcode.Diagnostic `json:"diagnostics"`
}

// PutRecords replaces the record rows held downstream for one document.
func (c *Client) PutRecords(ctx context.Context, docID string, records []qcode.Record) error {
	return c.put(ctx, "/documents/"+url.PathEscape(docID)+"/records", RecordsRequest{Records: records})
}

// PutDiagnostics replaces the diagnostic rows held downstream for one document.
func (c *Client) PutDiagnostics(ctx context.Context, docID string, diags []qcode.Diagnostic) error {
	return c.put(ctx, "/documents/"+url.PathEscape(docID)+"/diagnostics", DiagnosticsRequest{Diagnostics: diags})
}

func (c *Client) put(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &RetryableError{Status: 0, Msg: err.Error()}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &RetryableError{Status: resp.StatusCode, Msg: string(respBody)}
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sink %s: status %d: %s", path, resp.StatusCode, string(respBody))
	}
}

// Close releases any resources.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
