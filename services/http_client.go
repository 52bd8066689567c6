package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"nfl-projections-go/models"
)

// DefaultHTTPTimeout bounds every upstream request.
const DefaultHTTPTimeout = 60 * time.Second

// ErrMissingAPIKey is returned when an adapter has no credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// HTTPStatusError reports a non-2xx upstream response.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("GET %s: status %d", e.URL, e.StatusCode)
}

func newHTTPClient(client *http.Client) *http.Client {
	if client != nil {
		return client
	}
	return &http.Client{Timeout: DefaultHTTPTimeout}
}

// get performs one GET and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := body
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, &HTTPStatusError{StatusCode: resp.StatusCode, URL: url, Body: string(bytes.TrimSpace(snippet))}
	}
	return body, nil
}

// decodeRecords turns a JSON array of objects into Records. A single object
// becomes one row; null becomes an empty table.
func decodeRecords(body []byte) (models.Records, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return models.NewRecords(nil), nil
	}

	if trimmed[0] == '{' {
		var row map[string]any
		if err := json.Unmarshal(trimmed, &row); err != nil {
			return models.Records{}, fmt.Errorf("decoding object: %w", err)
		}
		return models.NewRecords([]map[string]any{row}), nil
	}

	var rows []map[string]any
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return models.Records{}, fmt.Errorf("decoding array: %w", err)
	}
	return models.NewRecords(rows), nil
}
