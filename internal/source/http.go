package source

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// getJSON performs one GET against an upstream and decodes the body into
// out. Every failure is already classified, so call sites only forward it.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any, src, stage string) *FetchError {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failf(src, stage, FailUnreachable, "build request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return failf(src, stage, FailUnreachable, "request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return failf(src, stage, FailRejected, "status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return failf(src, stage, FailUnreachable, "read body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return failf(src, stage, FailMalformed, "decode body: %w", err)
	}
	return nil
}
