package statusapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Fetch reads GET /status from a running client. addr is host:port or a full
// http URL.
func Fetch(ctx context.Context, httpClient *http.Client, addr string) (StatusResponse, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	base := addr
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(base, "/")+"/status", nil)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("build status request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return StatusResponse{}, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return StatusResponse{}, fmt.Errorf("fetch status: unexpected status %s", resp.Status)
	}

	var body StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return StatusResponse{}, fmt.Errorf("decode status: %w", err)
	}

	return body, nil
}
