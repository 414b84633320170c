package sources

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const (
	defaultUserAgent = "LookupBot/1.0"
	maxBodyBytes     = 2 << 20
)

func defaultClient(client *http.Client) *http.Client {
	if client == nil {
		return &http.Client{Timeout: 5 * time.Second}
	}
	return client
}

func getJSON(ctx context.Context, client *http.Client, userAgent, source, op, endpoint string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Source: source, Op: op, Err: err}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &Error{Source: source, Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &Error{Source: source, Op: op, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(v); err != nil {
		return &Error{Source: source, Op: op + " decode", Err: err}
	}
	return nil
}
