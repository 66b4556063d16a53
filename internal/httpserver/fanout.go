package httpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// fanOutTimeout bounds the whole demo fan-out; the upstream has no SLA.
const fanOutTimeout = 10 * time.Second

var fanOutClient = &http.Client{Timeout: fanOutTimeout}

// fanOut fetches every URL concurrently and joins on all of them.
// All-or-nothing: the first failure cancels the rest and nothing partial
// is returned.
func fanOut(ctx context.Context, urls []string) ([]json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, fanOutTimeout)
	defer cancel()

	results := make([]json.RawMessage, len(urls))
	g, gctx := errgroup.WithContext(ctx)
	for i, url := range urls {
		g.Go(func() error {
			body, err := fetchJSON(gctx, url)
			if err != nil {
				return err
			}
			results[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func fetchJSON(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	res, err := fanOutClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("fetch %s: invalid json", url)
	}
	return body, nil
}

func repeatURL(url string, n int) []string {
	urls := make([]string, n)
	for i := range urls {
		urls[i] = url
	}
	return urls
}
