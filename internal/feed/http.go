package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSource fetches a JSON hop list, optionally on an interval.
type HTTPSource struct {
	URL      string
	Interval time.Duration
	client   *http.Client
}

func NewHTTPSource(url string, opts Options) *HTTPSource {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSource{
		URL:      url,
		Interval: opts.Interval,
		client:   &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) String() string { return s.URL }

func (s *HTTPSource) Stream(ctx context.Context, out chan<- Update) error {
	for {
		hops, err := s.Fetch(ctx)
		if err != nil {
			return err
		}
		if err := send(ctx, out, Update{Hops: hops, Replace: true, At: time.Now()}); err != nil {
			return err
		}
		if s.Interval <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Interval):
		}
	}
}

// Fetch performs one request.
func (s *HTTPSource) Fetch(ctx context.Context) ([]Hop, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataFeed, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataFeed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: %s returned %s", ErrDataFeed, s.URL, resp.Status)
	}
	return Decode(io.LimitReader(resp.Body, 16<<20))
}
