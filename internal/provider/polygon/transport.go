package polygon

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// baseTransportConfig returns the shared HTTP transport configuration used
// for Polygon requests.
func baseTransportConfig() *http.Transport {
	return &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConns:          8,
		MaxIdleConnsPerHost:   4,
	}
}

// newHTTPClient creates an HTTP client configured for Polygon requests.
func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: baseTransportConfig(),
		Timeout:   time.Minute,
	}
}

// pacer enforces a minimum interval between consecutive requests. The free
// tier dislikes bursts, pagination in particular.
type pacer struct {
	mu   sync.Mutex
	min  time.Duration
	next time.Time
}

func newPacer(min time.Duration) *pacer { return &pacer{min: min} }

// wait blocks until a request slot is available or ctx is done.
func (p *pacer) wait(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	var d time.Duration
	if now.Before(p.next) {
		d = p.next.Sub(now)
	}
	p.next = now.Add(d + p.min)
	p.mu.Unlock()

	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
