package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// robotsChecker gates page fetches on robots.txt, caching parsed rules
// per host for the process lifetime
type robotsChecker struct {
	mu        sync.RWMutex
	rules     map[string]*robotstxt.RobotsData
	client    *http.Client
	userAgent string
}

func newRobotsChecker(userAgent string, timeout time.Duration) *robotsChecker {
	return &robotsChecker{
		rules:     make(map[string]*robotstxt.RobotsData),
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
	}
}

// isAllowed reports whether the URL may be fetched. An unreachable or
// missing robots.txt allows by default.
func (r *robotsChecker) isAllowed(ctx context.Context, rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	r.mu.RLock()
	data, ok := r.rules[parsed.Host]
	r.mu.RUnlock()

	if !ok {
		data, err = r.fetchRules(ctx, parsed.Scheme, parsed.Host)
		if err != nil {
			return true
		}
		r.mu.Lock()
		r.rules[parsed.Host] = data
		r.mu.Unlock()
	}

	return data.TestAgent(parsed.Path, agentToken(r.userAgent))
}

// fetchRules downloads and parses robots.txt for one host. A 404 parses
// to allow-all, which still gets cached.
func (r *robotsChecker) fetchRules(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	robotsURL := fmt.Sprintf("%s://%s/robots.txt", scheme, host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}
	return data, nil
}

// agentToken extracts the product token for robots.txt group matching
func agentToken(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
