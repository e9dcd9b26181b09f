package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/finfact/internal/model"
	"github.com/ppiankov/finfact/internal/util"
	"golang.org/x/net/html"
)

// pageReader fetches a result page and extracts its visible text, used when
// the search API returns hits without usable content snippets
type pageReader struct {
	httpClient *http.Client
	robots     *robotsChecker
	userAgent  string
	maxBytes   int64
}

func newPageReader(httpCfg model.HTTPConfig) *pageReader {
	timeout := httpCfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}

	maxBytes := httpCfg.MaxBodyBytes
	if maxBytes == 0 {
		maxBytes = 2_000_000
	}

	return &pageReader{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    newRobotsChecker(httpCfg.UserAgent, timeout),
		userAgent: httpCfg.UserAgent,
		maxBytes:  maxBytes,
	}
}

// readText fetches the page and returns its visible text, truncated to
// maxChars. Disallowed or unreachable pages return an error.
func (p *pageReader) readText(ctx context.Context, rawURL string, maxChars int) (string, error) {
	if !p.robots.isAllowed(ctx, rawURL) {
		return "", fmt.Errorf("robots.txt disallows %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	text := extractVisibleText(doc)
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return strings.TrimSpace(text), nil
}

// extractVisibleText walks the DOM collecting text nodes, skipping
// script/style content
func extractVisibleText(n *html.Node) string {
	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return buf.String()
}
