// Package portal is a minimal client for the university schedule portal.
// It is intentionally light—just the two pages the schedule engine needs:
// the group list and a group's timetable.
package portal

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/net/html"

	"nauassist/internal/models"
	"nauassist/internal/schedule"
)

const (
	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
	maxSuggestions = 15
)

// Client fetches and scrapes portal pages. Transient failures are retried
// with exponential backoff before the caller sees an error.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a ready-to-use portal client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// FetchTimetable resolves the group's schedule page and parses it into a
// timetable. A group missing from the list page maps to
// schedule.ErrGroupNotFound.
func (c *Client) FetchTimetable(ctx context.Context, group string) (*models.Timetable, error) {
	href, err := c.findGroupHref(ctx, group)
	if err != nil {
		return nil, err
	}

	doc, err := c.getHTML(ctx, c.baseURL+href)
	if err != nil {
		return nil, fmt.Errorf("fetch timetable page for %s: %w", group, err)
	}

	rows := extractTableRows(doc)
	return schedule.ParseRows(group, rows, time.Now())
}

// ListGroups returns every group name on the portal's list page.
func (c *Client) ListGroups(ctx context.Context) ([]string, error) {
	links, err := c.groupLinks(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(links))
	for name := range links {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SimilarGroups returns up to maxSuggestions group names containing the
// query, case-insensitively. Used for "did you mean" suggestions.
func (c *Client) SimilarGroups(ctx context.Context, query string) ([]string, error) {
	links, err := c.groupLinks(ctx)
	if err != nil {
		return nil, err
	}
	upper := strings.ToUpper(query)
	var matches []string
	for name := range links {
		if strings.Contains(strings.ToUpper(name), upper) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}
	return matches, nil
}

func (c *Client) findGroupHref(ctx context.Context, group string) (string, error) {
	links, err := c.groupLinks(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch group list: %w", err)
	}
	href, ok := links[group]
	if !ok {
		return "", fmt.Errorf("group %s: %w", group, schedule.ErrGroupNotFound)
	}
	return href, nil
}

// groupLinks scrapes the list page into name → schedule href.
func (c *Client) groupLinks(ctx context.Context) (map[string]string, error) {
	doc, err := c.getHTML(ctx, c.baseURL+"/schedule/group/list")
	if err != nil {
		return nil, err
	}

	links := make(map[string]string)
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			href := attr(n, "href")
			if strings.Contains(href, "/schedule/group?") {
				if name := strings.TrimSpace(text(n)); name != "" {
					links[name] = href
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return links, nil
}

// getHTML performs a GET with bounded exponential-backoff retries and parses
// the body.
func (c *Client) getHTML(ctx context.Context, rawURL string) (*html.Node, error) {
	if _, err := url.Parse(rawURL); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", "nau-assistant/1.0")

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= 300 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("portal: unexpected status %s", resp.Status)
			continue
		}

		doc, err := html.Parse(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		return doc, nil
	}
	return nil, lastErr
}

// extractTableRows flattens every <tr> of the timetable page into a
// pipe-separated row for the schedule parser.
func extractTableRows(doc *html.Node) []string {
	var rows []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "tr" {
			var cells []string
			header := false
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				if child.Type != html.ElementNode {
					continue
				}
				switch child.Data {
				case "th":
					header = true
				case "td":
					cells = append(cells, strings.TrimSpace(text(child)))
				}
			}
			if !header && len(cells) > 0 {
				rows = append(rows, strings.Join(cells, " | "))
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)
	return rows
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func text(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return b.String()
}
