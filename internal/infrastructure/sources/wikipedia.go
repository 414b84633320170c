package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"LookupBot/internal/domain"
	"LookupBot/internal/ports"
	"LookupBot/internal/textnorm"
)

// Edition describes one language edition of Wikipedia.
type Edition struct {
	Name    string
	Label   string
	APIURL  string
	RestURL string
}

// Wikipedia looks terms up in one edition: a full-text search, then the page summary of the top hit.
type Wikipedia struct {
	edition   Edition
	client    *http.Client
	userAgent string
}

var (
	_ ports.Source       = (*Wikipedia)(nil)
	_ ports.Encyclopedia = (*Wikipedia)(nil)
)

// NewWikipedia wires an HTTP client; a nil client gets a 5 second timeout.
func NewWikipedia(edition Edition, client *http.Client, userAgent string) *Wikipedia {
	return &Wikipedia{
		edition:   edition,
		client:    defaultClient(client),
		userAgent: userAgent,
	}
}

// Name identifies the source inside the registry.
func (w *Wikipedia) Name() string {
	return w.edition.Name
}

// Fetch returns the normalized summary of the best matching page.
func (w *Wikipedia) Fetch(ctx context.Context, term string) (*domain.SourceResult, error) {
	page, err := w.Page(ctx, term)
	if err != nil {
		return nil, err
	}

	body := textnorm.Normalize(page.Extract)
	if textnorm.Blank(body) {
		return nil, ErrNoResult
	}

	return &domain.SourceResult{
		Title:  page.Title,
		Body:   body,
		URL:    page.URL,
		Source: w.Name(),
		Label:  w.edition.Label,
	}, nil
}

// Page returns the raw extract of the best matching page.
func (w *Wikipedia) Page(ctx context.Context, query string) (*domain.Page, error) {
	title, err := w.search(ctx, query)
	if err != nil {
		return nil, err
	}

	summary, err := w.summary(ctx, title)
	if err != nil {
		return nil, err
	}

	extract := strings.TrimSpace(summary.Extract)
	if extract == "" {
		return nil, ErrNoResult
	}

	return &domain.Page{
		Title:   title,
		Extract: extract,
		URL:     summary.ContentURLs.Desktop.Page,
		Source:  w.Name(),
	}, nil
}

type searchResponse struct {
	Query struct {
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
	} `json:"query"`
}

type summaryResponse struct {
	Title       string `json:"title"`
	Extract     string `json:"extract"`
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

func (w *Wikipedia) search(ctx context.Context, query string) (string, error) {
	endpoint, err := buildSearchURL(w.edition.APIURL, query)
	if err != nil {
		return "", &Error{Source: w.Name(), Op: "search", Err: err}
	}

	var resp searchResponse
	if err := getJSON(ctx, w.client, w.userAgent, w.Name(), "search", endpoint, &resp); err != nil {
		return "", err
	}

	if len(resp.Query.Search) == 0 {
		return "", ErrNoResult
	}
	title := strings.TrimSpace(resp.Query.Search[0].Title)
	if title == "" {
		return "", ErrNoResult
	}
	return title, nil
}

func (w *Wikipedia) summary(ctx context.Context, title string) (summaryResponse, error) {
	endpoint := strings.TrimSuffix(w.edition.RestURL, "/") + "/page/summary/" + url.PathEscape(title)

	var resp summaryResponse
	if err := getJSON(ctx, w.client, w.userAgent, w.Name(), "summary", endpoint, &resp); err != nil {
		return summaryResponse{}, err
	}
	return resp, nil
}

func buildSearchURL(base, query string) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid api url %s: %w", base, err)
	}

	q := parsed.Query()
	q.Set("action", "query")
	q.Set("list", "search")
	q.Set("srsearch", query)
	q.Set("format", "json")
	q.Set("utf8", "1")
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}
