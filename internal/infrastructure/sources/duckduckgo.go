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

const duckDuckGoName = "duckduckgo"

// DuckDuckGo queries the Instant Answer API. It has no canonical page per answer,
// so results carry only the source label.
type DuckDuckGo struct {
	endpoint  string
	region    string
	client    *http.Client
	userAgent string
}

var _ ports.Source = (*DuckDuckGo)(nil)

// NewDuckDuckGo wires an HTTP client; a nil client gets a 5 second timeout.
func NewDuckDuckGo(endpoint, region string, client *http.Client, userAgent string) *DuckDuckGo {
	if endpoint == "" {
		endpoint = "https://api.duckduckgo.com/"
	}
	return &DuckDuckGo{
		endpoint:  endpoint,
		region:    region,
		client:    defaultClient(client),
		userAgent: userAgent,
	}
}

// Name identifies the source inside the registry.
func (d *DuckDuckGo) Name() string {
	return duckDuckGoName
}

type instantAnswer struct {
	AbstractText  string  `json:"AbstractText"`
	RelatedTopics []topic `json:"RelatedTopics"`
}

// topic is either a plain entry or a named group of entries.
type topic struct {
	Text   string  `json:"Text"`
	Name   string  `json:"Name"`
	Topics []topic `json:"Topics"`
}

// Fetch prefers the abstract and falls back to the first related topic.
func (d *DuckDuckGo) Fetch(ctx context.Context, term string) (*domain.SourceResult, error) {
	endpoint, err := d.buildURL(term)
	if err != nil {
		return nil, &Error{Source: d.Name(), Op: "answer", Err: err}
	}

	var resp instantAnswer
	if err := getJSON(ctx, d.client, d.userAgent, d.Name(), "answer", endpoint, &resp); err != nil {
		return nil, err
	}

	text := stripMarkup(resp.AbstractText)
	if text == "" {
		text = stripMarkup(firstTopicText(resp.RelatedTopics))
	}
	body := textnorm.Normalize(text)
	if textnorm.Blank(body) {
		return nil, ErrNoResult
	}

	return &domain.SourceResult{
		Title:  strings.TrimSpace(term),
		Body:   body,
		Source: d.Name(),
		Label:  "DuckDuckGo",
	}, nil
}

func (d *DuckDuckGo) buildURL(term string) (string, error) {
	parsed, err := url.Parse(d.endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %s: %w", d.endpoint, err)
	}

	q := parsed.Query()
	q.Set("q", term)
	q.Set("format", "json")
	q.Set("no_html", "1")
	q.Set("skip_disambig", "1")
	if d.region != "" {
		q.Set("kl", d.region)
	}
	parsed.RawQuery = q.Encode()
	return parsed.String(), nil
}

func firstTopicText(topics []topic) string {
	for _, t := range topics {
		if strings.TrimSpace(t.Text) != "" {
			return t.Text
		}
		if nested := firstTopicText(t.Topics); nested != "" {
			return nested
		}
	}
	return ""
}
