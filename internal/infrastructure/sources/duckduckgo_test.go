package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ddgServer(t *testing.T, body string, gotQuery *string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotQuery != nil {
			*gotQuery = r.URL.Query().Get("q")
		}
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/x-javascript")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDuckDuckGoAbstract(t *testing.T) {
	t.Parallel()

	var q string
	srv := ddgServer(t, `{"AbstractText":"Nike, Inc. (stylized as NIKE) is an American company[2]. It sells shoes.","RelatedTopics":[]}`, &q)

	res, err := NewDuckDuckGo(srv.URL, "ru-ru", srv.Client(), "").Fetch(context.Background(), "Nike")
	require.NoError(t, err)
	assert.Equal(t, "Nike", q)
	assert.Equal(t, "Nike", res.Title)
	assert.Equal(t, "Nike, Inc. is an American company. It sells shoes.", res.Body)
	assert.Empty(t, res.URL)
	assert.Equal(t, "duckduckgo", res.Source)
	assert.Equal(t, "DuckDuckGo", res.Label)
}

func TestDuckDuckGoRelatedTopicFallback(t *testing.T) {
	t.Parallel()

	body := `{"AbstractText":"","RelatedTopics":[
		{"Name":"Brands","Topics":[{"Text":"Adidas <b>AG</b> &amp; subsidiaries make sportswear"}]},
		{"Text":"Second topic"}]}`
	srv := ddgServer(t, body, nil)

	res, err := NewDuckDuckGo(srv.URL, "", srv.Client(), "").Fetch(context.Background(), "adidas")
	require.NoError(t, err)
	assert.Equal(t, "Adidas AG & subsidiaries make sportswear.", res.Body)
}

func TestDuckDuckGoNothing(t *testing.T) {
	t.Parallel()

	srv := ddgServer(t, `{"AbstractText":"","RelatedTopics":[]}`, nil)

	res, err := NewDuckDuckGo(srv.URL, "", srv.Client(), "").Fetch(context.Background(), "zzzz")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestDuckDuckGoAbstractOfAsidesOnly(t *testing.T) {
	t.Parallel()

	srv := ddgServer(t, `{"AbstractText":"(disambiguation)","RelatedTopics":[]}`, nil)

	res, err := NewDuckDuckGo(srv.URL, "", srv.Client(), "").Fetch(context.Background(), "zzzz")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoResult)
}

func TestDuckDuckGoMalformed(t *testing.T) {
	t.Parallel()

	srv := ddgServer(t, `not json`, nil)

	_, err := NewDuckDuckGo(srv.URL, "", srv.Client(), "").Fetch(context.Background(), "zzzz")
	var srcErr *Error
	assert.ErrorAs(t, err, &srcErr)
}

func TestStripMarkup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain text", stripMarkup("  plain \n text "))
	assert.Equal(t, "Go is fun & fast", stripMarkup("<a href=\"/Go\">Go</a> is <i>fun</i> &amp; fast"))
	assert.Empty(t, stripMarkup(""))
}
