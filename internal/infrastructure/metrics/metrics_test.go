package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LookupBot/internal/domain"
)

func TestCollectorCounts(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.SourceLookup("wikipedia_ru", "miss")
	c.SourceLookup("duckduckgo", "hit")
	c.SourceLookup("duckduckgo", "hit")
	c.Query(domain.IntentDifference)
	c.FastPathTimeout()
	c.AnswerDuration(domain.IntentGeneral, 1500*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.sourceLookups.WithLabelValues("duckduckgo", "hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.sourceLookups.WithLabelValues("wikipedia_ru", "miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues("difference")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.fastPathTimeouts))
	assert.Equal(t, 1, testutil.CollectAndCount(c.answerDuration))
}

func TestRouterServesMetrics(t *testing.T) {
	t.Parallel()

	c := NewCollector()
	c.Query(domain.IntentHistory)
	srv := httptest.NewServer(Router(c, nil))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `lookupbot_queries_total{kind="history"} 1`)
}

func TestRouterHealth(t *testing.T) {
	t.Parallel()

	healthy := Router(NewCollector(), map[string]HealthCheck{
		"database": func(context.Context) error { return nil },
	})
	rec := httptest.NewRecorder()
	healthy.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	broken := Router(NewCollector(), map[string]HealthCheck{
		"database": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = httptest.NewRecorder()
	broken.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "database: connection refused")
}
