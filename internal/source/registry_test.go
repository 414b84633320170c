package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LookupBot/internal/domain"
)

type namedSource string

func (n namedSource) Name() string { return string(n) }

func (n namedSource) Fetch(context.Context, string) (*domain.SourceResult, error) {
	return &domain.SourceResult{Source: string(n)}, nil
}

func TestResolveAllKeepsOrder(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedSource("duckduckgo"))
	reg.Register(namedSource("wikipedia_ru"))
	reg.Register(namedSource("wikipedia_en"))

	got, err := reg.ResolveAll([]string{"wikipedia_ru", "wikipedia_en", "duckduckgo"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "wikipedia_ru", got[0].Name())
	assert.Equal(t, "wikipedia_en", got[1].Name())
	assert.Equal(t, "duckduckgo", got[2].Name())
	assert.ElementsMatch(t, []string{"duckduckgo", "wikipedia_ru", "wikipedia_en"}, reg.Names())
}

func TestResolveUnknown(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	reg.Register(namedSource("wikipedia_ru"))

	_, err := reg.ResolveAll([]string{"wikipedia_ru", "bing"})
	assert.ErrorContains(t, err, "bing")

	_, err = reg.ResolveAll(nil)
	assert.Error(t, err)
}
