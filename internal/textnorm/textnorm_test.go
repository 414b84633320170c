package textnorm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRemovesAsidesAndCitations(t *testing.T) {
	t.Parallel()

	raw := "Python (англ. Python [ˈpaɪθən]) — язык программирования[1]. Создан в 1991 году[23]."
	assert.Equal(t, "Python — язык программирования. Создан в 1991 году.", Clean(raw))
}

func TestCleanRemovesNestedAsides(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Go is a language.", Clean("Go (also (informally) Golang) is a language."))
}

func TestNormalizeKeepsSixSentences(t *testing.T) {
	t.Parallel()

	raw := "One. Two. Three. Four. Five. Six. Seven. Eight."
	assert.Equal(t, "One. Two. Three. Four. Five. Six.", Normalize(raw))
}

func TestNormalizeDoesNotDoubleTrailingPeriod(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Alpha. Beta.", Normalize("Alpha. Beta."))
	assert.Equal(t, "Alpha. Beta.", Normalize("Alpha. Beta"))
}

func TestNormalizeEmptyInput(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".", Normalize(""))
}

func TestBlank(t *testing.T) {
	t.Parallel()

	assert.True(t, Blank(Normalize("")))
	assert.True(t, Blank(Normalize("(только скобки) (и ещё)[2]")))
	assert.False(t, Blank(Normalize("Go (язык) прост.")))
}

func TestNormalizeTruncatesAtSentenceBoundary(t *testing.T) {
	t.Parallel()

	sentence := strings.Repeat("слово ", 40) + "конец"
	raw := strings.Join([]string{sentence, sentence, sentence, sentence, sentence}, ". ")

	out := Normalize(raw)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), MaxLength)
	assert.True(t, strings.HasSuffix(out, "конец."), "must end on a full sentence: %q", out[len(out)-20:])
}

func TestTruncateWithoutPeriodBacksUpToWord(t *testing.T) {
	t.Parallel()

	raw := strings.Repeat("abcdefghi ", 100)
	out := Truncate(raw, 50)

	assert.LessOrEqual(t, utf8.RuneCountInString(out), 50)
	assert.True(t, strings.HasSuffix(out, "abcdefghi."), out)
}

func TestNormalizeIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"Москва — столица России. Город основан в 1147 году.",
		"Single sentence without period",
		strings.Repeat("Lorem ipsum dolor sit amet. ", 60),
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		require.LessOrEqual(t, utf8.RuneCountInString(once), MaxLength)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestCondenseThreeSentences(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A. B. C.", Condense("A. B. C. D. E.", 3, MaxLength))
}

func TestKeepMatching(t *testing.T) {
	t.Parallel()

	text := "Microsoft was founded in 1975. Microsoft sells software. Its history is long"
	kept := KeepMatching(text, []string{"founded", "history"}, 5)
	assert.Equal(t, []string{"Microsoft was founded in 1975", "Its history is long"}, kept)

	assert.Len(t, KeepMatching(text, []string{"microsoft"}, 1), 1)
	assert.Empty(t, KeepMatching(text, []string{"century"}, 5))
}
