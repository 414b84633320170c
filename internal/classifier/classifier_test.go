package classifier

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"LookupBot/internal/domain"
)

func TestClassifyDifference(t *testing.T) {
	t.Parallel()

	cases := []struct {
		text string
		a, b string
	}{
		{"разница между Python и Java", "python", "java"},
		{"Чем отличается iPhone от Android?", "iphone", "android"},
		{"отличие кофе от чая", "кофе", "чая"},
		{"Сравнение Python и Java", "python", "java"},
		{"Difference between TCP and UDP", "tcp", "udp"},
		{"vim vs emacs", "vim", "emacs"},
		{"чай или кофе", "чай", "кофе"},
	}

	for _, tc := range cases {
		intent := Classify(tc.text)
		require.Equal(t, domain.IntentDifference, intent.Kind, tc.text)
		a, b := intent.Pair()
		assert.Equal(t, tc.a, a, tc.text)
		assert.Equal(t, tc.b, b, tc.text)
		assert.Equal(t, tc.text, intent.Original)
	}
}

func TestClassifyHistory(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"История Microsoft":           "microsoft",
		"когда появился интернет":     "интернет",
		"когда появилась Википедия":   "википедия",
		"основание Москвы":            "москвы",
		"создание компании Apple":     "компании apple",
		"history of the Roman Empire": "the roman empire",
		"When was Google founded?":    "google",
	}

	for text, want := range cases {
		intent := Classify(text)
		require.Equal(t, domain.IntentHistory, intent.Kind, text)
		require.Len(t, intent.Terms, 1)
		assert.Equal(t, want, intent.Term(), text)
	}
}

func TestClassifyComparisonBeatsHistory(t *testing.T) {
	t.Parallel()

	intent := Classify("история Rome vs история Athens")
	assert.Equal(t, domain.IntentDifference, intent.Kind)
	a, b := intent.Pair()
	assert.Equal(t, "история rome", a)
	assert.Equal(t, "история athens", b)
}

func TestClassifySkipsEmptyCapture(t *testing.T) {
	t.Parallel()

	intent := Classify("? vs !")
	assert.Equal(t, domain.IntentGeneral, intent.Kind)
	assert.Equal(t, []string{"? vs !"}, intent.Terms)
}

func TestClassifyGeneral(t *testing.T) {
	t.Parallel()

	for _, text := range []string{"  Что такое искусственный интеллект  ", "Coca-Cola", ""} {
		intent := Classify(text)
		assert.Equal(t, domain.IntentGeneral, intent.Kind)
		require.Len(t, intent.Terms, 1)
		assert.Equal(t, strings.TrimSpace(text), intent.Term())
	}
}

