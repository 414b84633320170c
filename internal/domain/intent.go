package domain

// IntentKind enumerates the supported query shapes.
type IntentKind string

const (
	IntentGeneral    IntentKind = "general"
	IntentDifference IntentKind = "difference"
	IntentHistory    IntentKind = "history"
)

// Intent is the classified form of a single user query.
type Intent struct {
	Kind     IntentKind
	Terms    []string
	Original string
}

// GeneralIntent looks the whole text up as one term.
func GeneralIntent(term, original string) Intent {
	return Intent{Kind: IntentGeneral, Terms: []string{term}, Original: original}
}

// DifferenceIntent compares two terms.
func DifferenceIntent(a, b, original string) Intent {
	return Intent{Kind: IntentDifference, Terms: []string{a, b}, Original: original}
}

// HistoryIntent asks for historical facts about a term.
func HistoryIntent(term, original string) Intent {
	return Intent{Kind: IntentHistory, Terms: []string{term}, Original: original}
}

// Term returns the first term, or an empty string.
func (i Intent) Term() string {
	if len(i.Terms) == 0 {
		return ""
	}
	return i.Terms[0]
}

// Pair returns both terms of a comparison.
func (i Intent) Pair() (string, string) {
	if len(i.Terms) < 2 {
		return i.Term(), ""
	}
	return i.Terms[0], i.Terms[1]
}
