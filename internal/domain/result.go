package domain

// SourceResult is what a single knowledge source returned for a term.
// A nil *SourceResult means the source had nothing.
type SourceResult struct {
	Title  string
	Body   string
	URL    string
	Source string
	Label  string
}

// Page is a raw encyclopedia page before condensation.
type Page struct {
	Title   string
	Extract string
	URL     string
	Source  string
}

// ComparisonSide holds the lookup for one side of a comparison.
type ComparisonSide struct {
	Term   string
	Result *SourceResult
}

// Comparison is the outcome of a Difference query.
type Comparison struct {
	Left  ComparisonSide
	Right ComparisonSide
}

// Complete reports whether both sides were found.
func (c Comparison) Complete() bool {
	return c.Left.Result != nil && c.Right.Result != nil
}
