package sortby

// SortBy is the listing result ordering requested from the source.
type SortBy string

// Supported orderings.
const (
	BestMatch   SortBy = "best_match"
	Rating      SortBy = "rating"
	ReviewCount SortBy = "review_count"
	Distance    SortBy = "distance"
)

// IsValid checks if the ordering is one of the supported values.
func (s SortBy) IsValid() bool {
	return s == BestMatch || s == Rating || s == ReviewCount || s == Distance
}
