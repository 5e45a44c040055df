package models

// RawBusiness holds the strings read from a place's detail pane before any
// parsing. Empty strings mean the element was not present.
type RawBusiness struct {
	Name          string
	Address       string
	Website       string
	Phone         string
	ReviewsCount  string
	ReviewsRating string
	URL           string
}

// Business is one collected place. Every field is optional: nil means the
// value was absent in the UI, which is not the same as an empty string.
type Business struct {
	Name           *string
	Address        *string
	Domain         *string
	Website        *string
	PhoneNumber    *string
	Category       *string
	Location       *string
	ReviewsCount   *int
	ReviewsAverage *float64
	Latitude       *float64
	Longitude      *float64
}

// DisplayName returns the name or a placeholder for logging.
func (b Business) DisplayName() string {
	if b.Name == nil || *b.Name == "" {
		return "<unnamed>"
	}
	return *b.Name
}

// InsightReport summarises the records accepted for one query.
type InsightReport struct {
	Query           string
	TotalBusinesses int
	WithWebsite     int
	WithPhone       int
	RatedCount      int
	AverageRating   float64
	TopRated        []Business
	ByCategory      map[string]int
}

func String(s string) *string { return &s }

func Int(n int) *int { return &n }

func Float(f float64) *float64 { return &f }

// Value returns *p or the zero value when p is nil.
func Value[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
