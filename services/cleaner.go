package services

import (
	"regexp"
	"strconv"
	"strings"

	"gmaps-scraper/models"
	"gmaps-scraper/utils"
)

var (
	// nonDigitRegexp strips thousands separators from review counts
	nonDigitRegexp = regexp.MustCompile(`\D`)
)

const queryLocationSep = " in "

// Cleaner turns the raw strings of a detail pane into a Business.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger.With("cleaner")}
}

// Clean converts raw into a Business. Category and location come from the
// query ("<category> in <location>"), coordinates from the page URL. Values
// that are missing or unparseable are left absent.
func (c *Cleaner) Clean(raw models.RawBusiness, query string) models.Business {
	b := models.Business{
		Name:        nonEmpty(raw.Name),
		Address:     nonEmpty(raw.Address),
		PhoneNumber: nonEmpty(raw.Phone),
	}

	if domain := nonEmpty(raw.Website); domain != nil {
		b.Domain = domain
		b.Website = models.String("https://www." + *domain)
	}

	b.ReviewsCount = c.parseReviewsCount(raw.ReviewsCount)
	b.ReviewsAverage = c.parseReviewsAverage(raw.ReviewsRating)
	b.Category, b.Location = splitQuery(query)
	b.Latitude, b.Longitude = parseCoordinates(raw.URL)
	return b
}

// parseReviewsCount reads the first token, e.g. "1,234 reviews" → 1234.
func (c *Cleaner) parseReviewsCount(raw string) *int {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	digits := nonDigitRegexp.ReplaceAllString(fields[0], "")
	if digits == "" {
		c.logger.Debug("Unreadable review count %q", raw)
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return nil
	}
	return &n
}

// parseReviewsAverage reads a 0.0–5.0 rating from an aria-label such as
// "4.6 stars" or "4,6 Sterne".
func (c *Cleaner) parseReviewsAverage(raw string) *float64 {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil
	}
	val, err := strconv.ParseFloat(strings.ReplaceAll(fields[0], ",", "."), 64)
	if err != nil || val < 0 || val > 5 {
		c.logger.Debug("Unreadable rating %q", raw)
		return nil
	}
	return &val
}

// splitQuery derives category and location from "<category> in <location>".
// Without " in ", the whole query is the category and location is absent.
func splitQuery(query string) (category, location *string) {
	if !strings.Contains(query, queryLocationSep) {
		return nonEmpty(query), nil
	}
	parts := strings.Split(query, queryLocationSep)
	return nonEmpty(parts[0]), nonEmpty(parts[len(parts)-1])
}

// parseCoordinates reads "lat,lng" from the "/@lat,lng,zoom" URL segment.
func parseCoordinates(url string) (lat, lng *float64) {
	i := strings.LastIndex(url, "/@")
	if i < 0 {
		return nil, nil
	}
	segment, _, _ := strings.Cut(url[i+2:], "/")
	parts := strings.Split(segment, ",")
	if len(parts) < 2 {
		return nil, nil
	}
	la, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return nil, nil
	}
	lo, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return nil, nil
	}
	return &la, &lo
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
