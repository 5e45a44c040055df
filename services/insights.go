package services

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gmaps-scraper/models"
	"gmaps-scraper/utils"
)

const topRatedLimit = 5

type InsightService struct {
	logger *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{logger: logger}
}

func (s *InsightService) Generate(query string, records []models.Business) *models.InsightReport {
	report := &models.InsightReport{
		Query:      query,
		ByCategory: make(map[string]int),
	}

	if len(records) == 0 {
		return report
	}

	report.TotalBusinesses = len(records)

	var rated []models.Business
	var ratingSum float64

	for _, b := range records {
		if b.Website != nil {
			report.WithWebsite++
		}
		if b.PhoneNumber != nil {
			report.WithPhone++
		}
		if b.ReviewsAverage != nil {
			rated = append(rated, b)
			ratingSum += *b.ReviewsAverage
		}
		if b.Category != nil {
			report.ByCategory[*b.Category]++
		}
	}

	report.RatedCount = len(rated)
	if len(rated) > 0 {
		report.AverageRating = round2(ratingSum / float64(len(rated)))
	}

	// Best rating first, more reviews breaks ties
	sort.SliceStable(rated, func(i, j int) bool {
		ri, rj := *rated[i].ReviewsAverage, *rated[j].ReviewsAverage
		if ri != rj {
			return ri > rj
		}
		return models.Value(rated[i].ReviewsCount) > models.Value(rated[j].ReviewsCount)
	})
	if len(rated) > topRatedLimit {
		rated = rated[:topRatedLimit]
	}
	report.TopRated = rated

	return report
}

func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 %s\033[0m\n", truncate(strings.ToUpper(r.Query), 48))
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  New businesses  : \033[1m%d\033[0m\n", r.TotalBusinesses)
	fmt.Fprintf(w, "  With website    : \033[1m%d\033[0m\n", r.WithWebsite)
	fmt.Fprintf(w, "  With phone      : \033[1m%d\033[0m\n", r.WithPhone)
	if r.RatedCount > 0 {
		fmt.Fprintf(w, "  Average rating  : \033[1;32m%.2f ★\033[0m (%d rated)\n", r.AverageRating, r.RatedCount)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Top %d Highest Rated\033[0m\n", topRatedLimit)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated businesses found\n")
	} else {
		for i, b := range r.TopRated {
			fmt.Fprintf(w, "  \033[1m%d.\033[0m %-40s \033[1;32m%.1f ★\033[0m (%d)\n",
				i+1, truncate(b.DisplayName(), 38), *b.ReviewsAverage, models.Value(b.ReviewsCount))
		}
	}
	fmt.Fprintln(w)

	if len(r.ByCategory) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Businesses by Category\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)

		type catCount struct {
			cat   string
			count int
		}
		var cats []catCount
		for cat, cnt := range r.ByCategory {
			cats = append(cats, catCount{cat, cnt})
		}
		sort.Slice(cats, func(i, j int) bool {
			if cats[i].count != cats[j].count {
				return cats[i].count > cats[j].count
			}
			return cats[i].cat < cats[j].cat
		})
		for _, cc := range cats {
			fmt.Fprintf(w, "  %-30s %s (%d)\n", truncate(cc.cat, 28), strings.Repeat("█", cc.count), cc.count)
		}
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

// truncate shortens s to max runes, ending in "...".
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
