package gmaps

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"gmaps-scraper/models"
)

// Detail pane selectors.
const (
	addressSelector       = `button[data-item-id="address"] .fontBodyMedium`
	websiteSelector       = `a[data-item-id="authority"] .fontBodyMedium`
	phoneSelector         = `button[data-item-id^="phone:tel:"] .fontBodyMedium`
	reviewsCountSelector  = `div[jsaction="pane.reviewChart.moreReviews"] span`
	reviewsRatingSelector = `div[jsaction="pane.reviewChart.moreReviews"] div[role="img"]`
)

// ParseDetail reads the raw strings of a place's detail pane from html.
// pageURL is kept for coordinate parsing. Missing elements yield empty
// strings; only unparseable HTML is an error.
func ParseDetail(html, pageURL string) (models.RawBusiness, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.RawBusiness{}, fmt.Errorf("parse detail html: %w", err)
	}

	raw := models.RawBusiness{
		Name:         firstText(doc, detailSelector),
		Address:      firstText(doc, addressSelector),
		Website:      firstText(doc, websiteSelector),
		Phone:        firstText(doc, phoneSelector),
		ReviewsCount: firstText(doc, reviewsCountSelector),
		URL:          pageURL,
	}
	if label, ok := doc.Find(reviewsRatingSelector).First().Attr("aria-label"); ok {
		raw.ReviewsRating = strings.TrimSpace(label)
	}
	return raw, nil
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}
