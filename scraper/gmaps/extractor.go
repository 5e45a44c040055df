package gmaps

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"

	"gmaps-scraper/models"
	"gmaps-scraper/services"
	"gmaps-scraper/utils"
)

// Extractor reads the detail pane currently open in a Browser.
type Extractor struct {
	browser *Browser
	cleaner *services.Cleaner
	logger  *utils.Logger
}

var _ services.Extractor = (*Extractor)(nil)

func NewExtractor(browser *Browser, logger *utils.Logger) *Extractor {
	return &Extractor{
		browser: browser,
		cleaner: services.NewCleaner(logger),
		logger:  logger.With("gmaps"),
	}
}

// Extract snapshots the page and parses the detail pane. Only a failure to
// read the page is an error; missing elements leave fields absent.
func (e *Extractor) Extract(ctx context.Context, query string) (models.Business, error) {
	var html, location string
	err := e.browser.Run(ctx,
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		chromedp.Location(&location),
	)
	if err != nil {
		return models.Business{}, fmt.Errorf("read detail pane: %w", err)
	}

	raw, err := ParseDetail(html, location)
	if err != nil {
		return models.Business{}, err
	}
	if raw.Name == "" {
		e.logger.Debug("No %s on %s", detailSelector, location)
	}
	return e.cleaner.Clean(raw, query), nil
}
