package gmaps

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"

	"gmaps-scraper/config"
	"gmaps-scraper/services"
	"gmaps-scraper/utils"
)

// ErrEntryGone is returned by Activate when the card at the entry's
// position is no longer rendered.
var ErrEntryGone = errors.New("result card not found")

// ListingSource drives the Google Maps results pane in a Browser.
type ListingSource struct {
	browser *Browser
	cfg     *config.Config
	pacer   *utils.Pacer
	logger  *utils.Logger
}

var _ services.ListingSource = (*ListingSource)(nil)

// NewListingSource creates a ListingSource that waits with pacer between
// interactions.
func NewListingSource(browser *Browser, cfg *config.Config, pacer *utils.Pacer, logger *utils.Logger) *ListingSource {
	return &ListingSource{
		browser: browser,
		cfg:     cfg,
		pacer:   pacer,
		logger:  logger.With("gmaps"),
	}
}

// SubmitQuery types query into the search box and presses Enter.
func (s *ListingSource) SubmitQuery(ctx context.Context, query string) error {
	if err := s.browser.Open(ctx); err != nil {
		return err
	}

	err := s.browser.Run(ctx,
		chromedp.WaitVisible(searchBox, chromedp.ByQuery),
		chromedp.SetValue(searchBox, "", chromedp.ByQuery),
		chromedp.SendKeys(searchBox, query, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill search box: %w", err)
	}
	if err := s.pacer.Pause(ctx, s.cfg.SearchFillDelay); err != nil {
		return err
	}

	if err := s.browser.Run(ctx, chromedp.SendKeys(searchBox, kb.Enter, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	s.logger.Debug("Submitted %q", query)
	return s.pacer.Pause(ctx, s.cfg.SearchSettleDelay)
}

// CurrentEntries returns one handle per rendered result card.
func (s *ListingSource) CurrentEntries(ctx context.Context) ([]services.EntryHandle, error) {
	var labels []string
	if err := s.browser.Run(ctx, chromedp.Evaluate(entryLabelsScript, &labels)); err != nil {
		return nil, fmt.Errorf("read result cards: %w", err)
	}

	entries := make([]services.EntryHandle, len(labels))
	for i, l := range labels {
		entries[i] = services.EntryHandle{Index: i, Label: l}
	}
	return entries, nil
}

// LoadMore scrolls the results pane so the next batch is rendered.
func (s *ListingSource) LoadMore(ctx context.Context) error {
	var inFeed bool
	script := fmt.Sprintf(scrollFeedScript, s.cfg.ScrollPixels)
	if err := s.browser.Run(ctx, chromedp.Evaluate(script, &inFeed)); err != nil {
		return fmt.Errorf("scroll results: %w", err)
	}
	if !inFeed {
		s.logger.Debug("Results feed not found, scrolled the window")
	}
	return s.pacer.Pause(ctx, s.cfg.ScrollDelay)
}

// Activate hovers the entry's card, clicks it and waits for the detail pane.
func (s *ListingSource) Activate(ctx context.Context, entry services.EntryHandle) error {
	var found bool
	if err := s.browser.Run(ctx, chromedp.Evaluate(fmt.Sprintf(revealEntryScript, entry.Index), &found)); err != nil {
		return fmt.Errorf("hover entry %d: %w", entry.Index, err)
	}
	if !found {
		return ErrEntryGone
	}
	if err := s.pacer.Pause(ctx, s.cfg.HoverDelay); err != nil {
		return err
	}

	if err := s.browser.Run(ctx, chromedp.Evaluate(fmt.Sprintf(clickEntryScript, entry.Index), &found)); err != nil {
		return fmt.Errorf("click entry %d: %w", entry.Index, err)
	}
	if !found {
		return ErrEntryGone
	}
	return s.pacer.Pause(ctx, s.cfg.ClickDelay)
}
