package gmaps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/chromedp/chromedp"

	"gmaps-scraper/config"
	"gmaps-scraper/utils"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"

// ErrBrowserClosed is returned when an action is attempted after Close.
var ErrBrowserClosed = errors.New("browser closed")

// Browser owns one Chrome instance and the single tab every query runs in.
type Browser struct {
	cfg    *config.Config
	logger *utils.Logger

	tab         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	opened      bool
}

// NewBrowser launches Chrome. Cancelling parent shuts it down.
func NewBrowser(parent context.Context, cfg *config.Config, logger *utils.Logger) (*Browser, error) {
	logger = logger.With("gmaps")

	chromeBin := cfg.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	logger.Info("Using browser binary: %s", chromeBin)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(parent, allocatorOptions(cfg, chromeBin)...)

	// Suppress chromedp log noise
	tab, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	// The first Run starts the browser.
	if err := chromedp.Run(tab); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	return &Browser{
		cfg:         cfg,
		logger:      logger,
		tab:         tab,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
	}, nil
}

func allocatorOptions(cfg *config.Config, chromeBin string) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("lang", cfg.Locale),
		chromedp.UserAgent(userAgent),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}
	return opts
}

// Run executes actions in the tab. ctx only gates the call: the tab has its
// own lifetime, bound to the context given to NewBrowser.
func (b *Browser) Run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tab == nil {
		return ErrBrowserClosed
	}
	return chromedp.Run(b.tab, actions...)
}

// Open navigates to the start URL and dismisses the cookie consent dialog
// if one is shown. Later calls are no-ops.
func (b *Browser) Open(ctx context.Context) error {
	if b.opened {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.tab == nil {
		return ErrBrowserClosed
	}

	navCtx, cancel := context.WithTimeout(b.tab, b.cfg.NavigationTimeout)
	defer cancel()

	var accepted bool
	err := chromedp.Run(navCtx,
		chromedp.Navigate(b.cfg.StartURL),
		chromedp.Evaluate(consentScript, &accepted),
	)
	if err != nil {
		return fmt.Errorf("open %s: %w", b.cfg.StartURL, err)
	}
	if accepted {
		b.logger.Debug("Accepted cookie consent")
	}

	b.opened = true
	return nil
}

// Close shuts the tab and the browser down.
func (b *Browser) Close() {
	if b.tab == nil {
		return
	}
	b.cancelTab()
	b.cancelAlloc()
	b.tab = nil
}

// findChromeBinary locates a Chrome/Chromium binary, or returns "" to let
// chromedp use its own lookup.
func findChromeBinary() string {
	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
		"/opt/google/chrome/google-chrome",
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
