package gmaps

const (
	searchBox      = `#searchboxinput`
	detailSelector = `h1.DUwDvf`
)

// consentScript clicks the first known "accept" button and reports whether
// it found one.
const consentScript = `(function () {
  const selectors = [
    'button[aria-label="Accept all"]',
    'button[aria-label="I agree"]',
    'button[aria-label="Alles akzeptieren"]',
    'form[action*="consent"] button'
  ];
  for (const sel of selectors) {
    const btn = document.querySelector(sel);
    if (btn) {
      btn.click();
      return true;
    }
  }
  return false;
})();`

// entryLabelsScript returns the aria-label of every result card, in order.
const entryLabelsScript = `(function () {
  return Array.from(document.querySelectorAll('div.Nv2PK')).map(card => {
    const link = card.querySelector('a.hfpxzc');
    return (link && link.getAttribute('aria-label')) || '';
  });
})();`

// scrollFeedScript scrolls the results pane by %d pixels, or the window
// when the pane is not rendered.
const scrollFeedScript = `(function (px) {
  const feed = document.querySelector('div[role="feed"]');
  if (feed) {
    feed.scrollBy(0, px);
    return true;
  }
  window.scrollBy(0, px);
  return false;
})(%d);`

// revealEntryScript scrolls card %d into view and dispatches a hover.
const revealEntryScript = `(function (i) {
  const card = document.querySelectorAll('div.Nv2PK')[i];
  if (!card) {
    return false;
  }
  card.scrollIntoView({block: 'center'});
  card.dispatchEvent(new MouseEvent('mouseover', {bubbles: true}));
  return true;
})(%d);`

// clickEntryScript clicks the link of card %d.
const clickEntryScript = `(function (i) {
  const card = document.querySelectorAll('div.Nv2PK')[i];
  if (!card) {
    return false;
  }
  (card.querySelector('a.hfpxzc') || card).click();
  return true;
})(%d);`
