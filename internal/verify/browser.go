package verify

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// DefaultBrowserSessions bounds concurrent automation sessions. Each
// session owns a headless browser for the duration of one call, so the
// strategy is treated as a scarce resource.
const DefaultBrowserSessions = 2

// DefaultCaptureWindow bounds how long a page load is observed for a
// matching document response.
const DefaultCaptureWindow = 25 * time.Second

// BrowserFetcher is the rendered-page retrieval strategy: it navigates
// a headless browser to the receipt URL, observes every network
// response emitted during page load, and captures the first one whose
// content type matches the expected document format. The captured URL
// is then fetched directly for the bytes. Used where direct access is
// known to be unreliable (geo-blocking, anti-bot interstitials).
type BrowserFetcher struct {
	buildURL URLBuilder
	expect   Format
	direct   *HTTPFetcher
	window   time.Duration
	sessions chan struct{}
}

// NewBrowserFetcher creates a rendered-page fetcher with at most
// maxSessions concurrent browser sessions.
func NewBrowserFetcher(buildURL URLBuilder, expect Format, maxSessions int, opts ...FetchOption) *BrowserFetcher {
	if maxSessions <= 0 {
		maxSessions = DefaultBrowserSessions
	}
	return &BrowserFetcher{
		buildURL: buildURL,
		expect:   expect,
		direct:   NewHTTPFetcher(buildURL, expect, opts...),
		window:   DefaultCaptureWindow,
		sessions: make(chan struct{}, maxSessions),
	}
}

// Fetch renders the page, captures a matching document URL, and
// retrieves its bytes. The browser session is torn down on every exit
// path.
func (f *BrowserFetcher) Fetch(ctx context.Context, ref Reference) (*RawDocument, error) {
	pageURL := f.buildURL(ref)

	select {
	case f.sessions <- struct{}{}:
		defer func() { <-f.sessions }()
	case <-ctx.Done():
		return nil, &NetworkError{URL: pageURL, Err: ctx.Err()}
	}

	docURL, err := f.capture(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	raw, err := f.direct.get(ctx, docURL)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// capture loads the page and returns the URL of the first observed
// response matching the expected content type, or a NetworkError when
// none appears within the capture window.
func (f *BrowserFetcher) capture(ctx context.Context, pageURL string) (string, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelWindow := context.WithTimeout(tabCtx, f.window)
	defer cancelWindow()

	matched := make(chan string, 1)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok {
			return
		}
		if contentTypeMatches(f.expect, resp.Response.MimeType) {
			select {
			case matched <- resp.Response.URL:
			default:
			}
		}
	})

	navDone := make(chan error, 1)
	go func() {
		navDone <- chromedp.Run(tabCtx,
			network.Enable(),
			chromedp.Navigate(pageURL),
		)
	}()

	select {
	case url := <-matched:
		return url, nil
	case <-tabCtx.Done():
		return "", &NetworkError{URL: pageURL, Err: fmt.Errorf("no %s document detected during page load", f.expect)}
	case err := <-navDone:
		if err != nil {
			return "", &NetworkError{URL: pageURL, Err: err}
		}
		// Navigation finished without a matching response; give the
		// page the remainder of the window to trigger one.
		select {
		case url := <-matched:
			return url, nil
		case <-tabCtx.Done():
			return "", &NetworkError{URL: pageURL, Err: fmt.Errorf("no %s document detected during page load", f.expect)}
		}
	}
}
