package driver

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromedpBrowser is a Chrome instance driven over the DevTools protocol.
type ChromedpBrowser struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// LaunchChromedp starts Chrome. The browser lives until Close is called or
// parent is cancelled.
func LaunchChromedp(parent context.Context, headless bool) (*ChromedpBrowser, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", headless),
		chromedp.Flag("disable-popup-blocking", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// The first Run starts the browser process.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	return &ChromedpBrowser{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// NewPage opens a new tab in its own browser context, so cookies and
// storage do not carry over between pages.
func (b *ChromedpBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tabCtx, cancel := chromedp.NewContext(b.browserCtx, chromedp.WithNewBrowserContext())
	if err := chromedp.Run(tabCtx); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}
	return newChromedpPage(tabCtx, cancel), nil
}

// Close shuts Chrome down.
func (b *ChromedpBrowser) Close() error {
	err := chromedp.Cancel(b.browserCtx)
	b.browserCancel()
	b.allocCancel()
	return err
}

// ChromedpPage adapts one chromedp tab to Page.
type ChromedpPage struct {
	tabCtx context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	pending chan string
}

func newChromedpPage(tabCtx context.Context, cancel context.CancelFunc) *ChromedpPage {
	p := &ChromedpPage{tabCtx: tabCtx, cancel: cancel}
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*page.EventJavascriptDialogOpening); ok {
			// Listeners must not block the event loop.
			go p.onDialog(e.Message)
		}
	})
	return p
}

func (p *ChromedpPage) onDialog(message string) {
	_ = chromedp.Run(p.tabCtx, page.HandleJavaScriptDialog(true))

	p.mu.Lock()
	ch := p.pending
	p.pending = nil
	p.mu.Unlock()

	if ch != nil {
		ch <- message
	}
}

// run executes actions on the tab, abandoning them when ctx is done.
func (p *ChromedpPage) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(p.tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (p *ChromedpPage) Navigate(ctx context.Context, url string) error {
	return p.run(ctx, chromedp.Navigate(url))
}

func (p *ChromedpPage) Count(ctx context.Context, xpath string) (int, error) {
	var nodes []*cdp.Node
	if err := p.run(ctx, chromedp.Nodes(xpath, &nodes, chromedp.BySearch, chromedp.AtLeast(0))); err != nil {
		return 0, err
	}
	return len(nodes), nil
}

func (p *ChromedpPage) Text(ctx context.Context, xpath string) (string, error) {
	var text string
	err := p.run(ctx, chromedp.Text(xpath, &text, chromedp.BySearch, chromedp.NodeReady))
	return text, err
}

func (p *ChromedpPage) Attribute(ctx context.Context, xpath, name string) (string, error) {
	var (
		value string
		ok    bool
	)
	if err := p.run(ctx, chromedp.AttributeValue(xpath, name, &value, &ok, chromedp.BySearch, chromedp.NodeReady)); err != nil {
		return "", err
	}
	return value, nil
}

func (p *ChromedpPage) Click(ctx context.Context, xpath string) error {
	return p.run(ctx, chromedp.Click(xpath, chromedp.BySearch, chromedp.NodeVisible))
}

func (p *ChromedpPage) Fill(ctx context.Context, xpath, value string) error {
	return p.run(ctx,
		chromedp.Clear(xpath, chromedp.BySearch, chromedp.NodeVisible),
		chromedp.SendKeys(xpath, value, chromedp.BySearch, chromedp.NodeVisible),
	)
}

// SelectOption sets the value and fires change so framework listeners see it.
func (p *ChromedpPage) SelectOption(ctx context.Context, xpath, value string) error {
	script := fmt.Sprintf(`(() => {
		const el = document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) return false;
		el.value = %s;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return el.value === %s;
	})()`, strconv.Quote(xpath), strconv.Quote(value), strconv.Quote(value))

	var ok bool
	if err := p.run(ctx, chromedp.Evaluate(script, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("option %q not available in %s", value, xpath)
	}
	return nil
}

func (p *ChromedpPage) ExpectDialog() <-chan string {
	ch := make(chan string, 1)
	p.mu.Lock()
	p.pending = ch
	p.mu.Unlock()
	return ch
}

func (p *ChromedpPage) Close() error {
	err := chromedp.Cancel(p.tabCtx)
	p.cancel()
	return err
}
