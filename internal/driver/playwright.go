package driver

import (
	"context"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// actionTimeout caps Playwright's auto-wait on a single element action, in ms.
const actionTimeout = 5000

// PlaywrightBrowser is a Chromium instance driven through Playwright.
type PlaywrightBrowser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// LaunchPlaywright starts the Playwright driver and a Chromium browser.
// Browsers must already be installed (playwright install chromium).
func LaunchPlaywright(headless bool) (*PlaywrightBrowser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}

	return &PlaywrightBrowser{pw: pw, browser: browser}, nil
}

// NewPage opens a page in a fresh browser context, so every page starts
// without cookies or storage from earlier scenarios.
func (b *PlaywrightBrowser) NewPage(ctx context.Context) (Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bctx, err := b.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create browser context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	return WrapPlaywrightPage(page, bctx), nil
}

// Close shuts down the browser and the Playwright driver.
func (b *PlaywrightBrowser) Close() error {
	if err := b.browser.Close(); err != nil {
		_ = b.pw.Stop()
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return b.pw.Stop()
}

// PlaywrightPage adapts a playwright.Page to Page.
type PlaywrightPage struct {
	page  playwright.Page
	owner playwright.BrowserContext

	mu      sync.Mutex
	pending chan string
}

// WrapPlaywrightPage adapts page. When owner is non-nil it is closed along
// with the page.
func WrapPlaywrightPage(page playwright.Page, owner playwright.BrowserContext) *PlaywrightPage {
	p := &PlaywrightPage{page: page, owner: owner}
	page.OnDialog(p.onDialog)
	return p
}

func (p *PlaywrightPage) onDialog(dialog playwright.Dialog) {
	message := dialog.Message()
	_ = dialog.Accept()

	p.mu.Lock()
	ch := p.pending
	p.pending = nil
	p.mu.Unlock()

	if ch != nil {
		ch <- message
	}
}

func (p *PlaywrightPage) locator(xpath string) playwright.Locator {
	return p.page.Locator("xpath=" + xpath)
}

func (p *PlaywrightPage) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.page.Goto(url)
	return err
}

func (p *PlaywrightPage) Count(ctx context.Context, xpath string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return p.locator(xpath).Count()
}

func (p *PlaywrightPage) Text(ctx context.Context, xpath string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.locator(xpath).InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(actionTimeout),
	})
}

func (p *PlaywrightPage) Attribute(ctx context.Context, xpath, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return p.locator(xpath).GetAttribute(name, playwright.LocatorGetAttributeOptions{
		Timeout: playwright.Float(actionTimeout),
	})
}

func (p *PlaywrightPage) Click(ctx context.Context, xpath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.locator(xpath).Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(actionTimeout),
	})
}

func (p *PlaywrightPage) Fill(ctx context.Context, xpath, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.locator(xpath).Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(actionTimeout),
	})
}

func (p *PlaywrightPage) SelectOption(ctx context.Context, xpath, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := p.locator(xpath).SelectOption(playwright.SelectOptionValues{
		Values: &[]string{value},
	}, playwright.LocatorSelectOptionOptions{
		Timeout: playwright.Float(actionTimeout),
	})
	return err
}

func (p *PlaywrightPage) ExpectDialog() <-chan string {
	ch := make(chan string, 1)
	p.mu.Lock()
	p.pending = ch
	p.mu.Unlock()
	return ch
}

func (p *PlaywrightPage) Close() error {
	err := p.page.Close()
	if p.owner != nil {
		if cerr := p.owner.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
