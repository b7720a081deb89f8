// Package driver implements the fill-submit-await-dialog interaction protocol
// on top of a browser backend.
package driver

import "context"

// Page is one browser tab. Elements are addressed by XPath so that tag-name,
// attribute and structural lookups all share one locator language; indexed
// forms such as "(//button)[3]" address the n-th match.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Count returns the number of elements matching xpath without waiting.
	Count(ctx context.Context, xpath string) (int, error)
	// Text returns the rendered text of the single element matching xpath.
	Text(ctx context.Context, xpath string) (string, error)
	// Attribute returns the named attribute, or "" when it is absent.
	Attribute(ctx context.Context, xpath, name string) (string, error)
	Click(ctx context.Context, xpath string) error
	// Fill clears the element and types value into it.
	Fill(ctx context.Context, xpath, value string) error
	// SelectOption picks the option with the given value in a <select>.
	SelectOption(ctx context.Context, xpath, value string) error
	// ExpectDialog arms a one-shot dialog catcher. The returned channel
	// receives the message of the next native dialog after the backend has
	// accepted it. Dialogs raised while nothing is armed are accepted and
	// dropped.
	ExpectDialog() <-chan string
	Close() error
}
