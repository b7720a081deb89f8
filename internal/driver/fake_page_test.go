package driver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"sync"
)

// fakeElement is one node of the in-memory page.
type fakeElement struct {
	Text        string
	Type        string
	Value       string
	Placeholder string
	Clicks      int
	OnClick     func(p *fakePage)
}

// fakePage is an in-memory Page. Elements are registered under the XPath the
// driver will look them up by; indexed forms "(xpath)[n]" resolve into the list.
type fakePage struct {
	mu sync.Mutex

	URL         string
	NavigateErr error
	Elements    map[string][]*fakeElement
	Calls       []string

	pending  chan string
	Unarmed  []string
	Closed   bool
	ArmCount int
}

func newFakePage() *fakePage {
	return &fakePage{Elements: map[string][]*fakeElement{}}
}

func (p *fakePage) add(xpath string, el *fakeElement) *fakeElement {
	p.Elements[xpath] = append(p.Elements[xpath], el)
	return el
}

// raise simulates window.alert(text) being accepted by the backend.
func (p *fakePage) raise(text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		p.Unarmed = append(p.Unarmed, text)
		return
	}
	p.pending <- text
	p.pending = nil
}

var indexed = regexp.MustCompile(`^\((.*)\)\[(\d+)\]$`)

func (p *fakePage) lookup(xpath string) (*fakeElement, error) {
	m := indexed.FindStringSubmatch(xpath)
	if m == nil {
		list := p.Elements[xpath]
		if len(list) != 1 {
			return nil, fmt.Errorf("%d elements match %s", len(list), xpath)
		}
		return list[0], nil
	}
	i, _ := strconv.Atoi(m[2])
	list := p.Elements[m[1]]
	if i < 1 || i > len(list) {
		return nil, fmt.Errorf("no element %s", xpath)
	}
	return list[i-1], nil
}

func (p *fakePage) record(format string, args ...any) {
	p.Calls = append(p.Calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.record("navigate %s", url)
	if p.NavigateErr != nil {
		return p.NavigateErr
	}
	p.URL = url
	return nil
}

func (p *fakePage) Count(ctx context.Context, xpath string) (int, error) {
	return len(p.Elements[xpath]), nil
}

func (p *fakePage) Text(ctx context.Context, xpath string) (string, error) {
	el, err := p.lookup(xpath)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (p *fakePage) Attribute(ctx context.Context, xpath, name string) (string, error) {
	el, err := p.lookup(xpath)
	if err != nil {
		return "", err
	}
	switch name {
	case "type":
		return el.Type, nil
	case "value":
		return el.Value, nil
	case "placeholder":
		return el.Placeholder, nil
	}
	return "", errors.New("unsupported attribute " + name)
}

func (p *fakePage) Click(ctx context.Context, xpath string) error {
	el, err := p.lookup(xpath)
	if err != nil {
		return err
	}
	p.record("click %s", xpath)
	el.Clicks++
	if el.OnClick != nil {
		el.OnClick(p)
	}
	return nil
}

func (p *fakePage) Fill(ctx context.Context, xpath, value string) error {
	el, err := p.lookup(xpath)
	if err != nil {
		return err
	}
	p.record("fill %s", xpath)
	el.Value = value
	return nil
}

func (p *fakePage) SelectOption(ctx context.Context, xpath, value string) error {
	el, err := p.lookup(xpath)
	if err != nil {
		return err
	}
	p.record("select %s", xpath)
	el.Value = value
	return nil
}

func (p *fakePage) ExpectDialog() <-chan string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan string, 1)
	p.pending = ch
	p.ArmCount++
	return ch
}

func (p *fakePage) Close() error {
	p.Closed = true
	return nil
}
