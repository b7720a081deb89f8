// Package testutil provides an in-memory stand-in for the clinic front end
// that satisfies driver.Page, for tests that must not start a browser.
package testutil

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/clinicflow/uiprobe/internal/driver"
)

// Element is one node of a fake page.
type Element struct {
	Tag     string
	Text    string
	Attrs   map[string]string
	OnClick func(p *Page)
}

func (e *Element) attr(name string) string {
	return e.Attrs[name]
}

// App models the clinic application: its user store outlives pages, like the
// real backend's database does.
type App struct {
	mu      sync.Mutex
	users   map[string]account
	silent  map[string]bool
	pages   []*Page
	Visited []string
}

type account struct {
	name     string
	password string
	role     string
}

// NewApp returns an application with no registered users.
func NewApp() *App {
	return &App{users: map[string]account{}, silent: map[string]bool{}}
}

// Silence makes form submits on route raise no dialog.
func (a *App) Silence(route string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.silent[route] = true
}

// Seed registers a user directly.
func (a *App) Seed(name, email, password, role string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.users[email] = account{name: name, password: password, role: role}
}

// Registered reports the role email signed up with.
func (a *App) Registered(email string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	acct, ok := a.users[email]
	return acct.role, ok
}

// Pages returns every page opened so far.
func (a *App) Pages() []*Page {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]*Page(nil), a.pages...)
}

// NewPage opens a page with no session.
func (a *App) NewPage(ctx context.Context) (driver.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := &Page{app: a}
	a.mu.Lock()
	a.pages = append(a.pages, p)
	a.mu.Unlock()
	return p, nil
}

// Page is a fake browser tab on App.
type Page struct {
	app *App

	mu       sync.Mutex
	route    string
	elements []*Element
	role     string
	session  string
	pending  chan string

	// Dialogs lists every dialog text raised on the page, in order.
	Dialogs []string
	Closed  bool
}

var routePattern = regexp.MustCompile(`^https?://[^/]+(/[^?#]*)`)

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := routePattern.FindStringSubmatch(url)
	if m == nil {
		return fmt.Errorf("cannot navigate to %q", url)
	}
	route := m[1]

	elements, ok := render(route)
	if !ok {
		return fmt.Errorf("404 page not found: %s", route)
	}

	p.mu.Lock()
	p.route = route
	p.elements = elements
	p.role = ""
	p.mu.Unlock()

	p.app.mu.Lock()
	p.app.Visited = append(p.app.Visited, route)
	p.app.mu.Unlock()
	return nil
}

func (p *Page) Count(ctx context.Context, xpath string) (int, error) {
	matches, err := p.match(xpath)
	return len(matches), err
}

func (p *Page) Text(ctx context.Context, xpath string) (string, error) {
	el, err := p.one(xpath)
	if err != nil {
		return "", err
	}
	return el.Text, nil
}

func (p *Page) Attribute(ctx context.Context, xpath, name string) (string, error) {
	el, err := p.one(xpath)
	if err != nil {
		return "", err
	}
	return el.attr(name), nil
}

func (p *Page) Click(ctx context.Context, xpath string) error {
	el, err := p.one(xpath)
	if err != nil {
		return err
	}
	if el.attr("type") == "checkbox" {
		if el.attr("checked") == "" {
			el.Attrs["checked"] = "checked"
		} else {
			delete(el.Attrs, "checked")
		}
	}
	if el.OnClick != nil {
		el.OnClick(p)
	}
	return nil
}

func (p *Page) Fill(ctx context.Context, xpath, value string) error {
	el, err := p.one(xpath)
	if err != nil {
		return err
	}
	el.Attrs["value"] = value
	return nil
}

func (p *Page) SelectOption(ctx context.Context, xpath, value string) error {
	el, err := p.one(xpath)
	if err != nil {
		return err
	}
	if el.Tag != "select" {
		return fmt.Errorf("%s is not a select", xpath)
	}
	el.Attrs["value"] = value
	return nil
}

func (p *Page) ExpectDialog() <-chan string {
	ch := make(chan string, 1)
	p.mu.Lock()
	p.pending = ch
	p.mu.Unlock()
	return ch
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Closed = true
	return nil
}

// Session returns the email the page is signed in as.
func (p *Page) Session() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session
}

func (p *Page) alert(text string) {
	p.app.mu.Lock()
	silent := p.app.silent[p.route]
	p.app.mu.Unlock()
	if silent {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.Dialogs = append(p.Dialogs, text)
	if p.pending != nil {
		p.pending <- text
		p.pending = nil
	}
}

// value returns the value of the first element matching xpath.
func (p *Page) value(xpath string) string {
	matches, _ := p.match(xpath)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].attr("value")
}

var (
	indexedPattern = regexp.MustCompile(`^\((.*)\)\[(\d+)\]$`)
	tagPattern     = regexp.MustCompile(`^//(\w+)$`)
	attrPattern    = regexp.MustCompile(`^//(\w+)\[@(\w+)='([^']*)'\]$`)
	textPattern    = regexp.MustCompile(`^//(\w+)\[text\(\)='([^']*)'\]$`)
)

// match evaluates the small XPath subset the driver emits.
func (p *Page) match(xpath string) ([]*Element, error) {
	if m := indexedPattern.FindStringSubmatch(xpath); m != nil {
		all, err := p.match(m[1])
		if err != nil {
			return nil, err
		}
		i, _ := strconv.Atoi(m[2])
		if i < 1 || i > len(all) {
			return nil, nil
		}
		return all[i-1 : i], nil
	}

	var keep func(*Element) bool
	switch {
	case tagPattern.MatchString(xpath):
		m := tagPattern.FindStringSubmatch(xpath)
		keep = func(e *Element) bool { return e.Tag == m[1] }
	case attrPattern.MatchString(xpath):
		m := attrPattern.FindStringSubmatch(xpath)
		keep = func(e *Element) bool { return e.Tag == m[1] && e.attr(m[2]) == m[3] }
	case textPattern.MatchString(xpath):
		m := textPattern.FindStringSubmatch(xpath)
		keep = func(e *Element) bool { return e.Tag == m[1] && e.Text == m[2] }
	default:
		return nil, fmt.Errorf("unsupported xpath %q", xpath)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*Element
	for _, e := range p.elements {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (p *Page) one(xpath string) (*Element, error) {
	matches, err := p.match(xpath)
	if err != nil {
		return nil, err
	}
	if len(matches) != 1 {
		return nil, fmt.Errorf("%d elements match %s", len(matches), xpath)
	}
	return matches[0], nil
}

func (p *Page) append(e *Element) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.elements = append(p.elements, e)
}

func el(tag, text string, attrs ...string) *Element {
	e := &Element{Tag: tag, Text: text, Attrs: map[string]string{}}
	for i := 0; i+1 < len(attrs); i += 2 {
		e.Attrs[attrs[i]] = attrs[i+1]
	}
	return e
}

func button(text, typ string, onClick func(p *Page)) *Element {
	e := el("button", text, "type", typ)
	e.OnClick = onClick
	return e
}

func render(route string) ([]*Element, bool) {
	switch route {
	case "/register":
		return []*Element{
			button("Patient", "button", func(p *Page) { p.role = "Patient" }),
			button("Doctor", "button", func(p *Page) { p.role = "Doctor" }),
			el("input", "", "type", "text"),
			el("input", "", "type", "email"),
			el("input", "", "type", "password"),
			button("Submit", "submit", (*Page).register),
		}, true
	case "/login":
		return []*Element{
			el("input", "", "type", "email"),
			el("input", "", "type", "password"),
			button("Login", "submit", (*Page).login),
		}, true
	case "/profile-change-doctor":
		return []*Element{
			el("input", "", "placeholder", "Enter qualification..."),
			el("input", "", "type", "checkbox", "value", "Cardiology"),
			el("input", "", "type", "checkbox", "value", "Dermatology"),
			el("input", "", "type", "checkbox", "value", "Neurology"),
			el("input", "", "placeholder", "Enter experience..."),
			el("textarea", "", "placeholder", "Enter a brief description..."),
			el("select", ""),
			button("Add Slot", "button", func(p *Page) {
				p.append(el("input", "", "placeholder", "Starting time (e.g. 9am)"))
				p.append(el("input", "", "placeholder", "Ending time (e.g. 12pm)"))
				p.append(el("input", "", "placeholder", "Capacity"))
			}),
			button("Submit", "button", (*Page).updateProfile),
		}, true
	case "/appointments":
		return []*Element{
			el("input", "", "placeholder", "Enter patient name"),
			el("input", "", "placeholder", "Enter patient age"),
			el("select", "", "id", "patient-gender"),
			el("textarea", "", "placeholder", "Enter prescription notes"),
			button("Submit", "button", (*Page).addPrescription),
		}, true
	}
	return nil, false
}

func (p *Page) register() {
	name := p.value("//input[@type='text']")
	email := p.value("//input[@type='email']")
	password := p.value("//input[@type='password']")
	if name == "" || email == "" || password == "" {
		p.alert("All fields are required")
		return
	}

	p.app.mu.Lock()
	_, exists := p.app.users[email]
	if !exists {
		p.app.users[email] = account{name: name, password: password, role: p.role}
	}
	p.app.mu.Unlock()

	if exists {
		p.alert("User already exists")
		return
	}
	p.mu.Lock()
	p.session = email
	p.mu.Unlock()
	p.alert("signed up successfully")
}

func (p *Page) login() {
	email := p.value("//input[@type='email']")
	password := p.value("//input[@type='password']")

	p.app.mu.Lock()
	acct, ok := p.app.users[email]
	p.app.mu.Unlock()

	if !ok || acct.password != password {
		p.alert("Invalid credentials")
		return
	}
	p.mu.Lock()
	p.session = email
	p.mu.Unlock()
	p.alert("Logged in successfully")
}

func (p *Page) isDoctor() bool {
	email := p.Session()
	role, ok := p.app.Registered(email)
	return ok && role == "Doctor"
}

func (p *Page) updateProfile() {
	var checked []string
	boxes, _ := p.match("//input[@type='checkbox']")
	for _, b := range boxes {
		if b.attr("checked") != "" {
			checked = append(checked, b.attr("value"))
		}
	}

	complete := p.value("//input[@placeholder='Enter qualification...']") != "" &&
		len(checked) > 0 &&
		p.value("//select") != "" &&
		p.value("//input[@placeholder='Capacity']") != ""

	if p.isDoctor() && complete {
		p.alert("Profile updated successfully")
		return
	}
	p.alert("Error updating profile")
}

func (p *Page) addPrescription() {
	complete := strings.TrimSpace(p.value("//input[@placeholder='Enter patient name']")) != "" &&
		p.value("//select[@id='patient-gender']") != ""

	if p.isDoctor() && complete {
		p.alert("Prescription added successfully")
		return
	}
	p.alert("Error adding prescription")
}
