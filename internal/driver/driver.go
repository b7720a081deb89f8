package driver

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// State is the furthest point an interaction reached.
type State int

const (
	StateIdle State = iota
	StateNavigated
	StateFilled
	StateSubmitted
	StateDialogObserved
	StatePassed
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigated:
		return "navigated"
	case StateFilled:
		return "filled"
	case StateSubmitted:
		return "submitted"
	case StateDialogObserved:
		return "dialog-observed"
	case StatePassed:
		return "passed"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Outcome is the result of one interaction.
type Outcome struct {
	Scenario string
	State    State
	// Text is the dialog message, empty when no dialog appeared.
	Text string
}

// Driver runs interactions against pages of one target application.
type Driver struct {
	baseURL string
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a Driver for the application at baseURL. timeout is the
// dialog wait used by interactions that do not set their own.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		logger:  logger.Named("driver"),
	}
}

// BaseURL returns the application root the driver navigates under.
func (d *Driver) BaseURL() string {
	return d.baseURL
}

// Run navigates to in.Path, fills the form, submits it and waits for one
// native dialog. The dialog is always accepted. A nil error means the dialog
// text is in in.Expect.
func (d *Driver) Run(ctx context.Context, page Page, in Interaction) (Outcome, error) {
	r := &run{
		page:    page,
		in:      in,
		out:     Outcome{Scenario: in.Name, State: StateIdle},
		logger:  d.logger.With(zap.String("scenario", in.Name)),
		timeout: in.Timeout,
	}
	if r.timeout <= 0 {
		r.timeout = d.timeout
	}

	if err := r.execute(ctx, d.baseURL+in.Path); err != nil {
		r.out.State = StateFailed
		r.logger.Debug("interaction failed", zap.Error(err))
		return r.out, err
	}
	return r.out, nil
}

type run struct {
	page    Page
	in      Interaction
	out     Outcome
	reached State
	logger  *zap.Logger
	timeout time.Duration
}

func (r *run) advance(s State) {
	r.reached = s
	r.out.State = s
	r.logger.Debug("state", zap.Stringer("state", s))
}

func (r *run) assertion(msg, text string) error {
	return &AssertionError{Scenario: r.in.Name, Reached: r.reached, Text: text, Msg: msg}
}

func (r *run) execute(ctx context.Context, url string) error {
	if err := r.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("%s: navigate to %s: %w", r.in.Name, url, err)
	}
	r.advance(StateNavigated)

	if r.in.Role != RoleNone {
		clicked, err := r.clickButtonsWithText(ctx, string(r.in.Role))
		if err != nil {
			return err
		}
		if clicked == 0 {
			r.logger.Warn("role toggle not found", zap.String("role", string(r.in.Role)))
		}
	}

	if err := r.fillInputsByType(ctx); err != nil {
		return err
	}
	for _, step := range r.in.Steps {
		if err := r.apply(ctx, step); err != nil {
			return err
		}
	}
	r.advance(StateFilled)

	dialogs := r.page.ExpectDialog()
	if err := r.submit(ctx); err != nil {
		return err
	}
	r.advance(StateSubmitted)

	timer := time.NewTimer(r.timeout)
	defer timer.Stop()

	var text string
	select {
	case text = <-dialogs:
	case <-timer.C:
		return r.assertion(MsgNoAlert, "")
	case <-ctx.Done():
		return fmt.Errorf("%s: waiting for dialog: %w", r.in.Name, ctx.Err())
	}
	r.out.Text = text
	r.advance(StateDialogObserved)

	if !r.in.Expect.Contains(text) {
		r.logger.Info("unexpected dialog", zap.String("text", text), zap.Stringer("allowed", r.in.Expect))
		return r.assertion(MsgIncorrectAlert, text)
	}
	r.advance(StatePassed)
	return nil
}

// clickButtonsWithText clicks every button whose rendered text equals label.
func (r *run) clickButtonsWithText(ctx context.Context, label string) (int, error) {
	n, err := r.page.Count(ctx, "//button")
	if err != nil {
		return 0, fmt.Errorf("%s: count buttons: %w", r.in.Name, err)
	}
	clicked := 0
	for i := 1; i <= n; i++ {
		xpath := nth("//button", i)
		text, err := r.page.Text(ctx, xpath)
		if err != nil {
			return clicked, fmt.Errorf("%s: read %s: %w", r.in.Name, xpath, err)
		}
		if strings.TrimSpace(text) != label {
			continue
		}
		if err := r.page.Click(ctx, xpath); err != nil {
			return clicked, fmt.Errorf("%s: click %q: %w", r.in.Name, label, err)
		}
		clicked++
	}
	return clicked, nil
}

func (r *run) fillInputsByType(ctx context.Context) error {
	if len(r.in.Inputs) == 0 {
		return nil
	}
	n, err := r.page.Count(ctx, "//input")
	if err != nil {
		return fmt.Errorf("%s: count inputs: %w", r.in.Name, err)
	}
	for i := 1; i <= n; i++ {
		xpath := nth("//input", i)
		typ, err := r.page.Attribute(ctx, xpath, "type")
		if err != nil {
			return fmt.Errorf("%s: read type of %s: %w", r.in.Name, xpath, err)
		}
		value, ok := r.in.Inputs[typ]
		if !ok {
			continue
		}
		if err := r.page.Fill(ctx, xpath, value); err != nil {
			return fmt.Errorf("%s: fill %s input: %w", r.in.Name, typ, err)
		}
	}
	return nil
}

func (r *run) apply(ctx context.Context, step Step) error {
	if step.Kind == StepCheck {
		return r.check(ctx, step)
	}

	n, err := r.page.Count(ctx, step.XPath)
	if err != nil {
		return fmt.Errorf("%s: locate %s: %w", r.in.Name, step.XPath, err)
	}
	if n == 0 {
		return r.assertion(fmt.Sprintf("element not found: %s", step.XPath), "")
	}
	// Like a single-element lookup, the first match wins.
	xpath := nth(step.XPath, 1)

	switch step.Kind {
	case StepFill:
		err = r.page.Fill(ctx, xpath, step.Value)
	case StepSelect:
		err = r.page.SelectOption(ctx, xpath, step.Value)
	case StepClick:
		err = r.page.Click(ctx, xpath)
	default:
		return fmt.Errorf("%s: unknown step kind %s", r.in.Name, step.Kind)
	}
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", r.in.Name, step.Kind, step.XPath, err)
	}
	return nil
}

func (r *run) check(ctx context.Context, step Step) error {
	n, err := r.page.Count(ctx, step.XPath)
	if err != nil {
		return fmt.Errorf("%s: locate %s: %w", r.in.Name, step.XPath, err)
	}
	for i := 1; i <= n; i++ {
		xpath := nth(step.XPath, i)
		value, err := r.page.Attribute(ctx, xpath, "value")
		if err != nil {
			return fmt.Errorf("%s: read value of %s: %w", r.in.Name, xpath, err)
		}
		if !Allowlist(step.Values).Contains(value) {
			continue
		}
		if err := r.page.Click(ctx, xpath); err != nil {
			return fmt.Errorf("%s: check %q: %w", r.in.Name, value, err)
		}
	}
	return nil
}

func (r *run) submit(ctx context.Context) error {
	if r.in.Submit.XPath != "" {
		return r.apply(ctx, Click(r.in.Submit.XPath))
	}

	n, err := r.page.Count(ctx, "//button")
	if err != nil {
		return fmt.Errorf("%s: count buttons: %w", r.in.Name, err)
	}
	for i := 1; i <= n; i++ {
		xpath := nth("//button", i)
		typ, err := r.page.Attribute(ctx, xpath, "type")
		if err != nil {
			return fmt.Errorf("%s: read type of %s: %w", r.in.Name, xpath, err)
		}
		if typ != "submit" {
			continue
		}
		text, err := r.page.Text(ctx, xpath)
		if err != nil {
			return fmt.Errorf("%s: read %s: %w", r.in.Name, xpath, err)
		}
		if strings.TrimSpace(text) != r.in.Submit.Label {
			continue
		}
		if err := r.page.Click(ctx, xpath); err != nil {
			return fmt.Errorf("%s: click %s: %w", r.in.Name, r.in.Submit, err)
		}
		return nil
	}
	return r.assertion(fmt.Sprintf("%s not found", r.in.Submit), "")
}

// nth addresses the i-th (1-based) match of xpath in document order.
func nth(xpath string, i int) string {
	return fmt.Sprintf("(%s)[%d]", xpath, i)
}
