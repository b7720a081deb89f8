package driver

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Role selects the account type toggle shown on the registration form.
type Role string

const (
	RoleNone    Role = ""
	RolePatient Role = "Patient"
	RoleDoctor  Role = "Doctor"
)

// Allowlist is the fixed set of dialog texts a scenario accepts as an outcome.
type Allowlist []string

// Contains reports whether text exactly matches one entry.
func (a Allowlist) Contains(text string) bool {
	return slices.Contains(a, text)
}

func (a Allowlist) String() string {
	quoted := make([]string, len(a))
	for i, s := range a {
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

// StepKind identifies what a Step does to the page.
type StepKind int

const (
	StepFill StepKind = iota
	StepCheck
	StepSelect
	StepClick
)

func (k StepKind) String() string {
	switch k {
	case StepFill:
		return "fill"
	case StepCheck:
		return "check"
	case StepSelect:
		return "select"
	case StepClick:
		return "click"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one form interaction performed after the role toggle and the
// type-keyed inputs.
type Step struct {
	Kind   StepKind
	XPath  string
	Value  string
	Values []string
}

// Fill clears the element at xpath and types value.
func Fill(xpath, value string) Step {
	return Step{Kind: StepFill, XPath: xpath, Value: value}
}

// FillPlaceholder fills the tag (input, textarea) whose placeholder matches exactly.
func FillPlaceholder(tag, placeholder, value string) Step {
	return Fill(fmt.Sprintf("//%s[@placeholder=%s]", tag, xpathLiteral(placeholder)), value)
}

// Check clicks every checkbox whose value attribute is one of values.
func Check(values ...string) Step {
	return Step{Kind: StepCheck, XPath: "//input[@type='checkbox']", Values: values}
}

// Select picks the option with the given value in the select at xpath.
func Select(xpath, value string) Step {
	return Step{Kind: StepSelect, XPath: xpath, Value: value}
}

// Click presses the element at xpath.
func Click(xpath string) Step {
	return Step{Kind: StepClick, XPath: xpath}
}

// ButtonText locates a button by its exact text content.
func ButtonText(label string) string {
	return fmt.Sprintf("//button[text()=%s]", xpathLiteral(label))
}

// Submit names the control that sends the form. When XPath is set it is
// clicked directly; otherwise the first button with type="submit" whose text
// equals Label is used.
type Submit struct {
	Label string
	XPath string
}

func (s Submit) String() string {
	if s.XPath != "" {
		return s.XPath
	}
	return fmt.Sprintf("submit button %q", s.Label)
}

// Interaction is one "fill form, submit, wait for outcome" round trip.
type Interaction struct {
	Name string
	Path string
	Role Role
	// Inputs maps an input type attribute (text, email, password) to the
	// value typed into every input of that type.
	Inputs  map[string]string
	Steps   []Step
	Submit  Submit
	Expect  Allowlist
	Timeout time.Duration
}

// xpathLiteral quotes s for use inside an XPath 1.0 expression.
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `, "'", `) + ")"
}
