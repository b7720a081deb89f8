package driver

import (
	"errors"
	"fmt"
	"strings"
)

// Failure messages shared by every scenario.
const (
	MsgNoAlert        = "No alert found"
	MsgIncorrectAlert = "Incorrect alert"
)

// AssertionError fails a scenario. A missing dialog and a dialog outside the
// allow-list are both reported with this type; callers that need to tell them
// apart inspect Text, which is empty when no dialog was seen.
type AssertionError struct {
	Scenario string
	Reached  State
	Text     string
	Msg      string
}

func (e *AssertionError) Error() string {
	var b strings.Builder
	if e.Scenario != "" {
		b.WriteString(e.Scenario)
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Text != "" {
		fmt.Fprintf(&b, " (dialog %q)", e.Text)
	}
	fmt.Fprintf(&b, " [%s]", e.Reached)
	return b.String()
}

// IsAssertion reports whether err carries an AssertionError.
func IsAssertion(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}
