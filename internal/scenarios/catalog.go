// Package scenarios holds the clinic flows the probe knows how to exercise.
package scenarios

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicflow/uiprobe/internal/driver"
)

// Scenario is one end-to-end check. Each scenario gets a page of its own.
type Scenario struct {
	Name        string
	Description string
	run         func(ctx context.Context, d *driver.Driver, page driver.Page) error
}

// Run executes the scenario on page.
func (s Scenario) Run(ctx context.Context, d *driver.Driver, page driver.Page) error {
	return s.run(ctx, d, page)
}

// Catalog returns every scenario in execution order. Registrations come
// before the logins that depend on them.
func Catalog() []Scenario {
	return []Scenario{
		{
			Name:        "patient-register",
			Description: "register the test patient; accepts an existing account",
			run:         single(Register("patient-register", driver.RolePatient, TestPatient)),
		},
		{
			Name:        "doctor-register",
			Description: "register the test doctor; accepts an existing account",
			run:         single(Register("doctor-register", driver.RoleDoctor, TestDoctor)),
		},
		{
			Name:        "patient-login",
			Description: "log in as the test patient",
			run:         single(Login("patient-login", TestPatient)),
		},
		{
			Name:        "doctor-login",
			Description: "log in as the test doctor",
			run:         single(Login("doctor-login", TestDoctor)),
		},
		{
			Name:        "fresh-register",
			Description: "register a never-used identity, then register it again",
			run:         freshRegister,
		},
		{
			Name:        "doctor-profile-change",
			Description: "sign in as the test doctor and update the profile",
			run:         asDoctor(DoctorProfileChange()),
		},
		{
			Name:        "prescription-submit",
			Description: "sign in as the test doctor and submit a prescription",
			run:         asDoctor(PrescriptionSubmit()),
		},
	}
}

// Select returns the named scenarios in the order given, or the whole
// catalog when names is empty.
func Select(names []string) ([]Scenario, error) {
	all := Catalog()
	if len(names) == 0 {
		return all, nil
	}

	byName := make(map[string]Scenario, len(all))
	for _, s := range all {
		byName[s.Name] = s
	}

	selected := make([]Scenario, 0, len(names))
	var unknown []string
	for _, name := range names {
		s, ok := byName[name]
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		selected = append(selected, s)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown scenario(s): %s", strings.Join(unknown, ", "))
	}
	return selected, nil
}

func single(in driver.Interaction) func(context.Context, *driver.Driver, driver.Page) error {
	return func(ctx context.Context, d *driver.Driver, page driver.Page) error {
		_, err := d.Run(ctx, page, in)
		return err
	}
}

// freshRegister checks both registration outcomes exactly: a new identity
// signs up, and the same identity submitted again already exists.
func freshRegister(ctx context.Context, d *driver.Driver, page driver.Page) error {
	id := FreshIdentity()

	first := Register("fresh-register", driver.RolePatient, id)
	first.Expect = driver.Allowlist{SignedUp}
	if _, err := d.Run(ctx, page, first); err != nil {
		return err
	}

	again := Register("fresh-register-again", driver.RolePatient, id)
	again.Expect = driver.Allowlist{UserExists}
	_, err := d.Run(ctx, page, again)
	return err
}

func asDoctor(in driver.Interaction) func(context.Context, *driver.Driver, driver.Page) error {
	return func(ctx context.Context, d *driver.Driver, page driver.Page) error {
		if err := LoginOrRegister(ctx, d, page, driver.RoleDoctor, TestDoctor); err != nil {
			return fmt.Errorf("%s: sign-in precondition: %w", in.Name, err)
		}
		_, err := d.Run(ctx, page, in)
		return err
	}
}

// LoginOrRegister leaves page signed in as id. It registers first and falls
// back to logging in when the account already exists.
func LoginOrRegister(ctx context.Context, d *driver.Driver, page driver.Page, role driver.Role, id Identity) error {
	out, err := d.Run(ctx, page, Register(strings.ToLower(string(role))+"-register", role, id))
	if err != nil {
		return err
	}
	if out.Text != UserExists {
		return nil
	}
	_, err = d.Run(ctx, page, Login(strings.ToLower(string(role))+"-login", id))
	return err
}
