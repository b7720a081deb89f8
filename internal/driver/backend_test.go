package driver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exerciseBackend runs the interaction protocol against a real browser
// through newPage and the clinic fixture.
func exerciseBackend(t *testing.T, newPage func(t *testing.T) Page) {
	fixture := newClinicFixture(t)
	d := New(fixture.URL, 3*time.Second, nil)
	ctx := context.Background()

	register := Interaction{
		Name: "doctor-register",
		Path: "/register",
		Role: RoleDoctor,
		Inputs: map[string]string{
			"text":     "testdoctor",
			"email":    "testdoctor@gmail.com",
			"password": "TestDoctor123",
		},
		Submit: Submit{Label: "Submit"},
		Expect: Allowlist{"signed up successfully"},
	}

	t.Run("fresh then duplicate registration", func(t *testing.T) {
		page := newPage(t)

		out, err := d.Run(ctx, page, register)
		require.NoError(t, err)
		assert.Equal(t, "signed up successfully", out.Text)
		assert.Equal(t, "Doctor", fixture.roleOf("testdoctor@gmail.com"))

		// The dialog was accepted, so the same page takes the next submit.
		again := register
		again.Expect = Allowlist{"User already exists"}
		out, err = d.Run(ctx, page, again)
		require.NoError(t, err)
		assert.Equal(t, "User already exists", out.Text)
	})

	t.Run("profile form steps", func(t *testing.T) {
		page := newPage(t)

		out, err := d.Run(ctx, page, Interaction{
			Name: "doctor-profile-change",
			Path: "/profile-change-doctor",
			Steps: []Step{
				FillPlaceholder("input", "Enter qualification...", "MBBS, MD"),
				Check("Cardiology", "Neurology"),
				FillPlaceholder("textarea", "Enter a brief description...", "Experienced doctor."),
				Select("//select", "Male"),
				Click(ButtonText("Add Slot")),
				FillPlaceholder("input", "Capacity", "10"),
			},
			Submit: Submit{XPath: ButtonText("Submit")},
			Expect: Allowlist{"Profile updated successfully"},
		})
		require.NoError(t, err)
		assert.Equal(t, StatePassed, out.State)
	})

	t.Run("no alert", func(t *testing.T) {
		page := newPage(t)

		_, err := d.Run(ctx, page, Interaction{
			Name:    "patient-login",
			Path:    "/login",
			Inputs:  map[string]string{"email": "testpatient@gmail.com"},
			Submit:  Submit{Label: "Login"},
			Expect:  Allowlist{"Logged in successfully"},
			Timeout: 500 * time.Millisecond,
		})

		var ae *AssertionError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, MsgNoAlert, ae.Msg)
	})
}
