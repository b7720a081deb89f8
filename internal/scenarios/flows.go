package scenarios

import (
	"github.com/clinicflow/uiprobe/internal/driver"
)

// Dialog texts the clinic application answers with.
const (
	SignedUp          = "signed up successfully"
	UserExists        = "User already exists"
	LoggedIn          = "Logged in successfully"
	ProfileUpdated    = "Profile updated successfully"
	ProfileError      = "Error updating profile"
	PrescriptionAdded = "Prescription added successfully"
	PrescriptionError = "Error adding prescription"
)

// Register builds the sign-up interaction for id under role.
func Register(name string, role driver.Role, id Identity) driver.Interaction {
	return driver.Interaction{
		Name: name,
		Path: "/register",
		Role: role,
		Inputs: map[string]string{
			"text":     id.Name,
			"email":    id.Email,
			"password": id.Password,
		},
		Submit: driver.Submit{Label: "Submit"},
		Expect: driver.Allowlist{UserExists, SignedUp},
	}
}

// Login builds the sign-in interaction for id.
func Login(name string, id Identity) driver.Interaction {
	return driver.Interaction{
		Name: name,
		Path: "/login",
		Inputs: map[string]string{
			"email":    id.Email,
			"password": id.Password,
		},
		Submit: driver.Submit{Label: "Login"},
		Expect: driver.Allowlist{LoggedIn},
	}
}

// DoctorProfileChange fills every section of the doctor profile form,
// including one consultation slot.
func DoctorProfileChange() driver.Interaction {
	return driver.Interaction{
		Name: "doctor-profile-change",
		Path: "/profile-change-doctor",
		Steps: []driver.Step{
			driver.FillPlaceholder("input", "Enter qualification...", "MBBS, MD"),
			driver.Check("Cardiology", "Neurology"),
			driver.FillPlaceholder("input", "Enter experience...", "10"),
			driver.FillPlaceholder("textarea", "Enter a brief description...",
				"Experienced doctor specializing in cardiology and neurology."),
			driver.Select("//select", "Male"),
			driver.Click(driver.ButtonText("Add Slot")),
			driver.FillPlaceholder("input", "Starting time (e.g. 9am)", "9am"),
			driver.FillPlaceholder("input", "Ending time (e.g. 12pm)", "12pm"),
			driver.FillPlaceholder("input", "Capacity", "10"),
		},
		Submit: driver.Submit{XPath: driver.ButtonText("Submit")},
		Expect: driver.Allowlist{ProfileUpdated, ProfileError},
	}
}

// PrescriptionSubmit files a prescription from the appointments page.
func PrescriptionSubmit() driver.Interaction {
	return driver.Interaction{
		Name: "prescription-submit",
		Path: "/appointments",
		Steps: []driver.Step{
			driver.FillPlaceholder("input", "Enter patient name", "John Doe"),
			driver.FillPlaceholder("input", "Enter patient age", "45"),
			driver.Select("//select[@id='patient-gender']", "Male"),
			driver.FillPlaceholder("textarea", "Enter prescription notes",
				"Take aspirin once daily. Avoid fatty foods."),
		},
		Submit: driver.Submit{XPath: driver.ButtonText("Submit")},
		Expect: driver.Allowlist{PrescriptionAdded, PrescriptionError},
	}
}
