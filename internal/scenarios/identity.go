package scenarios

import (
	"strings"

	"github.com/google/uuid"
)

// Identity is the account a registration or login scenario acts as.
type Identity struct {
	Name     string
	Email    string
	Password string
}

// The fixed accounts reused across runs. They stay registered in the target
// application once created, so registration accepts either outcome.
var (
	TestPatient = Identity{Name: "testpatient", Email: "testpatient@gmail.com", Password: "TestPatient123"}
	TestDoctor  = Identity{Name: "testdoctor", Email: "testdoctor@gmail.com", Password: "TestDoctor123"}
)

// FreshIdentity returns an identity that has never been registered.
func FreshIdentity() Identity {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return Identity{
		Name:     "probe" + id,
		Email:    "probe+" + id + "@example.com",
		Password: "Probe" + id + "!",
	}
}
