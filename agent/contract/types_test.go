package contract

import "testing"

func TestRoleNameValid(t *testing.T) {
	t.Parallel()

	for _, r := range Roles {
		if !r.Valid() {
			t.Fatalf("%s should be valid", r)
		}
	}
	for _, r := range []RoleName{"", "kitchen", "Greeter"} {
		if r.Valid() {
			t.Fatalf("%q should be invalid", r)
		}
	}
}
