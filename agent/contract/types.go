package contract

// RoleName identifies one conversational role. The set is closed.
type RoleName string

const (
	RoleGreeter     RoleName = "greeter"
	RoleReservation RoleName = "reservation"
	RoleTakeaway    RoleName = "takeaway"
	RoleCheckout    RoleName = "checkout"
)

// Roles lists every role in registry order.
var Roles = []RoleName{RoleGreeter, RoleReservation, RoleTakeaway, RoleCheckout}

func (r RoleName) Valid() bool {
	switch r {
	case RoleGreeter, RoleReservation, RoleTakeaway, RoleCheckout:
		return true
	default:
		return false
	}
}

// Utterance is one transcribed user turn.
type Utterance struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}
