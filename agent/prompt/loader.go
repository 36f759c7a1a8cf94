package prompt

import (
	_ "embed"
	"strings"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

var (
	//go:embed template/greeter.txt
	greeterRaw string

	//go:embed template/reservation.txt
	reservationRaw string

	//go:embed template/takeaway.txt
	takeawayRaw string

	//go:embed template/checkout.txt
	checkoutRaw string

	//go:embed template/language.txt
	languageRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Greeter      string
	Reservation  string
	Takeaway     string
	Checkout     string
	LanguageRule string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Greeter:      strings.TrimSpace(greeterRaw),
		Reservation:  strings.TrimSpace(reservationRaw),
		Takeaway:     strings.TrimSpace(takeawayRaw),
		Checkout:     strings.TrimSpace(checkoutRaw),
		LanguageRule: strings.TrimSpace(languageRaw),
	}
}

// Instructions renders the static instructions for a role with the menu
// substituted. Unknown roles yield an empty string.
func (p PromptSet) Instructions(role contractx.RoleName, menu string) string {
	var raw string
	switch role {
	case contractx.RoleGreeter:
		raw = p.Greeter
	case contractx.RoleReservation:
		raw = p.Reservation
	case contractx.RoleTakeaway:
		raw = p.Takeaway
	case contractx.RoleCheckout:
		raw = p.Checkout
	}
	return strings.ReplaceAll(raw, "{menu}", strings.TrimSpace(menu))
}
