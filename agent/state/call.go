package state

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	inventoryx "github.com/tanpawarit/restaurant-voice-agent/agent/inventory"
	"gopkg.in/yaml.v3"
)

// CallState is the single mutable record shared by every role during one
// call. It is owned by the call and touched by one action at a time.
type CallState struct {
	CallID string

	CustomerName    string
	CustomerPhone   string
	ReservationTime string

	// Order is replaced wholesale on every update; it is never merged.
	Order inventoryx.Order

	CardNumber string
	CardExpiry string
	CardCVV    string

	Expense    float64
	CheckedOut bool

	// PendingPersist is set when a checkout deducted stock that did not
	// reach the durable store.
	PendingPersist bool

	PrevRole contractx.RoleName
	Language string

	Inventory *inventoryx.Store

	StartedAt time.Time
}

func NewCallState(callID string, store *inventoryx.Store, now time.Time) *CallState {
	return &CallState{
		CallID:    callID,
		Inventory: store,
		StartedAt: now.UTC(),
	}
}

func (s *CallState) HasOrder() bool {
	return s != nil && !s.Order.IsEmpty()
}

func (s *CallState) HasContact() bool {
	return s != nil && strings.TrimSpace(s.CustomerName) != "" && strings.TrimSpace(s.CustomerPhone) != ""
}

func (s *CallState) ReplaceOrder(order inventoryx.Order) {
	s.Order = order.Clone()
}

type cardSummary struct {
	Number string `yaml:"number"`
	Expiry string `yaml:"expiry"`
	CVV    string `yaml:"cvv"`
}

type summary struct {
	CustomerName    string       `yaml:"customer_name"`
	CustomerPhone   string       `yaml:"customer_phone"`
	ReservationTime string       `yaml:"reservation_time"`
	Order           any          `yaml:"order"`
	CreditCard      *cardSummary `yaml:"credit_card"`
	Expense         any          `yaml:"expense"`
	CheckedOut      bool         `yaml:"checked_out"`
	Language        string       `yaml:"last_user_language,omitempty"`
}

// Summarize renders the state as YAML for the instructions item injected on
// every handoff. Card number and cvv are masked.
func (s *CallState) Summarize() string {
	sum := summary{
		CustomerName:    orUnknown(s.CustomerName),
		CustomerPhone:   orUnknown(s.CustomerPhone),
		ReservationTime: orUnknown(s.ReservationTime),
		Order:           "unknown",
		Expense:         "unknown",
		CheckedOut:      s.CheckedOut,
		Language:        s.Language,
	}
	if s.HasOrder() {
		sum.Order = map[string]int(s.Order)
	}
	if s.Expense > 0 {
		sum.Expense = s.Expense
	}
	if strings.TrimSpace(s.CardNumber) != "" {
		sum.CreditCard = &cardSummary{
			Number: maskCard(s.CardNumber),
			Expiry: orUnknown(s.CardExpiry),
			CVV:    mask(s.CardCVV),
		}
	}

	out, err := yaml.Marshal(sum)
	if err != nil {
		return fmt.Sprintf("customer_name: %s\n", sum.CustomerName)
	}
	return string(out)
}

func orUnknown(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return v
}

func maskCard(number string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if len(digits) <= 4 {
		return digits
	}
	return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
}

func mask(v string) string {
	if strings.TrimSpace(v) == "" {
		return "unknown"
	}
	return "***"
}
