package inventory

import (
	"fmt"
	"sort"
	"strings"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

// Order maps an item reference to a positive requested quantity.
type Order map[string]int

// Names returns the order's item references sorted for deterministic walks.
func (o Order) Names() []string {
	names := make([]string, 0, len(o))
	for name := range o {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (o Order) Clone() Order {
	if o == nil {
		return nil
	}
	out := make(Order, len(o))
	for k, v := range o {
		out[k] = v
	}
	return out
}

func (o Order) IsEmpty() bool {
	return len(o) == 0
}

func (o Order) Validate() error {
	if len(o) == 0 {
		return fmt.Errorf("%w: order is empty", contractx.ErrValidation)
	}
	for name, qty := range o {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: order has an empty item name", contractx.ErrValidation)
		}
		if qty <= 0 {
			return fmt.Errorf("%w: quantity for %q must be positive", contractx.ErrValidation, name)
		}
	}
	return nil
}

// Summary renders "3x pizza, 1x coffee".
func (o Order) Summary() string {
	parts := make([]string, 0, len(o))
	for _, name := range o.Names() {
		parts = append(parts, fmt.Sprintf("%dx %s", o[name], name))
	}
	return strings.Join(parts, ", ")
}
