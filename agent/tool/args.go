package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	inventoryx "github.com/tanpawarit/restaurant-voice-agent/agent/inventory"
)

type NameArgs struct {
	Name string `json:"name"`
}

type PhoneArgs struct {
	Phone string `json:"phone"`
}

type TimeArgs struct {
	Time string `json:"time"`
}

type StockArgs struct {
	ItemName string `json:"item_name"`
}

type ExpenseArgs struct {
	Expense float64 `json:"expense"`
}

type CardArgs struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type orderArgs struct {
	Items map[string]float64 `json:"items"`
}

// Decode parses raw tool-call arguments. Empty input decodes to the zero value.
func Decode[T any](raw string) (T, error) {
	var out T
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, fmt.Errorf("%w: invalid tool arguments: %v", contractx.ErrValidation, err)
	}
	return out, nil
}

// DecodeOrder parses update_order arguments. Models sometimes emit 2.0 for 2,
// so numbers are read as floats and accepted only when they are whole and
// positive.
func DecodeOrder(raw string) (inventoryx.Order, error) {
	args, err := Decode[orderArgs](raw)
	if err != nil {
		return nil, err
	}
	if len(args.Items) == 0 {
		return nil, fmt.Errorf("%w: order has no items", contractx.ErrValidation)
	}

	order := make(inventoryx.Order, len(args.Items))
	for name, qty := range args.Items {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: order has an empty item name", contractx.ErrValidation)
		}
		if qty <= 0 || qty != math.Trunc(qty) || qty > math.MaxInt32 {
			return nil, fmt.Errorf("%w: quantity for %q must be a positive whole number", contractx.ErrValidation, name)
		}
		order[name] += int(qty)
	}
	return order, nil
}
