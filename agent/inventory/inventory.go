package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

// MenuItem is the durable record for one sellable item.
type MenuItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// Entry pairs a key with its item.
type Entry struct {
	Key  string
	Item MenuItem
}

// Inventory keeps items in insertion order so fuzzy resolution is
// reproducible across loads.
type Inventory struct {
	keys  []string
	items map[string]*MenuItem
}

func New() *Inventory {
	return &Inventory{items: make(map[string]*MenuItem, 8)}
}

// Put inserts or replaces an item under the normalized key.
func (inv *Inventory) Put(key string, item MenuItem) error {
	k := Normalize(key)
	if k == "" {
		return fmt.Errorf("%w: inventory key is empty", contractx.ErrValidation)
	}
	if item.Quantity < 0 {
		return fmt.Errorf("%w: quantity for %q is negative", contractx.ErrValidation, k)
	}
	if inv.items == nil {
		inv.items = make(map[string]*MenuItem, 8)
	}
	if _, ok := inv.items[k]; !ok {
		inv.keys = append(inv.keys, k)
	}
	cp := item
	inv.items[k] = &cp
	return nil
}

func (inv *Inventory) Len() int {
	if inv == nil {
		return 0
	}
	return len(inv.keys)
}

func (inv *Inventory) IsEmpty() bool {
	return inv.Len() == 0
}

func (inv *Inventory) Keys() []string {
	if inv == nil {
		return nil
	}
	out := make([]string, len(inv.keys))
	copy(out, inv.keys)
	return out
}

func (inv *Inventory) Item(key string) (MenuItem, bool) {
	if inv == nil {
		return MenuItem{}, false
	}
	it, ok := inv.items[key]
	if !ok {
		return MenuItem{}, false
	}
	return *it, true
}

func (inv *Inventory) Entries() []Entry {
	if inv == nil {
		return nil
	}
	out := make([]Entry, 0, len(inv.keys))
	for _, k := range inv.keys {
		out = append(out, Entry{Key: k, Item: *inv.items[k]})
	}
	return out
}

func (inv *Inventory) Clone() *Inventory {
	out := New()
	if inv == nil {
		return out
	}
	out.keys = make([]string, len(inv.keys))
	copy(out.keys, inv.keys)
	for k, it := range inv.items {
		cp := *it
		out.items[k] = &cp
	}
	return out
}

// Resolve maps a free-form name to a key: exact match, then substring in
// either direction, then prefix in either direction on separator-free forms.
// Keys are tried in insertion order; the first hit wins.
func (inv *Inventory) Resolve(raw string) (string, bool) {
	if inv.IsEmpty() {
		return "", false
	}
	name := Normalize(raw)
	if name == "" {
		return "", false
	}
	if _, ok := inv.items[name]; ok {
		return name, true
	}
	for _, key := range inv.keys {
		if strings.Contains(key, name) || strings.Contains(name, key) {
			return key, true
		}
	}
	short := compact(name)
	if short == "" {
		return "", false
	}
	for _, key := range inv.keys {
		ck := compact(key)
		if ck == "" {
			continue
		}
		if strings.HasPrefix(ck, short) || strings.HasPrefix(short, ck) {
			return key, true
		}
	}
	return "", false
}

// CheckAvailability resolves every line and verifies stock without mutating
// anything. The returned order is keyed by inventory key, with lines that
// resolve to the same key summed. The first failing line (by sorted name,
// then by inventory order) is reported.
func (inv *Inventory) CheckAvailability(order Order) (Order, error) {
	if inv.IsEmpty() {
		return nil, contractx.ErrInventoryUnavailable
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}

	resolved := make(Order, len(order))
	for _, name := range order.Names() {
		key, ok := inv.Resolve(name)
		if !ok {
			return nil, &ShortfallError{Item: name, NotFound: true, Requested: order[name]}
		}
		resolved[key] += order[name]
	}

	for _, key := range inv.keys {
		qty, ok := resolved[key]
		if !ok {
			continue
		}
		it := inv.items[key]
		if it.Quantity < qty {
			return nil, &ShortfallError{Item: it.Name, Available: it.Quantity, Requested: qty}
		}
	}
	return resolved, nil
}

// DeductReport describes what a deduction actually did.
type DeductReport struct {
	Applied Order
	Skipped []string
	Clamped []string
}

// Deduct subtracts each resolvable line from stock. Unresolvable lines are
// skipped. A line larger than the remaining stock clamps the quantity to zero
// rather than going negative.
func (inv *Inventory) Deduct(order Order) DeductReport {
	report := DeductReport{Applied: make(Order, len(order))}
	if inv.IsEmpty() {
		report.Skipped = order.Names()
		return report
	}
	for _, name := range order.Names() {
		key, ok := inv.Resolve(name)
		if !ok {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		it := inv.items[key]
		qty := order[name]
		if qty > it.Quantity {
			report.Clamped = append(report.Clamped, key)
			qty = it.Quantity
		}
		it.Quantity -= qty
		report.Applied[key] += qty
	}
	return report
}

// Total prices an order. Unresolvable lines are an error.
func (inv *Inventory) Total(order Order) (float64, error) {
	if inv.IsEmpty() {
		return 0, contractx.ErrInventoryUnavailable
	}
	var total float64
	for _, name := range order.Names() {
		key, ok := inv.Resolve(name)
		if !ok {
			return 0, &ShortfallError{Item: name, NotFound: true, Requested: order[name]}
		}
		total += inv.items[key].Price * float64(order[name])
	}
	return total, nil
}

func (inv *Inventory) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	if inv != nil {
		for i, k := range inv.keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(k)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(inv.items[k])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON keeps the document's key order. Two keys that normalize to
// the same key make the document invalid.
func (inv *Inventory) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("inventory document must be a JSON object")
	}

	out := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected inventory key token %v", tok)
		}
		var item MenuItem
		if err := dec.Decode(&item); err != nil {
			return fmt.Errorf("decode item %q: %w", key, err)
		}
		if _, dup := out.items[Normalize(key)]; dup {
			return fmt.Errorf("%w: inventory key %q collides with an earlier key after normalization", contractx.ErrValidation, key)
		}
		if err := out.Put(key, item); err != nil {
			return err
		}
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	inv.keys = out.keys
	inv.items = out.items
	return nil
}
