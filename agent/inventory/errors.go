package inventory

import (
	"fmt"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

// ShortfallError rejects an order line that is unknown or under-stocked.
type ShortfallError struct {
	Item      string
	NotFound  bool
	Available int
	Requested int
}

func (e *ShortfallError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("%s: %q", contractx.ErrItemNotFound, e.Item)
	}
	return fmt.Sprintf("%s: %q available=%d requested=%d", contractx.ErrInsufficientStock, e.Item, e.Available, e.Requested)
}

func (e *ShortfallError) Unwrap() error {
	if e.NotFound {
		return contractx.ErrItemNotFound
	}
	return contractx.ErrInsufficientStock
}
