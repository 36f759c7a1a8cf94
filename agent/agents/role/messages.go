package role

import (
	"errors"
	"fmt"
	"strconv"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	inventoryx "github.com/tanpawarit/restaurant-voice-agent/agent/inventory"
	statex "github.com/tanpawarit/restaurant-voice-agent/agent/state"
)

const (
	msgNeedContact         = "Please provide your name and phone number first."
	msgNeedReservationTime = "Please provide reservation time first."
	msgNeedOrder           = "No takeaway order found. Please make an order first."
	msgNeedExpense         = "Please confirm the expense first."
	msgPositiveExpense     = "The expense must be a positive amount."
	msgEmptyValue          = "The %s must not be empty."
	msgIncompleteCard      = "Please provide the card number, expiry date and cvv."

	msgStockUnavailable = "Lỗi hệ thống: không thể kiểm tra tồn kho / System error: cannot verify stock right now"
)

// shortfallText turns an availability failure into the sentence spoken to
// the caller. Only one failing line is ever named.
func shortfallText(err error) string {
	var sf *inventoryx.ShortfallError
	switch {
	case errors.Is(err, contractx.ErrInventoryUnavailable):
		return msgStockUnavailable
	case errors.As(err, &sf) && sf.NotFound:
		return fmt.Sprintf("Sản phẩm '%s' không có trong menu / Item '%s' is not in the menu", sf.Item, sf.Item)
	case errors.As(err, &sf):
		return fmt.Sprintf("Xin lỗi, chỉ còn %d %s, không đủ %d / Sorry, only %d %s available, not enough for %d",
			sf.Available, sf.Item, sf.Requested, sf.Available, sf.Item, sf.Requested)
	default:
		return fmt.Sprintf("Đơn hàng không hợp lệ / Invalid order: %v", err)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func reservationNotice(st *statex.CallState) string {
	return fmt.Sprintf("New reservation\nName: %s\nPhone: %s\nTime: %s",
		st.CustomerName, st.CustomerPhone, st.ReservationTime)
}

func checkoutNotice(st *statex.CallState) string {
	return fmt.Sprintf("New takeaway order\nName: %s\nPhone: %s\nItems: %s\nTotal: %s VND",
		st.CustomerName, st.CustomerPhone, st.Order.Summary(), formatAmount(st.Expense))
}
