package role

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	toolx "github.com/tanpawarit/restaurant-voice-agent/agent/tool"
)

var catalog = map[string]action{
	toolx.UpdateName:            updateName,
	toolx.UpdatePhone:           updatePhone,
	toolx.ToGreeter:             transferTo(contractx.RoleGreeter),
	toolx.ToReservation:         transferTo(contractx.RoleReservation),
	toolx.ToTakeaway:            transferTo(contractx.RoleTakeaway),
	toolx.ToCheckout:            toCheckout,
	toolx.UpdateReservationTime: updateReservationTime,
	toolx.ConfirmReservation:    confirmReservation,
	toolx.UpdateOrder:           updateOrder,
	toolx.CheckStock:            checkStock,
	toolx.ConfirmExpense:        confirmExpense,
	toolx.UpdateCreditCard:      updateCreditCard,
	toolx.QuoteTotal:            quoteTotal,
	toolx.ConfirmCheckout:       confirmCheckout,
}

func transferTo(target contractx.RoleName) action {
	return func(context.Context, Env, string) (Outcome, error) {
		return transfer(target), nil
	}
}

func updateName(_ context.Context, env Env, raw string) (Outcome, error) {
	args, err := toolx.Decode[toolx.NameArgs](raw)
	if err != nil {
		return Outcome{}, err
	}
	name := strings.TrimSpace(args.Name)
	if name == "" {
		return reject(fmt.Sprintf(msgEmptyValue, "name")), nil
	}
	env.State.CustomerName = name
	return reply("The name is updated to %s", name), nil
}

func updatePhone(_ context.Context, env Env, raw string) (Outcome, error) {
	args, err := toolx.Decode[toolx.PhoneArgs](raw)
	if err != nil {
		return Outcome{}, err
	}
	phone := strings.TrimSpace(args.Phone)
	if phone == "" {
		return reject(fmt.Sprintf(msgEmptyValue, "phone number")), nil
	}
	env.State.CustomerPhone = phone
	return reply("The phone number is updated to %s", phone), nil
}

func updateReservationTime(_ context.Context, env Env, raw string) (Outcome, error) {
	args, err := toolx.Decode[toolx.TimeArgs](raw)
	if err != nil {
		return Outcome{}, err
	}
	at := strings.TrimSpace(args.Time)
	if at == "" {
		return reject(fmt.Sprintf(msgEmptyValue, "reservation time")), nil
	}
	env.State.ReservationTime = at
	return reply("The reservation time is updated to %s", at), nil
}

func confirmReservation(ctx context.Context, env Env, _ string) (Outcome, error) {
	st := env.State
	if !st.HasContact() {
		return reject(msgNeedContact), nil
	}
	if strings.TrimSpace(st.ReservationTime) == "" {
		return reject(msgNeedReservationTime), nil
	}

	log.Info().Str("call_id", st.CallID).Str("time", st.ReservationTime).Msg("reservation confirmed")
	env.notify(ctx, reservationNotice(st))
	return transfer(contractx.RoleGreeter), nil
}

// updateOrder replaces the whole order when every line is in stock and leaves
// the previous order untouched otherwise.
func updateOrder(_ context.Context, env Env, raw string) (Outcome, error) {
	order, err := toolx.DecodeOrder(raw)
	if err != nil {
		return reject(shortfallText(err)), nil
	}

	st := env.State
	if st.Inventory == nil {
		return reject(msgStockUnavailable), nil
	}
	resolved, err := st.Inventory.Check(order)
	if err != nil {
		log.Info().Err(err).Str("call_id", st.CallID).Msg("order rejected")
		return reject(shortfallText(err)), nil
	}

	st.ReplaceOrder(resolved)
	return reply("Đơn hàng đã cập nhật / Order updated: %s", resolved.Summary()), nil
}

func checkStock(_ context.Context, env Env, raw string) (Outcome, error) {
	args, err := toolx.Decode[toolx.StockArgs](raw)
	if err != nil {
		return Outcome{}, err
	}
	name := strings.TrimSpace(args.ItemName)
	if name == "" {
		return reject(fmt.Sprintf(msgEmptyValue, "item name")), nil
	}

	store := env.State.Inventory
	if store == nil || !store.Available() {
		return reject(msgStockUnavailable), nil
	}
	_, item, ok := store.Resolve(name)
	if !ok {
		return reject(fmt.Sprintf("Không tìm thấy '%s' trong menu / '%s' not found in menu", name, name)), nil
	}
	return reply("Còn %d %s / We have %d %s available", item.Quantity, item.Name, item.Quantity, item.Name), nil
}

func toCheckout(_ context.Context, env Env, _ string) (Outcome, error) {
	if !env.State.HasOrder() {
		return reject(msgNeedOrder), nil
	}
	return transfer(contractx.RoleCheckout), nil
}

func confirmExpense(_ context.Context, env Env, raw string) (Outcome, error) {
	args, err := toolx.Decode[toolx.ExpenseArgs](raw)
	if err != nil {
		return Outcome{}, err
	}
	if args.Expense <= 0 {
		return reject(msgPositiveExpense), nil
	}
	env.State.Expense = args.Expense
	return reply("The expense is confirmed to be %s", formatAmount(args.Expense)), nil
}

// updateCreditCard records card details as given. They are never validated.
func updateCreditCard(_ context.Context, env Env, raw string) (Outcome, error) {
	args, err := toolx.Decode[toolx.CardArgs](raw)
	if err != nil {
		return Outcome{}, err
	}
	number := strings.TrimSpace(args.Number)
	expiry := strings.TrimSpace(args.Expiry)
	cvv := strings.TrimSpace(args.CVV)
	if number == "" || expiry == "" || cvv == "" {
		return reject(msgIncompleteCard), nil
	}

	st := env.State
	st.CardNumber = number
	st.CardExpiry = expiry
	st.CardCVV = cvv
	return reply("The credit card details are updated"), nil
}

func quoteTotal(_ context.Context, env Env, _ string) (Outcome, error) {
	st := env.State
	if !st.HasOrder() {
		return reject(msgNeedOrder), nil
	}
	if st.Inventory == nil {
		return reject(msgStockUnavailable), nil
	}
	total, err := st.Inventory.Total(st.Order)
	if err != nil {
		return reject(shortfallText(err)), nil
	}
	amount := formatAmount(total)
	return reply("Tổng cộng %s VND / Total is %s VND", amount, amount), nil
}

// confirmCheckout commits the order against stock and closes the sale. Once
// the commit succeeds the sale stands: a failed persist or notification is
// logged and nothing is rolled back.
func confirmCheckout(ctx context.Context, env Env, _ string) (Outcome, error) {
	st := env.State
	if st.Expense <= 0 {
		return reject(msgNeedExpense), nil
	}
	if !st.HasContact() {
		return reject(msgNeedContact), nil
	}

	// Without an order there is nothing to deduct; the checkout still completes.
	if st.HasOrder() {
		if st.Inventory == nil {
			return reject(msgStockUnavailable), nil
		}
		res, err := st.Inventory.Commit(ctx, st.Order)
		if err != nil {
			log.Warn().Err(err).Str("call_id", st.CallID).Msg("checkout rejected at stock check")
			return reject(shortfallText(err)), nil
		}
		if res.PersistErr != nil {
			st.PendingPersist = true
			log.Error().Err(res.PersistErr).Str("call_id", st.CallID).Msg("checkout completed but inventory was not persisted")
		}
	} else {
		log.Warn().Str("call_id", st.CallID).Msg("checkout confirmed without an order, skipping stock deduction")
	}

	st.CheckedOut = true
	log.Info().Str("call_id", st.CallID).Str("order", st.Order.Summary()).Msg("checkout completed")
	env.notify(ctx, checkoutNotice(st))
	return transfer(contractx.RoleGreeter), nil
}
