package tool

import (
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

const (
	UpdateName            = "update_name"
	UpdatePhone           = "update_phone"
	ToGreeter             = "to_greeter"
	ToReservation         = "to_reservation"
	ToTakeaway            = "to_takeaway"
	ToCheckout            = "to_checkout"
	UpdateReservationTime = "update_reservation_time"
	ConfirmReservation    = "confirm_reservation"
	UpdateOrder           = "update_order"
	CheckStock            = "check_stock"
	ConfirmExpense        = "confirm_expense"
	UpdateCreditCard      = "update_credit_card"
	QuoteTotal            = "quote_total"
	ConfirmCheckout       = "confirm_checkout"
)

var infos = map[string]*schema.ToolInfo{
	UpdateName: {
		Name: UpdateName,
		Desc: "Called when the user provides their name. Confirm the spelling with the user before calling the function.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"name": {Type: schema.String, Desc: "The customer name", Required: true},
		}),
	},
	UpdatePhone: {
		Name: UpdatePhone,
		Desc: "Called when the user provides their phone number. Confirm the number with the user before calling the function.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"phone": {Type: schema.String, Desc: "The customer phone number", Required: true},
		}),
	},
	ToGreeter: {
		Name: ToGreeter,
		Desc: "Called when the user asks any unrelated question or requests any other service not in your job description.",
	},
	ToReservation: {
		Name: ToReservation,
		Desc: "Called when the user wants to make or update a reservation.",
	},
	ToTakeaway: {
		Name: ToTakeaway,
		Desc: "Called when the user wants to place or revise a takeaway order.",
	},
	ToCheckout: {
		Name: ToCheckout,
		Desc: "Called when the user confirms the order and wants to pay.",
	},
	UpdateReservationTime: {
		Name: UpdateReservationTime,
		Desc: "Called when the user provides their reservation time. Confirm the time with the user before calling the function.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"time": {Type: schema.String, Desc: "The reservation time", Required: true},
		}),
	},
	ConfirmReservation: {
		Name: ConfirmReservation,
		Desc: "Called when the user confirms the reservation.",
	},
	UpdateOrder: {
		Name: UpdateOrder,
		Desc: "Called when the user creates or updates their order. The new order replaces the previous one entirely, so always send every item.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"items": {
				Type:     schema.Object,
				Desc:     "Item names mapped to whole quantities, e.g. {\"Pho\": 2, \"Ca phe sua da\": 1}",
				Required: true,
			},
		}),
	},
	CheckStock: {
		Name: CheckStock,
		Desc: "Called when the user asks whether an item is available or how many are left.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item_name": {Type: schema.String, Desc: "The item name to check stock for", Required: true},
		}),
	},
	ConfirmExpense: {
		Name: ConfirmExpense,
		Desc: "Called when the user confirms the total expense of the order.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"expense": {Type: schema.Number, Desc: "The expense of the order in VND", Required: true},
		}),
	},
	UpdateCreditCard: {
		Name: UpdateCreditCard,
		Desc: "Called when the user provides their credit card details.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"number": {Type: schema.String, Desc: "The card number", Required: true},
			"expiry": {Type: schema.String, Desc: "The card expiry date", Required: true},
			"cvv":    {Type: schema.String, Desc: "The card security code", Required: true},
		}),
	},
	QuoteTotal: {
		Name: QuoteTotal,
		Desc: "Called to compute the menu price of the current order before confirming the expense.",
	},
	ConfirmCheckout: {
		Name: ConfirmCheckout,
		Desc: "Called when the user confirms the checkout and completes the order.",
	},
}

var byRole = map[contractx.RoleName][]string{
	contractx.RoleGreeter:     {ToReservation, ToTakeaway},
	contractx.RoleReservation: {UpdateReservationTime, ConfirmReservation, UpdateName, UpdatePhone, ToGreeter},
	contractx.RoleTakeaway:    {UpdateOrder, CheckStock, ToCheckout, ToGreeter},
	contractx.RoleCheckout:    {ConfirmExpense, QuoteTotal, UpdateCreditCard, ConfirmCheckout, UpdateName, UpdatePhone, ToTakeaway, ToGreeter},
}

// InfosForRole returns the tool schemas a role may call, in a stable order.
func InfosForRole(role contractx.RoleName) []*schema.ToolInfo {
	names := byRole[role]
	out := make([]*schema.ToolInfo, 0, len(names))
	for _, name := range names {
		out = append(out, infos[name])
	}
	return out
}

// NamesForRole lists the tool names a role may call.
func NamesForRole(role contractx.RoleName) []string {
	return append([]string(nil), byRole[role]...)
}
