package state

import (
	"strings"
	"testing"
	"time"

	inventoryx "github.com/tanpawarit/restaurant-voice-agent/agent/inventory"
	"gopkg.in/yaml.v3"
)

func TestSummarizeUnknownDefaults(t *testing.T) {
	t.Parallel()

	st := NewCallState("call-1", nil, time.Now())
	var got map[string]any
	if err := yaml.Unmarshal([]byte(st.Summarize()), &got); err != nil {
		t.Fatalf("summary is not yaml: %v", err)
	}
	for _, key := range []string{"customer_name", "customer_phone", "reservation_time", "order", "expense"} {
		if got[key] != "unknown" {
			t.Fatalf("%s = %v, want unknown", key, got[key])
		}
	}
	if got["credit_card"] != nil {
		t.Fatalf("credit_card = %v, want nil", got["credit_card"])
	}
	if got["checked_out"] != false {
		t.Fatalf("checked_out = %v, want false", got["checked_out"])
	}
}

func TestSummarizeMasksCard(t *testing.T) {
	t.Parallel()

	st := NewCallState("call-2", nil, time.Now())
	st.CustomerName = "Lan"
	st.Order = inventoryx.Order{"pizza": 3}
	st.CardNumber = "4111 1111 1111 1234"
	st.CardExpiry = "12/27"
	st.CardCVV = "999"
	st.Expense = 30

	out := st.Summarize()
	if strings.Contains(out, "4111") || strings.Contains(out, "999") {
		t.Fatalf("summary leaks card data:\n%s", out)
	}
	if !strings.Contains(out, "************1234") {
		t.Fatalf("summary missing masked card:\n%s", out)
	}
	if !strings.Contains(out, "pizza: 3") || !strings.Contains(out, "expense: 30") {
		t.Fatalf("summary missing order or expense:\n%s", out)
	}
}

func TestReplaceOrderIsWholesale(t *testing.T) {
	t.Parallel()

	st := NewCallState("call-3", nil, time.Now())
	first := inventoryx.Order{"pizza": 5, "coffee": 2}
	st.ReplaceOrder(first)
	st.ReplaceOrder(inventoryx.Order{"pizza": 1})

	if len(st.Order) != 1 || st.Order["pizza"] != 1 {
		t.Fatalf("order = %#v, want only pizza:1", st.Order)
	}
	first["salad"] = 1
	if _, ok := st.Order["salad"]; ok {
		t.Fatal("stored order aliases caller map")
	}
}

func TestHasContact(t *testing.T) {
	t.Parallel()

	st := NewCallState("call-4", nil, time.Now())
	st.CustomerName = "Lan"
	if st.HasContact() {
		t.Fatal("expected missing phone to fail contact check")
	}
	st.CustomerPhone = "0901234567"
	if !st.HasContact() {
		t.Fatal("expected contact to be complete")
	}
}
