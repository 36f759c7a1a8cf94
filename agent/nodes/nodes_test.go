package orchestratornode

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

type fakeConversation struct {
	started   bool
	role      contractx.RoleName
	replies   []*schema.Message
	withTools []bool
	executed  []string
	skipped   []string
	transfers map[string]contractx.RoleName
	entered   int
}

func (f *fakeConversation) Started() bool                  { return f.started }
func (f *fakeConversation) ActiveRole() contractx.RoleName { return f.role }
func (f *fakeConversation) Record(string, string)          {}

func (f *fakeConversation) Generate(_ context.Context, withTools bool) (*schema.Message, error) {
	f.withTools = append(f.withTools, withTools)
	if len(f.replies) == 0 {
		return nil, errors.New("no reply left")
	}
	msg := f.replies[0]
	f.replies = f.replies[1:]
	return msg, nil
}

func (f *fakeConversation) Execute(_ context.Context, call schema.ToolCall) ToolOutcome {
	f.executed = append(f.executed, call.Function.Name)
	if to, ok := f.transfers[call.Function.Name]; ok {
		f.role = to
		return ToolOutcome{Text: "Transferring to " + string(to) + ".", Transfer: to}
	}
	return ToolOutcome{Text: "ok"}
}

func (f *fakeConversation) Skip(call schema.ToolCall, _ string) {
	f.skipped = append(f.skipped, call.Function.Name)
}

func (f *fakeConversation) Enter(context.Context) (string, error) {
	f.entered++
	return "Hi from " + string(f.role), nil
}

func toolCall(id, name string) schema.ToolCall {
	return schema.ToolCall{ID: id, Function: schema.FunctionCall{Name: name, Arguments: "{}"}}
}

func TestValidateTurn(t *testing.T) {
	t.Parallel()

	now := func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	_, err := ValidateTurn(GraphInput{Utterance: contractx.Utterance{Text: "hi"}}, &fakeConversation{}, now)
	if !errors.Is(err, ErrNotStarted) {
		t.Fatalf("expected ErrNotStarted, got %v", err)
	}

	conv := &fakeConversation{started: true, role: contractx.RoleGreeter}
	_, err = ValidateTurn(GraphInput{Utterance: contractx.Utterance{Text: "   "}}, conv, now)
	if !errors.Is(err, ErrInvalidUtterance) {
		t.Fatalf("expected ErrInvalidUtterance, got %v", err)
	}

	st, err := ValidateTurn(GraphInput{Utterance: contractx.Utterance{Text: " Xin chào ", Language: "vi"}}, conv, now)
	if err != nil {
		t.Fatalf("ValidateTurn() error = %v", err)
	}
	if st.Text != "Xin chào" || st.Language != "vi" || st.Role != contractx.RoleGreeter {
		t.Fatalf("unexpected state: %#v", st)
	}
}

func TestRunToolsStopsOnPlainReply(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{
		started: true,
		role:    contractx.RoleTakeaway,
		replies: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{toolCall("c1", "check_stock")}),
			schema.AssistantMessage("We have 4 left.", nil),
		},
	}

	st, err := RunTools(context.Background(), &GraphState{Role: conv.role}, conv, 5)
	if err != nil {
		t.Fatalf("RunTools() error = %v", err)
	}
	if st.Message != "We have 4 left." || st.Steps != 2 {
		t.Fatalf("unexpected state: %#v", st)
	}
	if Route(st) != NodeDirectReply {
		t.Fatalf("unexpected route: %s", Route(st))
	}
}

func TestRunToolsSkipsCallsAfterTransfer(t *testing.T) {
	t.Parallel()

	conv := &fakeConversation{
		started: true,
		role:    contractx.RoleTakeaway,
		replies: []*schema.Message{
			schema.AssistantMessage("", []schema.ToolCall{
				toolCall("c1", "to_checkout"),
				toolCall("c2", "check_stock"),
			}),
		},
		transfers: map[string]contractx.RoleName{"to_checkout": contractx.RoleCheckout},
	}

	st, err := RunTools(context.Background(), &GraphState{Role: conv.role}, conv, 5)
	if err != nil {
		t.Fatalf("RunTools() error = %v", err)
	}
	if st.Transfer != contractx.RoleCheckout || Route(st) != NodeHandoffReply {
		t.Fatalf("unexpected state: %#v", st)
	}
	if len(conv.executed) != 1 || len(conv.skipped) != 1 || conv.skipped[0] != "check_stock" {
		t.Fatalf("executed=%v skipped=%v", conv.executed, conv.skipped)
	}

	out, err := HandoffReply(context.Background(), st, conv)
	if err != nil {
		t.Fatalf("HandoffReply() error = %v", err)
	}
	if out.Reply != "Transferring to checkout. Hi from checkout" || out.Role != contractx.RoleCheckout {
		t.Fatalf("unexpected output: %#v", out)
	}
}

func TestRunToolsCapsSteps(t *testing.T) {
	t.Parallel()

	loop := schema.AssistantMessage("", []schema.ToolCall{toolCall("c", "check_stock")})
	conv := &fakeConversation{
		started: true,
		role:    contractx.RoleTakeaway,
		replies: []*schema.Message{loop, loop, schema.AssistantMessage("Done.", nil)},
	}

	st, err := RunTools(context.Background(), &GraphState{Role: conv.role}, conv, 2)
	if err != nil {
		t.Fatalf("RunTools() error = %v", err)
	}
	if st.Message != "Done." {
		t.Fatalf("unexpected message: %q", st.Message)
	}
	want := []bool{true, true, false}
	for i, w := range want {
		if conv.withTools[i] != w {
			t.Fatalf("generate %d withTools=%v, want %v", i, conv.withTools[i], w)
		}
	}
}

func TestFinalizeReplyRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := FinalizeReply(&GraphState{Message: "  "}, &fakeConversation{})
	if !errors.Is(err, contractx.ErrSchemaViolation) {
		t.Fatalf("expected ErrSchemaViolation, got %v", err)
	}
}
