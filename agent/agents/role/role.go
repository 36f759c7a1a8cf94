// Package role defines the conversational roles of a call. Every role is the
// same type; what differs is its instructions and the actions it may call.
package role

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	promptx "github.com/tanpawarit/restaurant-voice-agent/agent/prompt"
	statex "github.com/tanpawarit/restaurant-voice-agent/agent/state"
	toolx "github.com/tanpawarit/restaurant-voice-agent/agent/tool"
)

// Sender hands a business event to the notification sink without waiting.
type Sender interface {
	Send(ctx context.Context, message string)
}

// Outcome is what an action produced. A non-empty Transfer asks the caller to
// hand the call to that role; Text is then ignored. Rejected marks a guard
// or inventory refusal that left state untouched.
type Outcome struct {
	Text     string
	Transfer contractx.RoleName
	Rejected bool
}

func reply(format string, args ...any) Outcome {
	return Outcome{Text: fmt.Sprintf(format, args...)}
}

func reject(text string) Outcome {
	return Outcome{Text: text, Rejected: true}
}

func transfer(to contractx.RoleName) Outcome {
	return Outcome{Transfer: to}
}

// Env is what an action may touch: the call's state and the notifier.
type Env struct {
	State    *statex.CallState
	Notifier Sender
}

func (e Env) notify(ctx context.Context, message string) {
	if e.Notifier == nil {
		return
	}
	e.Notifier.Send(ctx, message)
}

type action func(ctx context.Context, env Env, args string) (Outcome, error)

type Role struct {
	Name         contractx.RoleName
	Instructions string

	tools   []*schema.ToolInfo
	actions map[string]action
}

func New(name contractx.RoleName, instructions string) *Role {
	r := &Role{
		Name:         name,
		Instructions: instructions,
		tools:        toolx.InfosForRole(name),
		actions:      make(map[string]action),
	}
	for _, tool := range toolx.NamesForRole(name) {
		if fn, ok := catalog[tool]; ok {
			r.actions[tool] = fn
		}
	}
	return r
}

func (r *Role) Tools() []*schema.ToolInfo {
	return append([]*schema.ToolInfo(nil), r.tools...)
}

func (r *Role) Can(tool string) bool {
	_, ok := r.actions[tool]
	return ok
}

// Invoke runs one action against the call state. Errors are reserved for
// malformed calls; every business refusal comes back as Outcome text.
func (r *Role) Invoke(ctx context.Context, env Env, tool string, args string) (Outcome, error) {
	fn, ok := r.actions[tool]
	if !ok {
		return Outcome{}, fmt.Errorf("%w: tool=%s role=%s", contractx.ErrUnknownAction, tool, r.Name)
	}
	if env.State == nil {
		return Outcome{}, fmt.Errorf("%w: call state is nil", contractx.ErrValidation)
	}
	return fn(ctx, env, args)
}

// Registry is the fixed set of roles for one call.
type Registry map[contractx.RoleName]*Role

func NewRegistry(prompts promptx.PromptSet, menu string) Registry {
	reg := make(Registry, len(contractx.Roles))
	for _, name := range contractx.Roles {
		reg[name] = New(name, prompts.Instructions(name, menu))
	}
	return reg
}
