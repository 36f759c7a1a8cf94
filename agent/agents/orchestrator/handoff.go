package orchestrator

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"
	rolex "github.com/tanpawarit/restaurant-voice-agent/agent/agents/role"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	"github.com/tanpawarit/restaurant-voice-agent/agent/dialogue"
	nodex "github.com/tanpawarit/restaurant-voice-agent/agent/nodes"
)

var _ nodex.Conversation = (*Call)(nil)

// transfer makes target the active role and records who handed over. The
// registry is fixed when the call is built, so an unknown target is a bug.
func (c *Call) transfer(target contractx.RoleName) string {
	if _, ok := c.roles[target]; !ok || !target.Valid() {
		panic(fmt.Errorf("%w: handoff to %q", contractx.ErrUnknownRole, target))
	}

	from := c.active
	c.state.PrevRole = from
	c.active = target
	c.metrics.IncHandoff(string(from), string(target))
	log.Info().Str("call_id", c.cfg.CallID).Str("from", string(from)).Str("to", string(target)).Msg("handoff")

	return fmt.Sprintf("Transferring to %s.", target)
}

// Enter runs the entry hook of the active role: carry over the tail of the
// previous role's dialogue, inject the current call data and produce the
// first reply with tools withheld.
func (c *Call) Enter(ctx context.Context) (string, error) {
	role := c.active
	h := c.histories[role]

	carried := 0
	if prev := c.state.PrevRole; prev != "" && prev != role {
		carried = h.CarryOver(c.histories[prev], c.cfg.MaxCarry)
	}
	h.Append(dialogue.Instructions(c.entryInstructions(role)))
	log.Debug().Str("call_id", c.cfg.CallID).Str("role", string(role)).Int("carried", carried).Msg("entering role")

	msg, err := c.Generate(ctx, false)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(msg.Content), nil
}

func (c *Call) entryInstructions(role contractx.RoleName) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s agent. Current user data is %s", role, c.state.Summarize())
	if c.languageRule != "" {
		b.WriteString("\n\n")
		b.WriteString(c.languageRule)
	}
	return b.String()
}

func (c *Call) Record(text, language string) {
	if language != "" {
		c.state.Language = language
	}
	c.histories[c.active].Append(dialogue.UserMessage(text, language))
}

// Generate asks the active role's model for its next message and appends it
// to that role's history. Tool calls are dropped when tools are withheld.
func (c *Call) Generate(ctx context.Context, withTools bool) (*schema.Message, error) {
	role := c.active
	m := c.models[role]
	if withTools {
		var err error
		if m, err = c.toolModel(role); err != nil {
			return nil, err
		}
	}

	start := c.now()
	msg, err := m.Generate(ctx, c.histories[role].Messages())
	c.metrics.ObserveGenerate(string(role), c.now().Sub(start))
	if err != nil {
		return nil, fmt.Errorf("%w: role=%s: %v", contractx.ErrModelInvoke, role, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("%w: role=%s returned no message", contractx.ErrSchemaViolation, role)
	}

	if !withTools && len(msg.ToolCalls) > 0 {
		msg = schema.AssistantMessage(msg.Content, nil)
	}
	if len(msg.ToolCalls) > 0 {
		c.histories[role].Append(dialogue.ToolCall(msg.Content, msg.ToolCalls))
	} else {
		c.histories[role].Append(dialogue.AssistantMessage(msg.Content))
	}
	return msg, nil
}

func (c *Call) toolModel(role contractx.RoleName) (einomodel.ToolCallingChatModel, error) {
	if m, ok := c.toolModels[role]; ok {
		return m, nil
	}
	m, err := c.models[role].WithTools(c.roles[role].Tools())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools for role=%s: %v", contractx.ErrModelInvoke, role, err)
	}
	c.toolModels[role] = m
	return m, nil
}

// Execute runs one tool call for the active role and records its result in
// that role's history. A transfer is carried out before returning.
func (c *Call) Execute(ctx context.Context, call schema.ToolCall) nodex.ToolOutcome {
	role := c.active
	name := strings.TrimSpace(call.Function.Name)

	out, err := c.roles[role].Invoke(ctx, rolex.Env{State: c.state, Notifier: c.notifier}, name, call.Function.Arguments)

	var res nodex.ToolOutcome
	result := "ok"
	switch {
	case err != nil:
		res.Text = "error: " + err.Error()
		result = "error"
		log.Warn().Err(err).Str("call_id", c.cfg.CallID).Str("role", string(role)).Str("action", name).Msg("tool call failed")
	case out.Transfer != "":
		res.Text = c.transfer(out.Transfer)
		res.Transfer = out.Transfer
		result = "transfer"
	case out.Rejected:
		res.Text = out.Text
		result = "rejected"
	default:
		res.Text = out.Text
	}

	c.histories[role].Append(dialogue.ToolResult(call.ID, res.Text))
	c.metrics.ObserveAction(string(role), name, result)
	return res
}

// Skip answers a tool call that will not run so the history stays well formed.
func (c *Call) Skip(call schema.ToolCall, reason string) {
	role := c.state.PrevRole
	if role == "" {
		role = c.active
	}
	c.histories[role].Append(dialogue.ToolResult(call.ID, reason))
}
