package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

var errNilState = fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)

// RunTools lets the active role answer, calling tools until it replies in
// plain text, hands off, or runs out of steps. After maxSteps tool rounds the
// role is asked once more with tools withheld.
func RunTools(ctx context.Context, in *GraphState, conv Conversation, maxSteps int) (*GraphState, error) {
	if in == nil {
		return nil, errNilState
	}

	for in.Steps < maxSteps {
		msg, err := conv.Generate(ctx, true)
		if err != nil {
			return nil, err
		}
		in.Steps++

		if len(msg.ToolCalls) == 0 {
			in.Message = strings.TrimSpace(msg.Content)
			return in, nil
		}

		for _, call := range msg.ToolCalls {
			if in.Transfer != "" {
				conv.Skip(call, fmt.Sprintf("not executed: call transferred to %s", in.Transfer))
				continue
			}
			out := conv.Execute(ctx, call)
			if out.Transfer != "" {
				in.Transfer = out.Transfer
				in.TransferText = out.Text
			}
		}
		if in.Transfer != "" {
			return in, nil
		}
	}

	log.Warn().Str("role", string(in.Role)).Int("steps", in.Steps).Msg("tool step limit reached")
	msg, err := conv.Generate(ctx, false)
	if err != nil {
		return nil, err
	}
	in.Message = strings.TrimSpace(msg.Content)
	return in, nil
}

// Route picks the reply node after the tool loop.
func Route(in *GraphState) string {
	if in != nil && in.Transfer != "" {
		return NodeHandoffReply
	}
	return NodeDirectReply
}

const (
	NodeDirectReply  = "direct_reply"
	NodeHandoffReply = "handoff_reply"
)
