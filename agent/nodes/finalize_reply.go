package orchestratornode

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

func FinalizeReply(in *GraphState, conv Conversation) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, errNilState
	}

	reply := strings.TrimSpace(in.Message)
	if reply == "" {
		return GraphOutput{}, fmt.Errorf("%w: role %s returned empty message", contractx.ErrSchemaViolation, in.Role)
	}
	return GraphOutput{Reply: reply, Role: conv.ActiveRole()}, nil
}

// HandoffReply runs the new role's entry turn and speaks the transfer notice
// ahead of its first words.
func HandoffReply(ctx context.Context, in *GraphState, conv Conversation) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, errNilState
	}

	greeting, err := conv.Enter(ctx)
	if err != nil {
		return GraphOutput{}, err
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{in.TransferText, greeting} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	in.Message = strings.Join(parts, " ")
	return FinalizeReply(in, conv)
}
