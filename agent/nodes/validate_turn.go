package orchestratornode

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
)

var (
	ErrInvalidUtterance = errors.New("utterance is empty")
	ErrNotStarted       = errors.New("call has not started")
)

type GraphInput struct {
	Utterance contractx.Utterance
}

type GraphOutput struct {
	Reply string
	Role  contractx.RoleName
}

type GraphState struct {
	Text     string
	Language string
	Now      time.Time

	Role  contractx.RoleName
	Steps int

	Message      string
	Transfer     contractx.RoleName
	TransferText string
}

// ToolOutcome is what executing one tool call produced for the loop.
type ToolOutcome struct {
	Text     string
	Transfer contractx.RoleName
}

// Conversation is the live call a turn runs against.
type Conversation interface {
	Started() bool
	ActiveRole() contractx.RoleName
	Record(text, language string)
	Generate(ctx context.Context, withTools bool) (*schema.Message, error)
	Execute(ctx context.Context, call schema.ToolCall) ToolOutcome
	Skip(call schema.ToolCall, reason string)
	Enter(ctx context.Context) (string, error)
}

func ValidateTurn(in GraphInput, conv Conversation, nowFn func() time.Time) (*GraphState, error) {
	if !conv.Started() {
		return nil, ErrNotStarted
	}
	text := strings.TrimSpace(in.Utterance.Text)
	if text == "" {
		return nil, ErrInvalidUtterance
	}

	return &GraphState{
		Text:     text,
		Language: strings.TrimSpace(in.Utterance.Language),
		Now:      nowFn().UTC(),
		Role:     conv.ActiveRole(),
	}, nil
}

func RecordTurn(in *GraphState, conv Conversation) (*GraphState, error) {
	if in == nil {
		return nil, errNilState
	}
	conv.Record(in.Text, in.Language)
	return in, nil
}
