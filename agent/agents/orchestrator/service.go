package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	rolex "github.com/tanpawarit/restaurant-voice-agent/agent/agents/role"
	contractx "github.com/tanpawarit/restaurant-voice-agent/agent/contract"
	"github.com/tanpawarit/restaurant-voice-agent/agent/dialogue"
	inventoryx "github.com/tanpawarit/restaurant-voice-agent/agent/inventory"
	metricsx "github.com/tanpawarit/restaurant-voice-agent/agent/metrics"
	nodex "github.com/tanpawarit/restaurant-voice-agent/agent/nodes"
	promptx "github.com/tanpawarit/restaurant-voice-agent/agent/prompt"
	statex "github.com/tanpawarit/restaurant-voice-agent/agent/state"
)

var (
	ErrInvalidUtterance = nodex.ErrInvalidUtterance
	ErrNotStarted       = nodex.ErrNotStarted
)

const (
	DefaultMaxCarry        = 6
	DefaultHistoryMaxItems = 40
	DefaultMaxToolSteps    = 5
)

// Models maps each role to the chat model that speaks for it.
type Models map[contractx.RoleName]einomodel.ToolCallingChatModel

type Config struct {
	CallID          string
	Menu            string
	MaxCarry        int
	HistoryMaxItems int
	MaxToolSteps    int
}

type Option func(*Call)

func WithRecorder(r *metricsx.Recorder) Option {
	return func(c *Call) {
		c.metrics = r
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Call) {
		if now != nil {
			c.now = now
		}
	}
}

// Call is one live conversation. It is driven by one turn at a time and is
// not safe for concurrent use.
type Call struct {
	cfg Config

	state     *statex.CallState
	roles     rolex.Registry
	histories map[contractx.RoleName]*dialogue.History
	active    contractx.RoleName
	started   bool

	models     Models
	toolModels map[contractx.RoleName]einomodel.ToolCallingChatModel

	notifier     rolex.Sender
	metrics      *metricsx.Recorder
	languageRule string

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

func New(
	store *inventoryx.Store,
	models Models,
	notifier rolex.Sender,
	cfg Config,
	opts ...Option,
) (*Call, error) {
	if store == nil {
		return nil, errors.New("inventory store is required")
	}
	for _, name := range contractx.Roles {
		if models[name] == nil {
			return nil, fmt.Errorf("%w: no model for role %s", contractx.ErrValidation, name)
		}
	}

	if strings.TrimSpace(cfg.CallID) == "" {
		cfg.CallID = uuid.NewString()
	}
	if cfg.MaxCarry <= 0 {
		cfg.MaxCarry = DefaultMaxCarry
	}
	if cfg.HistoryMaxItems <= 0 {
		cfg.HistoryMaxItems = DefaultHistoryMaxItems
	}
	if cfg.MaxToolSteps <= 0 {
		cfg.MaxToolSteps = DefaultMaxToolSteps
	}

	prompts := promptx.LoadPromptSet()
	c := &Call{
		cfg:          cfg,
		roles:        rolex.NewRegistry(prompts, cfg.Menu),
		histories:    make(map[contractx.RoleName]*dialogue.History, len(contractx.Roles)),
		active:       contractx.RoleGreeter,
		models:       models,
		toolModels:   make(map[contractx.RoleName]einomodel.ToolCallingChatModel, len(contractx.Roles)),
		notifier:     notifier,
		languageRule: prompts.LanguageRule,
		now:          time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	for name, r := range c.roles {
		if strings.TrimSpace(r.Instructions) == "" {
			return nil, fmt.Errorf("%w: role %s", contractx.ErrPromptMissing, name)
		}
		c.histories[name] = dialogue.NewHistory(cfg.HistoryMaxItems, dialogue.Instructions(r.Instructions))
	}
	c.state = statex.NewCallState(cfg.CallID, store, c.now())

	graphRunner, err := c.compileHandleUtteranceGraph(context.Background())
	if err != nil {
		return nil, err
	}
	c.graphRunner = graphRunner

	return c, nil
}

// Start enters the greeter and returns its opening line.
func (c *Call) Start(ctx context.Context) (string, error) {
	if c.started {
		return "", fmt.Errorf("%w: call %s already started", contractx.ErrValidation, c.cfg.CallID)
	}
	c.started = true
	log.Info().Str("call_id", c.cfg.CallID).Msg("call started")
	return c.Enter(ctx)
}

// HandleUtterance runs one user turn through the active role.
func (c *Call) HandleUtterance(ctx context.Context, utt contractx.Utterance) (string, error) {
	out, err := c.graphRunner.Invoke(ctx, nodex.GraphInput{Utterance: utt})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

// Close ends the call. Stock deducted by a checkout whose write failed is
// written once more before the state is dropped.
func (c *Call) Close(ctx context.Context) error {
	log.Info().Str("call_id", c.cfg.CallID).Str("role", string(c.active)).Bool("checked_out", c.state.CheckedOut).Msg("call ended")
	if !c.state.PendingPersist {
		return nil
	}
	if err := c.state.Inventory.Persist(ctx); err != nil {
		return fmt.Errorf("flush inventory for call %s: %w", c.cfg.CallID, err)
	}
	c.state.PendingPersist = false
	return nil
}

func (c *Call) ID() string {
	return c.cfg.CallID
}

func (c *Call) State() *statex.CallState {
	return c.state
}

func (c *Call) Started() bool {
	return c.started
}

func (c *Call) ActiveRole() contractx.RoleName {
	return c.active
}

// History returns a copy of what the given role can currently see.
func (c *Call) History(role contractx.RoleName) []dialogue.Item {
	h, ok := c.histories[role]
	if !ok {
		return nil
	}
	return h.Items()
}
