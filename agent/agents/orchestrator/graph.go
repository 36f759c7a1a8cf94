package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/restaurant-voice-agent/agent/nodes"
)

func (c *Call) compileHandleUtteranceGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_turn",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateTurn(in, c, c.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_turn: %w", err)
	}

	if err := graph.AddLambdaNode("record_turn",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RecordTurn(in, c)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node record_turn: %w", err)
	}

	if err := graph.AddLambdaNode("run_tools",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.RunTools(ctx, in, c, c.cfg.MaxToolSteps)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node run_tools: %w", err)
	}

	if err := graph.AddLambdaNode(nodex.NodeDirectReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinalizeReply(in, c)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeDirectReply, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeHandoffReply,
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.HandoffReply(ctx, in, c)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeHandoffReply, err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			return nodex.Route(in), nil
		},
		map[string]bool{
			nodex.NodeDirectReply:  true,
			nodex.NodeHandoffReply: true,
		},
	)
	if err := graph.AddBranch("run_tools", branch); err != nil {
		return nil, fmt.Errorf("add branch run_tools: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_turn"},
		{"validate_turn", "record_turn"},
		{"record_turn", "run_tools"},
		{nodex.NodeDirectReply, compose.END},
		{nodex.NodeHandoffReply, compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("call.handle_utterance"))
	if err != nil {
		return nil, fmt.Errorf("compile call graph: %w", err)
	}
	return runner, nil
}
