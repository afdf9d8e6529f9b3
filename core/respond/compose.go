package respond

import (
	"context"
	"fmt"
	"strings"

	"github.com/orderline-ai/orderline/core/dialogue"
	"github.com/orderline-ai/orderline/core/order"
)

// TurnComposer renders the dialogue engine's canonical lines through a
// model carrying the full order context and the conversation so far.
// Decisions stay with the engine; the model may vary wording, and may
// invoke the transfer tool when the conversation calls for the human
// customer instead of another scripted line.
type TurnComposer struct {
	llm          Provider
	instructions string
	tools        []Tool
}

func NewTurnComposer(llm Provider, orderContext order.Context) *TurnComposer {
	return &TurnComposer{
		llm:          llm,
		instructions: BuildSystemPrompt(orderContext),
		tools:        []Tool{TransferToCustomerTool()},
	}
}

func (c *TurnComposer) ComposeTurn(ctx context.Context, step string, canonical string, history []dialogue.Exchange) (string, bool, error) {
	turns := make([]Turn, 0, len(history))
	for _, exchange := range history {
		role := RoleCounterparty
		if exchange.FromAgent {
			role = RoleAgent
		}
		turns = append(turns, Turn{Role: role, Content: exchange.Text})
	}

	reply, err := c.llm.Respond(ctx,
		fmt.Sprintf("Protocol step: %s\nSay this in your own words, keeping the exact meaning and every fact: %s", step, canonical),
		WithInstructions(c.instructions),
		WithTurns(turns...),
		WithTools(c.tools...),
	)
	if err != nil {
		return "", false, fmt.Errorf("failed to compose turn: %w", err)
	}

	for _, call := range reply.ToolCalls {
		if call.Name == TransferToCustomerToolName {
			return "", true, nil
		}
	}

	line := strings.TrimSpace(strings.Trim(strings.TrimSpace(reply.Content), `"`))
	if line == "" {
		return "", false, fmt.Errorf("empty composed line")
	}
	return line, false, nil
}
